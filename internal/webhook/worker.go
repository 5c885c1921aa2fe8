package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/disaster_response_system/internal/config"
	"github.com/sirupsen/logrus"
)

// WebhookWorker - структура для обработки и отправки вебхуков на WebhookURL
type WebhookWorker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
	sleep       func(time.Duration)
}

func NewWebhookWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *WebhookWorker {
	return &WebhookWorker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
		sleep: time.Sleep,
	}
}

// Start запускает горутину для обработки очереди вебхуков до отмены ctx.
// Без WEBHOOK_URL ничего не делает, события остаются в очереди.
func (w *WebhookWorker) Start(ctx context.Context) {
	if w.cfg.WebhookURL == "" {
		w.logger.Info("Webhook URL is not configured, webhook worker disabled")
		return
	}
	w.logger.WithField("url", w.cfg.WebhookURL).Info("Starting webhook worker...")
	go w.run(ctx)
}

func (w *WebhookWorker) run(ctx context.Context) {
	for ctx.Err() == nil {
		event, payload, err := w.pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			w.logger.WithError(err).Error("Failed to pop webhook event from Redis")
			w.sleep(w.cfg.WebhookTimeout)
			continue
		}
		if payload == "" {
			continue
		}
		if !w.processWebhookEvent(ctx, event, payload) && ctx.Err() == nil {
			w.deadLetter(ctx, payload)
		}
	}
	w.logger.Info("Stopping webhook worker.")
}

// pop блокируется до появления самого старого события в очереди.
// Битая запись логируется и пропускается: возвращается пустой payload.
func (w *WebhookWorker) pop(ctx context.Context) (WebhookEvent, string, error) {
	// result[0] - ключ, result[1] - значение
	result, err := w.redisClient.BRPop(ctx, 0, webhookQueueKey).Result()
	if err != nil {
		return WebhookEvent{}, "", err
	}
	var event WebhookEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		w.logger.WithError(err).Error("Failed to unmarshal webhook event from Redis")
		return WebhookEvent{}, "", nil
	}
	return event, result[1], nil
}

// deadLetter сохраняет недоставленные события для ручной повторной отправки
func (w *WebhookWorker) deadLetter(ctx context.Context, payload string) {
	if err := w.redisClient.LPush(ctx, deadLetterKey, payload).Err(); err != nil {
		w.logger.WithError(err).Error("Failed to store undelivered webhook event")
	}
}

func (w *WebhookWorker) processWebhookEvent(ctx context.Context, event WebhookEvent, rawPayload string) bool {
	log := w.logger.WithField("event", event.Event).WithField("event_at", event.At)
	log.Debug("Processing webhook event...")

	maxRetries := w.cfg.WebhookMaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	delay := w.cfg.WebhookBaseDelay

	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			w.sleep(delay)
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewBufferString(rawPayload))
		if err != nil {
			log.WithError(err).Error("Failed to create webhook request")
			return false
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-Event", event.Event)

		if w.cfg.WebhookSecret != "" {
			req.Header.Set("X-Webhook-Signature", generateHMACSHA256(rawPayload, w.cfg.WebhookSecret))
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			log.WithError(err).Warnf("Failed to send webhook. Retries left: %d", maxRetries-1-i)
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			log.Info("Webhook delivered successfully.")
			return true
		}
		log.Warnf("Webhook delivery failed with status code %d. Retries left: %d", resp.StatusCode, maxRetries-1-i)
	}

	log.Errorf("Failed to deliver webhook after %d attempts.", maxRetries)
	return false
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
