package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/realtime"
	"github.com/sirupsen/logrus"
)

const defaultWriteTimeout = 5 * time.Second

// @Summary Push channel
// @Description Upgrade to a WebSocket that streams domain events. The session token may be passed as the token query parameter.
// @Tags Realtime
// @Security BearerAuth
// @Param token query string false "Session token"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /ws [get]
func (h *Handler) streamEvents(c *gin.Context) {
	log := h.logger.WithField("method", "streamEvents")

	token := tokenFromRequest(c, true)
	if token == "" {
		log.Warn("Push handshake without session token")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthenticated"})
		return
	}
	id, err := h.users.Authenticate(c.Request.Context(), token)
	if err != nil {
		respondError(c, log, err)
		return
	}
	if err := auth.Authorize(id, auth.ActionSubscribe); err != nil {
		respondError(c, log, err)
		return
	}

	opts := &websocket.AcceptOptions{}
	if len(h.cfg.WSAllowedOrigins) > 0 {
		opts.OriginPatterns = h.cfg.WSAllowedOrigins
	}
	conn, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client, err := h.hub.Register(id)
	if err != nil {
		_ = conn.Close(websocket.StatusPolicyViolation, "unauthenticated")
		return
	}
	defer h.hub.Unregister(client)

	ctx, cancel := context.WithCancel(auth.WithIdentity(c.Request.Context(), id))
	defer cancel()
	log = log.WithFields(logrus.Fields{"client_id": client.ID, "user_id": id.UserID})

	ready, _ := realtime.NewEvent(realtime.EventReady, nil)
	if err := h.writeEvent(ctx, conn, ready); err != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
		return
	}

	readErr := make(chan error, 1)
	go func() {
		readErr <- h.readMessages(ctx, conn, client, log)
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case err := <-readErr:
			log.WithError(err).Debug("Push connection closed by peer")
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case evt, ok := <-client.Events():
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "closed")
				return
			}
			if err := h.writeEvent(ctx, conn, evt); err != nil {
				log.WithError(err).Warn("Dropping slow push connection")
				_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
				return
			}
		}
	}
}

// writeEvent bounds every frame by the configured write timeout so a dead
// socket is detected and disconnected.
func (h *Handler) writeEvent(ctx context.Context, conn *websocket.Conn, evt realtime.Event) error {
	timeout := h.cfg.WSWriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	writeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, evt)
}

// readMessages handles client frames until the connection fails.
func (h *Handler) readMessages(ctx context.Context, conn *websocket.Conn, client *realtime.Client, log *logrus.Entry) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var msg realtime.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(client, log, "message must be a JSON object with an event field")
			continue
		}
		h.handleMessage(ctx, client, msg, log)
	}
}

func (h *Handler) handleMessage(ctx context.Context, client *realtime.Client, msg realtime.ClientMessage, log *logrus.Entry) {
	switch msg.Kind {
	case realtime.MessageUpdateLocation:
		if err := h.hub.RelayLocation(client, msg.Data); err != nil {
			h.sendError(client, log, err.Error())
		}
	case realtime.MessageRequestDashboardData:
		summary, err := h.dashboard.Summarize(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to build dashboard for push client")
			h.sendError(client, log, "dashboard unavailable")
			return
		}
		if err := h.hub.Send(client, realtime.EventDashboardUpdate, summary); err != nil {
			log.WithError(err).Error("Failed to send dashboard update")
		}
	default:
		h.sendError(client, log, "unknown message type: "+string(msg.Kind))
	}
}

func (h *Handler) sendError(client *realtime.Client, log *logrus.Entry, message string) {
	if err := h.hub.Send(client, realtime.EventError, realtime.ErrorPayload{Message: message}); err != nil {
		log.WithError(err).Error("Failed to send error event")
	}
}
