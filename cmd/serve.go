package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/config"
	v1 "github.com/shenikar/disaster_response_system/internal/handler/http/v1"
	"github.com/shenikar/disaster_response_system/internal/media"
	"github.com/shenikar/disaster_response_system/internal/realtime"
	"github.com/shenikar/disaster_response_system/internal/repository"
	"github.com/shenikar/disaster_response_system/internal/service"
	"github.com/shenikar/disaster_response_system/internal/webhook"
	"github.com/shenikar/disaster_response_system/pkg/logger"
	"github.com/shenikar/disaster_response_system/pkg/postgres"
	redisclient "github.com/shenikar/disaster_response_system/pkg/redis"
	"github.com/spf13/cobra"

	_ "github.com/shenikar/disaster_response_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and serve the HTTP API and push channel",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		return err
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		return err
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация издателя вебхуков, только если очередь кто-то разбирает
	var webhookPublisher webhook.WebhookPublisher
	if cfg.WebhookURL != "" {
		webhookPublisher = webhook.NewRedisWebhookPublisher(redisClient)
	}
	// Инициализация и запуск воркера вебхуков
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)

	// Fan-out: хаб наблюдателей и зеркало в очередь вебхуков
	hub := realtime.NewHub(cfg.WSOutboundBuffer, log)
	fanout := realtime.NewFanout(hub, webhookPublisher, log)

	// Инициализация репозиториев
	userRepo := repository.NewUserRepository(dbpool)
	sessionStore := repository.NewSessionStore(redisClient)
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient, cfg.IncidentCacheTTL)
	resourceRepo := repository.NewResourceRepository(dbpool)
	sosRepo := repository.NewSOSRepository(dbpool)
	broadcastRepo := repository.NewBroadcastRepository(dbpool)
	shelterRepo := repository.NewShelterRepository(dbpool)

	// Инициализация сервисов
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	services := v1.Services{
		Users:      service.NewUserService(userRepo, sessionStore, tokens, cfg.BcryptCost, log),
		Incidents:  service.NewIncidentService(incidentRepo, fanout, log),
		Resources:  service.NewResourceService(resourceRepo, fanout, log),
		SOS:        service.NewSOSService(sosRepo, fanout, log),
		Broadcasts: service.NewBroadcastService(broadcastRepo, fanout, log),
		Shelters:   service.NewShelterService(shelterRepo, fanout, log),
		Dashboard:  service.NewDashboardService(incidentRepo, sosRepo, resourceRepo, broadcastRepo, log),
	}

	// Хранилище вложений
	mediaStore, err := media.NewStore(cfg.UploadDir, cfg.MaxUploadBytes, log)
	if err != nil {
		return err
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(services, hub, mediaStore, log, cfg)

	// Настройка Gin роутера
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), v1.AccessLogMiddleware(log))
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)
	fmt.Printf("%s listening on :%s\n", color.New(color.FgGreen).Sprint("disaster-response"), cfg.HTTPPort)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("error starting HTTP server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Received shutdown signal, shutting down server...")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server gracefully stopped")
	return nil
}
