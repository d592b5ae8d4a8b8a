package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/shenikar/disaster_report_bot/internal/alert"
	"github.com/shenikar/disaster_report_bot/internal/config"
	"github.com/shenikar/disaster_report_bot/internal/conversation"
	"github.com/shenikar/disaster_report_bot/internal/gateway/telegram"
	v1 "github.com/shenikar/disaster_report_bot/internal/handler/http/v1"
	"github.com/shenikar/disaster_report_bot/internal/repository"
	"github.com/shenikar/disaster_report_bot/internal/service"
	"github.com/shenikar/disaster_report_bot/internal/session"
	"github.com/shenikar/disaster_report_bot/pkg/logger"
	"github.com/shenikar/disaster_report_bot/pkg/postgres"
	redisclient "github.com/shenikar/disaster_report_bot/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/disaster_report_bot/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Disaster Report Bot API
// @version 1.0
// @description REST API of the disaster report collector.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация издателя оповещений
	alertPublisher := alert.NewRedisPublisher(redisClient)

	// Инициализация и запуск воркера доставки оповещений
	alertWorker := alert.NewWorker(redisClient, log, cfg)
	alertWorker.Start(ctx)

	// Инициализация репозитория и сервиса отчетов
	reportRepo := repository.NewReportRepository(dbpool, redisClient)
	reportService := service.NewReportService(reportRepo, log)

	// Хранилище сессий диалога и фоновая очистка
	sessionStore := session.NewMemoryStore(cfg.SessionTTL)
	sweeper := session.NewSweeper(sessionStore, log, cfg.SessionSweepInterval)
	sweeper.Start(ctx)

	// Машина состояний диалога и диспетчер отправки
	dispatcher := conversation.NewDispatcher(reportService, alertPublisher, sessionStore, log, cfg.SubmitTimeout)
	engine := conversation.NewEngine(sessionStore, dispatcher, reportService, log)

	// Шлюз Telegram
	tgClient := telegram.NewClient(cfg.TelegramToken, cfg.TelegramAPIURL, cfg.SendTimeout)
	tgGateway := telegram.NewGateway(engine, tgClient, log, cfg.TelegramToken)

	// Инициализация хэндлеров
	handler := v1.NewHandler(reportService, alertPublisher, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	tgGateway.RegisterRoutes(router)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
