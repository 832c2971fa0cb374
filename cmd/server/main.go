package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/freelynk/freelynk-backend/internal/config"
	"github.com/freelynk/freelynk-backend/internal/db"
	httpHandlers "github.com/freelynk/freelynk-backend/internal/http/handlers"
	httpRouter "github.com/freelynk/freelynk-backend/internal/http/router"
	"github.com/freelynk/freelynk-backend/internal/logger"
	"github.com/freelynk/freelynk-backend/internal/repository"
	"github.com/freelynk/freelynk-backend/internal/service"
	"github.com/freelynk/freelynk-backend/internal/storage"
	"github.com/freelynk/freelynk-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	avatarStorage, err := storage.NewAvatarStorage(cfg.AvatarStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	bidRepo := repository.NewBidRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()

	// Сервисы.
	statsCache := service.NewCacheService()
	authService := service.NewAuthService(userRepo, tokenManager)
	projectService := service.NewProjectService(projectRepo)
	bidService := service.NewBidService(bidRepo, projectRepo, hub)
	userService := service.NewUserService(userRepo, projectRepo, bidRepo, statsCache)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	projectHandler := httpHandlers.NewProjectHandler(projectService, bidService)
	bidHandler := httpHandlers.NewBidHandler(bidService)
	userHandler := httpHandlers.NewUserHandler(userService, avatarStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, projectHandler, bidHandler, userHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
