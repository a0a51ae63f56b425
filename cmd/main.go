package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vyasma-Mafia/maftourbot/bot"
	"github.com/Vyasma-Mafia/maftourbot/config"
	"github.com/Vyasma-Mafia/maftourbot/db"
	"github.com/Vyasma-Mafia/maftourbot/gomafia"
	"github.com/Vyasma-Mafia/maftourbot/handlers"
	"github.com/Vyasma-Mafia/maftourbot/live"
	"github.com/Vyasma-Mafia/maftourbot/repositories"
	"github.com/Vyasma-Mafia/maftourbot/routes"
	"github.com/Vyasma-Mafia/maftourbot/services"
	"github.com/Vyasma-Mafia/maftourbot/storage"
	"github.com/Vyasma-Mafia/maftourbot/telegram"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx, dbConn); err != nil {
		cancelMigrate()
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	cancelMigrate()
	logger.Info("database schema up to date")

	// Архив сырых снапшотов (Cloudflare R2), опционален
	var snapshotArchive storage.FileUploader
	if cfg.R2AccountID != "" {
		snapshotArchive, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 snapshot archive initialized")
	} else {
		logger.Info("snapshot archive disabled: R2 credentials not configured")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txManager := repositories.NewSQLTxManager(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	tableRepo := repositories.NewPostgresTableRepository(dbConn)
	seatRepo := repositories.NewPostgresSeatRepository(dbConn)
	logger.Info("Repositories initialized")

	// Клиенты внешних API
	gomafiaClient := gomafia.NewClient(cfg.GomafiaBaseURL, nil)
	telegramClient := telegram.NewClient(cfg.TelegramBotToken)

	// Инициализация сервисов
	playerService := services.NewPlayerService(playerRepo)
	arrangementService := services.NewArrangementService(tournamentRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, roundRepo, tableRepo, wsHub)
	notificationService := services.NewNotificationService(tournamentRepo, playerRepo, seatRepo, telegramClient, logger)
	syncService := services.NewSyncService(
		txManager,
		tournamentRepo,
		roundRepo,
		tableRepo,
		seatRepo,
		gomafiaClient,
		snapshotArchive,
		wsHub,
		logger,
	)
	logger.Info("Services initialized")

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// Телеграм-бот: long polling в отдельной горутине
	tgBot := bot.New(telegramClient, playerService, arrangementService, logger)
	go tgBot.Run(rootCtx)
	logger.Info("Telegram bot started")

	// Планировщик периодической синхронизации активных турниров
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		logger.Info("sync scheduler started", slog.Duration("interval", cfg.SyncInterval))

		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				tournaments, err := tournamentRepo.ListActive(rootCtx)
				if err != nil {
					logger.Error("scheduler: failed to list active tournaments", slog.Any("error", err))
					continue
				}
				for _, t := range tournaments {
					if _, err := syncService.SyncFromSource(rootCtx, t.ExternalID); err != nil {
						logger.Error("scheduler: sync failed",
							slog.Int("external_id", t.ExternalID),
							slog.Any("error", err))
					}
				}
			}
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(cfg.AdminPasswordHash, []byte(cfg.JWTSecretKey))
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, syncService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	logger.Info("HTTP handlers initialized")

	router := routes.SetupRoutes(routes.RouterDeps{
		AuthHandler:         authHandler,
		TournamentHandler:   tournamentHandler,
		NotificationHandler: notificationHandler,
		Hub:                 wsHub,
		JWTSecret:           []byte(cfg.JWTSecretKey),
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancelRoot()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
