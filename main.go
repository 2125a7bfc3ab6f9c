package main

import (
	"context"
	"log"

	api "workhub-backend/cmd/api"
	authRepo "workhub-backend/internal/auth/repository"
	authUsecase "workhub-backend/internal/auth/usecase"
	workdomain "workhub-backend/internal/workitem/domain"
	workDelivery "workhub-backend/internal/workitem/delivery"
	workRepo "workhub-backend/internal/workitem/repository"
	workUsecase "workhub-backend/internal/workitem/usecase"
	"workhub-backend/pkg/ai"
	"workhub-backend/pkg/config"
	"workhub-backend/pkg/database"
	"workhub-backend/pkg/gcalendar"
	"workhub-backend/pkg/gmail"
	"workhub-backend/pkg/gtasks"
	"workhub-backend/pkg/lock"
	"workhub-backend/pkg/logger"
	"workhub-backend/pkg/msgraph"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer func() { _ = zl.Sync() }()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		zl.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	itemRepo := workRepo.NewGormWorkItemRepository(db)
	threadRepo := workRepo.NewGormWorkThreadRepository(db)

	// Provider adapters
	gmailService := gmail.NewService(cfg.GmailPageSize)
	calendarService := gcalendar.NewService(cfg.CalendarPageSize)
	tasksService := gtasks.NewService(cfg.TasksPageSize)
	graphClient := msgraph.NewClient(cfg.GraphBaseURL, cfg.TeamsPageSize)

	// Classifier; without a generator every email gets the fallback judgment
	generator, err := ai.NewTextGenerator(context.Background(), ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiApiKey,
		GeminiModel:   cfg.GeminiModel,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	}, zl)
	if err != nil {
		zl.Warn("AI provider unavailable, classifier will use fallback", zap.Error(err))
		generator = nil
	} else {
		zl.Info("AI service initialized", zap.String("provider", cfg.AIProvider))
	}
	classifier := workUsecase.NewClassifier(generator, zl)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg.JWTSecret)
	syncUsecase := workUsecase.NewSyncUsecase(
		userRepo, itemRepo, threadRepo,
		[]workdomain.ProviderAdapter{gmailService, calendarService, tasksService, graphClient},
		classifier, zl,
	)
	eventUsecase := workUsecase.NewEventUsecase(userRepo, calendarService, graphClient, zl)

	// Sync lock
	var locker lock.Locker
	if cfg.RedisAddr != "" {
		rdb := lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zl.Fatal("Failed to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		locker = lock.NewRedisLocker(rdb, zl)
		zl.Info("Using Redis sync lock", zap.String("addr", cfg.RedisAddr))
	} else {
		locker = lock.NewMemoryLocker()
		zl.Warn("REDIS_ADDR not set, sync lock is per process")
	}

	workHandler := workDelivery.NewWorkItemHandler(syncUsecase, eventUsecase, locker, cfg.SyncLockTTL, cfg.SyncTimeout, zl)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, workHandler, zl)

	zl.Info("Server starting", zap.String("port", cfg.Port))
	if err := handler.Start(":" + cfg.Port); err != nil {
		zl.Fatal("Failed to start server", zap.Error(err))
	}
}
