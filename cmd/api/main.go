package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ecocampus/complaint-service/internal/ai"
	"github.com/ecocampus/complaint-service/internal/analytics"
	httptransport "github.com/ecocampus/complaint-service/internal/api/http"
	"github.com/ecocampus/complaint-service/internal/api/http/handlers"
	"github.com/ecocampus/complaint-service/internal/auth"
	"github.com/ecocampus/complaint-service/internal/chat"
	"github.com/ecocampus/complaint-service/internal/config"
	"github.com/ecocampus/complaint-service/internal/events"
	"github.com/ecocampus/complaint-service/internal/gamification"
	"github.com/ecocampus/complaint-service/internal/objstore"
	"github.com/ecocampus/complaint-service/internal/observability"
	"github.com/ecocampus/complaint-service/internal/persistence"
	"github.com/ecocampus/complaint-service/internal/repository"
	"github.com/ecocampus/complaint-service/internal/service"
	"github.com/ecocampus/complaint-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("complaint_service")

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var userRepo repository.UserRepository
	var complaintRepo repository.ComplaintRepository
	var notificationRepo repository.NotificationRepository
	var historyRepo repository.HistoryRepository
	if pg.Enabled() {
		pool := pg.PoolHandle()
		userRepo = repository.NewUserRepository(pool)
		complaintRepo = repository.NewComplaintRepository(pool)
		notificationRepo = repository.NewNotificationRepository(pool)
		historyRepo = repository.NewHistoryRepository(pool)
	} else {
		logger.Info("postgres DSN not set, using in-memory store")
		store := repository.NewMemoryStore()
		userRepo = store.Users()
		complaintRepo = store.Complaints()
		notificationRepo = store.Notifications()
		historyRepo = store.History()
	}

	var photoStore objstore.PhotoStore
	if client, err := objstore.NewClient(cfg.ObjectStore); err != nil {
		logger.Fatal("failed to init object store", zap.Error(err))
	} else if client != nil {
		if err := client.EnsureBucket(ctx); err != nil {
			logger.Fatal("failed to ensure photo bucket", zap.Error(err))
		}
		photoStore = client
	}

	dispatcher := events.NewInMemoryDispatcher()
	gateway := ai.NewGeminiGateway(cfg.AI, logger, metrics)

	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		UserRepo:      userRepo,
		HistoryRepo:   historyRepo,
		Dispatcher:    dispatcher,
		Gateway:       gateway,
		Photos:        photoStore,
		Metrics:       metrics,
		Logger:        logger,
	})
	authService := service.NewAuthService(*cfg, userRepo)
	notificationService := service.NewNotificationService(dispatcher, notificationRepo, userRepo, logger)
	worker.StartNotificationWorker(notificationService)

	gamificationService := gamification.NewService(userRepo, complaintRepo, redis, cfg.Gamification.LeaderboardCacheTTL(), logger)
	analyticsService := analytics.NewService(complaintRepo)
	chatEngine := chat.NewEngine(gateway, service.NewAssistantToolExecutor(complaintService), logger)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:           handlers.NewUsersHandler(authService),
		Complaints:      handlers.NewComplaintsHandler(complaintService, gateway),
		AdminComplaints: handlers.NewAdminComplaintsHandler(complaintService),
		Leaderboard:     handlers.NewLeaderboardHandler(gamificationService),
		Analytics:       handlers.NewAnalyticsHandler(analyticsService, gateway),
		Chat:            handlers.NewChatHandler(chatEngine, complaintService),
		Notifications:   handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware:  authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
