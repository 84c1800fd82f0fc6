package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/helpdesk-ops/ticket-assignment/internal/api/http"
	"github.com/helpdesk-ops/ticket-assignment/internal/api/http/handlers"
	"github.com/helpdesk-ops/ticket-assignment/internal/auth"
	"github.com/helpdesk-ops/ticket-assignment/internal/bootstrap"
	"github.com/helpdesk-ops/ticket-assignment/internal/config"
	"github.com/helpdesk-ops/ticket-assignment/internal/events"
	"github.com/helpdesk-ops/ticket-assignment/internal/observability"
	"github.com/helpdesk-ops/ticket-assignment/internal/persistence"
	"github.com/helpdesk-ops/ticket-assignment/internal/repository"
	"github.com/helpdesk-ops/ticket-assignment/internal/service"
	"github.com/helpdesk-ops/ticket-assignment/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	var (
		technicianRepo repository.TechnicianRepository
		assignmentRepo repository.AssignmentRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		technicianRepo = repository.NewTechnicianRepository(pool)
		assignmentRepo = repository.NewAssignmentRepository(pool)
	}

	engine, closeEngine, err := bootstrap.NewEngine(ctx, cfg, technicianRepo, logger, metrics)
	if err != nil {
		logger.Fatal("failed to build assignment engine", zap.Error(err))
	}
	defer closeEngine()

	dispatcher := events.NewInMemoryDispatcher()
	forwarder := events.NewChannelForwarder(redis, cfg.Redis.Channel, logger)
	notificationService := service.NewNotificationService(dispatcher, service.NewSMTPMailer(cfg.Notification), logger, cfg.Notification)
	worker.StartEventWorkers(dispatcher, forwarder, notificationService, logger)

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Engine:         engine,
		AssignmentRepo: assignmentRepo,
		TechnicianRepo: technicianRepo,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.ServiceTokenTTL())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	}, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Assignments:    handlers.NewAssignmentsHandler(assignmentService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
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
