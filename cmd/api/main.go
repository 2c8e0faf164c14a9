package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/notify"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
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

	var store repository.Store
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, persistence.DefaultMigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.Pool)
	} else {
		store = memory.NewStore()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var cache auth.PrincipalCache
	if principalCache := persistence.NewRedisPrincipalCache(redis, cfg.Redis.PrincipalCacheTTL()); principalCache != nil {
		cache = principalCache
	}

	tokens, err := auth.NewTokenCodec(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}
	credentials := auth.NewCredentialStore(store.Principals(), cache, logger)

	var mailer notify.Mailer
	if smtpMailer := notify.NewSMTPMailer(cfg.Notification); smtpMailer != nil {
		mailer = smtpMailer
	}
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification, mailer))

	authService := service.NewAuthService(store, credentials, tokens, cfg.Auth, logger)
	departmentService := service.NewDepartmentService(store, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	adminService := service.NewAdminService(store, credentials, logger)
	commentService := service.NewCommentService(store, dispatcher, logger)

	if _, err := departmentService.Seed(ctx, cfg.Seed.Departments); err != nil {
		logger.Fatal("failed to seed departments", zap.Error(err))
	}
	created, err := authService.EnsureAdmin(ctx, cfg.Auth)
	if err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}
	if created {
		logger.Warn("bootstrap admin created; change its password", zap.String("username", cfg.Auth.AdminUsername))
	}

	policy, err := auth.NewPolicy()
	if err != nil {
		logger.Fatal("failed to load access policy", zap.Error(err))
	}
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, CaseSensitive: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:     handlers.NewAuthHandler(authService),
		Customer: handlers.NewCustomerHandler(ticketService, departmentService),
		Agent:    handlers.NewAgentHandler(ticketService, departmentService),
		Admin: handlers.NewAdminHandler(handlers.AdminDependencies{
			Auth:        authService,
			Admin:       adminService,
			Tickets:     ticketService,
			Departments: departmentService,
		}),
		Comments: handlers.NewCommentHandler(commentService),
		Gate:     auth.NewGate(tokens, credentials, logger),
		Policy:   policy,
		Metrics:  metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
