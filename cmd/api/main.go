package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/chat-registration/internal/api/http"
	"github.com/spec-kit/chat-registration/internal/api/http/handlers"
	"github.com/spec-kit/chat-registration/internal/chat"
	"github.com/spec-kit/chat-registration/internal/config"
	"github.com/spec-kit/chat-registration/internal/crm"
	"github.com/spec-kit/chat-registration/internal/events"
	"github.com/spec-kit/chat-registration/internal/observability"
	"github.com/spec-kit/chat-registration/internal/persistence"
	"github.com/spec-kit/chat-registration/internal/repository"
	"github.com/spec-kit/chat-registration/internal/service"
	"github.com/spec-kit/chat-registration/internal/worker"
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

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher(func(event events.Event, err error) {
		logger.Warn("event handler failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	})

	notifyDeps := service.NotificationDependencies{
		Channel: cfg.Redis.EventsChannel,
		Timeout: cfg.App.EventSinkTimeout(),
	}
	if pg.Enabled() {
		notifyDeps.Ledger = repository.NewRegistrationLogRepository(pg.PoolHandle())
	}
	if redis.Enabled() {
		notifyDeps.Publisher = redis
	}
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, notifyDeps), logger)

	chatClient, err := chat.NewClient(cfg.Stream.APIKey, cfg.Stream.APISecret, cfg.App.ClientTimeout(),
		chat.WithBaseURL(cfg.Stream.BaseURL),
		chat.WithTokenTTL(cfg.Stream.TokenTTL()),
		chat.WithLogger(logger.Named("stream")))
	if err != nil {
		logger.Fatal("failed to init stream client", zap.Error(err))
	}
	crmClient := crm.NewClient(cfg.HubSpot.BaseURL, cfg.HubSpot.APIKey, cfg.App.ClientTimeout(),
		crm.WithLogger(logger.Named("hubspot")))

	registrationService := service.NewRegistrationService(*cfg, service.RegistrationDependencies{
		CRM:        crmClient,
		Chat:       chatClient,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(logger)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	}, metrics)
	registrationsHandler := handlers.NewRegistrationsHandler(registrationService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        healthHandler,
		Registrations: registrationsHandler,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
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
