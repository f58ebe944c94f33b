package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/octobees/lead-intel/internal/auth"
	"github.com/octobees/lead-intel/internal/cache"
	"github.com/octobees/lead-intel/internal/config"
	"github.com/octobees/lead-intel/internal/database"
	"github.com/octobees/lead-intel/internal/handler"
	"github.com/octobees/lead-intel/internal/logx"
	middlewarepkg "github.com/octobees/lead-intel/internal/middleware"
	"github.com/octobees/lead-intel/internal/notification"
	"github.com/octobees/lead-intel/internal/repository"
	"github.com/octobees/lead-intel/internal/router"
	"github.com/octobees/lead-intel/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logx.L().Fatalf("failed to load config: %v", err)
	}

	log := logx.Init(cfg.LogLevel)
	defer logx.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, log); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var sender notification.Sender
	if cfg.NotificationsEnabled {
		client, err := notification.NewTwilioClient(cfg.Twilio, notification.WithLogger(log))
		if err != nil {
			log.Fatalf("failed to configure messaging provider: %v", err)
		}
		sender = client
	} else {
		log.Infow("notifications_disabled")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	contacts := service.NewContactNormalizer(cfg.PhoneRegion, service.WithDNSResolver(service.SystemDNSResolver()))

	itemsRepo := repository.NewPGXItemsRepository(pool)
	officersRepo := repository.NewPGXOfficersRepository(pool)

	officerService := service.NewOfficerService(officersRepo, contacts)

	var (
		dashboardCache cache.Cache
		dispatcher     notification.Dispatcher
		closeDispatch  func(context.Context) error
	)
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer redisClient.Close()
		dashboardCache = cache.NewRedisCache(redisClient, "lead-intel:")

		opt, err := notification.RedisClientOpt(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		queueClient := asynq.NewClient(opt)
		dispatcher = notification.NewQueueDispatcher(queueClient, cfg.NotifyQueue, log)
		closeDispatch = func(context.Context) error { return queueClient.Close() }
	} else if sender != nil {
		async := notification.NewAsyncDispatcher(
			notification.NewOrchestrator(sender, log, notification.WithRecipientResolver(officerService)), log)
		dispatcher = async
		closeDispatch = async.Close
	}

	leadsOpts := []service.LeadsOption{
		service.WithDefaultRecipient(cfg.DefaultOfficerPhone),
		service.WithPublicBaseURL(cfg.PublicBaseURL),
		service.WithContacts(contacts),
		service.WithLeadsLogger(log),
	}
	if dispatcher != nil {
		leadsOpts = append(leadsOpts, service.WithDispatcher(dispatcher))
	}
	if dashboardCache != nil {
		leadsOpts = append(leadsOpts, service.WithCache(dashboardCache))
	}

	leadsService := service.NewLeadsService(itemsRepo, leadsOpts...)

	handlers := router.Handlers{
		Health:        handler.NewHealthHandler(pool),
		Auth:          handler.NewAuthHandler(service.NewAuthService(officersRepo, jwtManager)),
		Officers:      handler.NewOfficerAdminHandler(officerService),
		Leads:         handler.NewLeadsHandler(leadsService),
		LeadImport:    handler.NewLeadImportHandler(leadsService),
		Sources:       handler.NewSourcesHandler(service.NewSourcesService(itemsRepo, contacts)),
		Offices:       handler.NewOfficesHandler(service.NewOfficesService(itemsRepo, contacts)),
		Feedback:      handler.NewFeedbackHandler(service.NewFeedbackService(itemsRepo)),
		Dashboard:     handler.NewDashboardHandler(service.NewDashboardService(itemsRepo, dashboardCache, cfg.DashboardCacheTTL, log)),
		Notifications: handler.NewNotificationsHandler(sender),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(log))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("server_started", "port", cfg.Port)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infow("shutdown_requested", "signal", sig.String())
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warnw("graceful_shutdown_failed", "error", err)
	}
	if closeDispatch != nil {
		if err := closeDispatch(shutdownCtx); err != nil {
			log.Warnw("dispatcher_drain_failed", "error", err)
		}
	}
}
