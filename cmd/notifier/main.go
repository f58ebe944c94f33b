package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/octobees/lead-intel/internal/config"
	"github.com/octobees/lead-intel/internal/database"
	"github.com/octobees/lead-intel/internal/logx"
	"github.com/octobees/lead-intel/internal/notification"
	"github.com/octobees/lead-intel/internal/repository"
	"github.com/octobees/lead-intel/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logx.L().Fatalf("failed to load config: %v", err)
	}

	log := logx.Init(cfg.LogLevel)
	defer logx.Sync()

	if cfg.RedisURL == "" {
		log.Fatalf("REDIS_URL is required for the notifier worker")
	}
	opt, err := notification.RedisClientOpt(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var orchOpts []notification.OrchestratorOption
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := database.Connect(connectCtx, cfg.DatabaseURL, log)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		defer pool.Close()

		officers := service.NewOfficerService(repository.NewPGXOfficersRepository(pool), nil)
		orchOpts = append(orchOpts, notification.WithRecipientResolver(officers))
	} else {
		log.Infow("officer_recipient_lookup_disabled", "reason", "DATABASE_URL not set")
	}

	worker := notification.NewWorker(opt, cfg.NotifyQueue, cfg.NotifierConcurrency, notification.NewOrchestrator(sender, log, orchOpts...), log)

	if err := worker.Run(ctx); err != nil {
		log.Fatalf("notifier worker: %v", err)
	}
}
