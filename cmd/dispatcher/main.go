package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/eventsync/notification-service/internal/config"
	"github.com/eventsync/notification-service/internal/discord"
	"github.com/eventsync/notification-service/internal/dispatcher"
	"github.com/eventsync/notification-service/internal/handler"
	"github.com/eventsync/notification-service/internal/logger"
	"github.com/eventsync/notification-service/internal/repository/postgres"
	"github.com/eventsync/notification-service/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.ServiceEnvironment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting notification dispatcher",
		zap.String("environment", cfg.ServiceEnvironment),
		zap.Int("lookahead_minutes", cfg.LookaheadMinutes),
		zap.Int("workers", cfg.DispatchWorkers))

	ctx := context.Background()

	// Initialize Postgres client
	pgClient, err := postgres.NewClient(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create Postgres client", zap.Error(err))
	}
	defer func() {
		if err := pgClient.Close(); err != nil {
			log.Error("Failed to close Postgres client", zap.Error(err))
		}
	}()

	// Initialize store
	store := postgres.NewRepository(pgClient, log)

	// Initialize ledger schema (creates the table if not exist)
	if err := store.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize ledger schema", zap.Error(err))
	}
	log.Info("Ledger schema initialized")

	// Initialize Discord delivery client
	deliverer := discord.NewClient(cfg.DiscordBotToken, cfg.DeliveryTimeout(), log)
	if cfg.DiscordBotToken == "" {
		log.Info("No bot token configured, channel posts disabled")
	}

	// Initialize orchestrator
	orchestrator := dispatcher.NewOrchestrator(store, store, deliverer, dispatcher.Config{
		Lookahead:       cfg.Lookahead(),
		Workers:         cfg.DispatchWorkers,
		DeliveryTimeout: cfg.DeliveryTimeout(),
		StoreTimeout:    cfg.ScanTimeout(),
	}, log)

	// Optional in-process schedule
	if cfg.CronEnabled {
		sched, err := scheduler.New(orchestrator, cfg.CronSchedule, log)
		if err != nil {
			log.Fatal("Failed to create scheduler", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
		log.Info("In-process schedule enabled", zap.String("schedule", cfg.CronSchedule))
	}

	// Initialize handler
	h := handler.NewHandler(orchestrator, store, log)

	addr := fmt.Sprintf(":%s", cfg.ServicePort)
	log.Info("Trigger server starting", zap.String("address", addr))

	go func() {
		if err := http.ListenAndServe(addr, h); err != nil {
			log.Fatal("Failed to start trigger server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down dispatcher gracefully")
}
