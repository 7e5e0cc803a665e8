package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"shopassist/internal/config"
	"shopassist/internal/database"
	"shopassist/internal/logger"
	"shopassist/internal/models"
	"shopassist/internal/store"
	syncer "shopassist/internal/sync"
	"shopassist/internal/worker"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	options := store.New(db.DB)
	messenger := syncer.NewMessenger(cfg.AssistAPIURL, cfg.StoreURL, options, logger)
	batcher := syncer.NewBatcher(db.DB, logger)

	publisher := syncer.NewKafkaPublisher([]string{cfg.KafkaBrokers}, cfg.SyncTopic)
	defer publisher.Close()

	scheduler := syncer.NewScheduler(publisher, options, batcher, logger)

	storeInfo := models.StoreInfo{
		Name:     cfg.StoreName,
		URL:      cfg.StoreURL,
		Currency: cfg.StoreCurrency,
		Version:  version,
	}
	orchestrator := syncer.NewOrchestrator(batcher, messenger, options, scheduler, storeInfo, cfg.BatchSize, cfg.OrdersLimit, logger)

	// Initialize worker
	w := worker.New(cfg, logger, orchestrator, scheduler, options)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
