package main

import (
	"log"

	"shopassist/internal/api"
	"shopassist/internal/config"
	"shopassist/internal/database"
	"shopassist/internal/logger"
	"shopassist/internal/models"
	"shopassist/internal/store"
	syncer "shopassist/internal/sync"
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

	// Initialize API server
	server := api.New(cfg, logger, db, options, messenger, orchestrator, scheduler)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
