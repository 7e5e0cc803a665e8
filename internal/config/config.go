package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	SyncTopic    string

	// API Configuration
	APIPort string
	APIHost string

	// Remote assistant API
	AssistAPIURL string

	// Store identity
	StoreName     string
	StoreURL      string
	StoreCurrency string

	// Admin endpoints
	AdminToken string

	// Chat nonce signing
	NonceSecret string

	// Sync tuning
	BatchSize   int
	OrdersLimit int

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "sqlite://shopassist.db"),
		KafkaBrokers:  getEnv("KAFKA_BROKERS", "localhost:9092"),
		SyncTopic:     getEnv("SYNC_TOPIC", "sync-triggers"),
		APIPort:       getEnv("API_PORT", "8080"),
		APIHost:       getEnv("API_HOST", "0.0.0.0"),
		AssistAPIURL:  getEnv("ASSIST_API_URL", "https://api.assistmyshop.com/api/v1"),
		StoreName:     getEnv("STORE_NAME", "My Store"),
		StoreURL:      getEnv("STORE_URL", "http://localhost:8080"),
		StoreCurrency: getEnv("STORE_CURRENCY", "USD"),
		AdminToken:    getEnv("ADMIN_TOKEN", ""),
		NonceSecret:   getEnv("NONCE_SECRET", "change-me"),
		BatchSize:     getEnvAsInt("SYNC_BATCH_SIZE", 50),
		OrdersLimit:   getEnvAsInt("SYNC_ORDERS_LIMIT", 50),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
