package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Schedule configuration
	SyncSchedule string // "hourly" or "daily"

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Gemini classifier configuration
	GeminiAPIKey       string
	GeminiModel        string
	ClassifyBatchSize  int
	ClassifyBatchPause time.Duration

	// Alert thresholds
	SentimentSpikeThreshold float64
	SentimentSpikeMinBatch  int

	// Azure Storage archive configuration (optional)
	StorageAccount   string
	StorageContainer string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Debug:        getBoolEnv("DEBUG", false),
		SyncSchedule: getEnv("SYNC_SCHEDULE", "hourly"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "socialpulse"),

		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-pro"),
		ClassifyBatchSize:  getIntEnv("CLASSIFY_BATCH_SIZE", 5),
		ClassifyBatchPause: time.Duration(getIntEnv("CLASSIFY_BATCH_PAUSE_MS", 1000)) * time.Millisecond,

		SentimentSpikeThreshold: getFloatEnv("SENTIMENT_SPIKE_THRESHOLD", 50),
		SentimentSpikeMinBatch:  getIntEnv("SENTIMENT_SPIKE_MIN_BATCH", 10),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "sync-runs"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN builds the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func (c *Config) validate() error {
	if c.SyncSchedule != "hourly" && c.SyncSchedule != "daily" {
		return fmt.Errorf("SYNC_SCHEDULE must be 'hourly' or 'daily'")
	}

	if c.ClassifyBatchSize <= 0 {
		return fmt.Errorf("CLASSIFY_BATCH_SIZE must be positive")
	}

	if c.SentimentSpikeMinBatch <= 0 {
		return fmt.Errorf("SENTIMENT_SPIKE_MIN_BATCH must be positive")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
