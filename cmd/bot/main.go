package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/socialpulse/monitor-bot/internal/alerting"
	"github.com/socialpulse/monitor-bot/internal/archive"
	"github.com/socialpulse/monitor-bot/internal/classifier"
	"github.com/socialpulse/monitor-bot/internal/config"
	"github.com/socialpulse/monitor-bot/internal/monitoring"
	"github.com/socialpulse/monitor-bot/internal/scheduler"
	"github.com/socialpulse/monitor-bot/internal/sources"
	"github.com/socialpulse/monitor-bot/internal/store"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting SocialPulse Monitor Bot")

	db, err := store.NewPostgresStore(cfg.DatabaseDSN())
	if err != nil {
		logrus.Fatalf("Failed to initialize store: %v", err)
	}

	geminiClassifier := classifier.NewGeminiClassifier(
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.ClassifyBatchSize,
		cfg.ClassifyBatchPause,
	)
	if !geminiClassifier.IsEnabled() {
		logrus.Warn("GEMINI_API_KEY not set - running with keyword fallback classification only")
	}

	fetchers := []sources.Fetcher{
		sources.NewFacebookFetcher(),
		sources.NewTwitterFetcher(),
	}

	evaluator := alerting.NewEvaluator()
	evaluator.SpikeThreshold = cfg.SentimentSpikeThreshold
	evaluator.SpikeMinBatch = cfg.SentimentSpikeMinBatch

	var archiver archive.Archiver
	if cfg.StorageAccount != "" {
		azureArchiver, err := archive.NewAzureArchiver(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize archive storage: %v", err)
		}
		archiver = azureArchiver
	}

	syncService := monitoring.NewService(db, geminiClassifier, fetchers, evaluator, archiver)

	schedulerService := scheduler.NewService(cfg, syncService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up HTTP server for health checks and manual triggers
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(syncService)).Methods("GET")
	router.HandleFunc("/sync", syncHandler(syncService)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(syncService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(syncService.GetMetrics()))
	}
}

func syncHandler(syncService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outcomes, err := syncService.SyncAll(r.Context())
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(outcomes)
	}
}
