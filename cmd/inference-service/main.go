package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/underwriteiq/platform/pkg/common/config"
	"github.com/underwriteiq/platform/pkg/common/kafka"
	"github.com/underwriteiq/platform/pkg/common/logger"
	"github.com/underwriteiq/platform/pkg/common/models"
	"github.com/underwriteiq/platform/pkg/evidence"
	"github.com/underwriteiq/platform/pkg/gateway/middleware"
	"github.com/underwriteiq/platform/pkg/observability/metrics"
	"github.com/underwriteiq/platform/pkg/scoring"
	"github.com/underwriteiq/platform/pkg/serving"
)

func main() {
	logger.Init()
	metrics.Init()
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}

	catalog, err := evidence.Load(cfg.CatalogPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load evidence catalog")
	}

	var registry *scoring.RegistryClient
	if cfg.ScoringStrategy == models.StrategyRemote {
		registry = scoring.NewRegistryClient(cfg.ModelServiceURL, cfg.ModelRequestTimeout)
		logger.Log.WithField("url", cfg.ModelServiceURL).Info("Model registry scoring enabled")
	}
	scorer := scoring.NewScorer(cfg.ScoringStrategy, registry)

	var publisher serving.EventPublisher
	if cfg.EventsEnabled {
		producer := kafka.NewProducer(cfg.KafkaPredictionsTopic)
		defer producer.Close()
		publisher = producer
	}

	service := serving.NewService(catalog, scorer, publisher)
	handler := serving.NewHandler(service)

	router := mux.NewRouter()
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))
	handler.Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.InferencePort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":     cfg.ServerHost,
			"port":     cfg.InferencePort,
			"strategy": cfg.ScoringStrategy,
		}).Info("Inference Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Inference Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Inference Service stopped")
}
