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
	"github.com/underwriteiq/platform/pkg/common/database"
	"github.com/underwriteiq/platform/pkg/common/kafka"
	"github.com/underwriteiq/platform/pkg/common/logger"
	"github.com/underwriteiq/platform/pkg/dashboard"
	"github.com/underwriteiq/platform/pkg/gateway/auth"
	"github.com/underwriteiq/platform/pkg/gateway/middleware"
	"github.com/underwriteiq/platform/pkg/serving"
	"github.com/underwriteiq/platform/pkg/storage"
)

func main() {
	logger.Init()
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}

	redisClient := database.GetRedis()

	featureStore := storage.NewFeatureStore(db, redisClient, cfg.FeatureCacheTTL)
	if err := featureStore.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate feature store tables")
	}

	predictions := serving.NewRepository(db)
	if err := predictions.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate prediction tables")
	}

	client := dashboard.NewInferenceClient(cfg.InferenceBaseURL, cfg.DashboardRequestTimeout)
	service := dashboard.NewService(client, featureStore, predictions)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.EventsEnabled {
		consumer := kafka.NewConsumer(cfg.KafkaPredictionsTopic, cfg.KafkaGroupID)
		defer consumer.Close()
		go func() {
			if err := consumer.Consume(ctx, service.HandlePredictionEvent); err != nil && err != context.Canceled {
				logger.Log.WithError(err).Error("Prediction event consumer stopped")
			}
		}()
	}

	var authMiddleware mux.MiddlewareFunc
	if cfg.OIDCIssuer != "" {
		oidcAuth, err := auth.NewOIDCAuthenticator(cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to initialize OIDC authenticator")
		}
		authMiddleware = middleware.Authenticate(oidcAuth)
	}

	router := mux.NewRouter()
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))

	handler := dashboard.NewHandler(service)
	handler.Register(router, authMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.DashboardPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":      cfg.ServerHost,
			"port":      cfg.DashboardPort,
			"inference": cfg.InferenceBaseURL,
		}).Info("Dashboard Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Dashboard Service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	database.ClosePostgres()
	database.CloseRedis()

	logger.Log.Info("Dashboard Service stopped")
}
