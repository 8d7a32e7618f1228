package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/underwriteiq/platform/pkg/common/models"
)

type Config struct {
	// Server
	ServerHost     string
	InferencePort  string
	DashboardPort  string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers          []string
	KafkaGroupID          string
	KafkaPredictionsTopic string
	EventsEnabled         bool

	// Scoring
	ScoringStrategy     string
	ModelServiceURL     string
	ModelRequestTimeout time.Duration
	CatalogPath         string

	// Feature Store
	FeatureCacheTTL time.Duration

	// Dashboard
	InferenceBaseURL        string
	DashboardRequestTimeout time.Duration
	RateLimitRPS            int
	RateLimitBurst          int

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
}

func Load() *Config {
	return &Config{
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		InferencePort:  getEnv("INFERENCE_PORT", "8000"),
		DashboardPort:  getEnv("DASHBOARD_PORT", "8090"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "underwriteiq"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "underwriteiq123"),
		PostgresDB:       getEnv("POSTGRES_DB", "underwriteiq"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:          getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:          getEnv("KAFKA_GROUP_ID", "underwriteiq-platform"),
		KafkaPredictionsTopic: getEnv("KAFKA_PREDICTIONS_TOPIC", "predictions"),
		EventsEnabled:         getBoolEnv("EVENTS_ENABLED", true),

		ScoringStrategy:     getEnv("SCORING_STRATEGY", models.StrategyRuleBased),
		ModelServiceURL:     getEnv("MODEL_SERVICE_URL", "http://model-svc:5000/predict"),
		ModelRequestTimeout: getDuration("MODEL_REQUEST_TIMEOUT", 5*time.Second),
		CatalogPath:         getEnv("EVIDENCE_CATALOG_PATH", ""),

		FeatureCacheTTL: getDuration("FEATURE_CACHE_TTL", 5*time.Minute),

		InferenceBaseURL:        getEnv("INFERENCE_BASE_URL", "http://localhost:8000"),
		DashboardRequestTimeout: getDuration("DASHBOARD_REQUEST_TIMEOUT", 10*time.Second),
		RateLimitRPS:            getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst:          getIntEnv("RATE_LIMIT_BURST", 100),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
	}
}

// Validate rejects process-wide misconfiguration at startup. Scoring
// strategy selection is constant for the process, so a bad value fails here
// rather than per-request.
func (c *Config) Validate() error {
	if !models.ValidStrategy(c.ScoringStrategy) {
		return fmt.Errorf("unknown scoring strategy %q", c.ScoringStrategy)
	}
	if c.ScoringStrategy == models.StrategyRemote && c.ModelServiceURL == "" {
		return fmt.Errorf("remote scoring strategy requires MODEL_SERVICE_URL")
	}
	if c.ModelRequestTimeout <= 0 {
		return fmt.Errorf("model request timeout must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
