package config

import (
	"testing"
	"time"

	"github.com/underwriteiq/platform/pkg/common/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.InferencePort != "8000" {
		t.Fatalf("expected default inference port 8000, got %q", cfg.InferencePort)
	}
	if cfg.ScoringStrategy != models.StrategyRuleBased {
		t.Fatalf("expected rule-based default strategy, got %q", cfg.ScoringStrategy)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate: %v", err)
	}
}

func TestValidateRejectsBadStrategy(t *testing.T) {
	cfg := Load()
	cfg.ScoringStrategy = "guesswork"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestValidateRemoteRequiresURL(t *testing.T) {
	cfg := Load()
	cfg.ScoringStrategy = models.StrategyRemote
	cfg.ModelServiceURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for remote strategy without model service URL")
	}
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	cfg := Load()
	cfg.ModelRequestTimeout = 0 * time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero model request timeout")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCORING_STRATEGY", models.StrategyRemote)
	t.Setenv("MODEL_SERVICE_URL", "http://registry:5000/predict")
	t.Setenv("EVENTS_ENABLED", "false")

	cfg := Load()
	if cfg.ScoringStrategy != models.StrategyRemote {
		t.Fatalf("expected remote strategy, got %q", cfg.ScoringStrategy)
	}
	if cfg.ModelServiceURL != "http://registry:5000/predict" {
		t.Fatalf("unexpected model service URL %q", cfg.ModelServiceURL)
	}
	if cfg.EventsEnabled {
		t.Fatal("expected events disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
}
