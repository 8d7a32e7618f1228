// Package dashboard implements the underwriting dashboard backend: it runs
// end-to-end scoring through the inference service, materializes results
// into the feature store and prediction history, and tracks activity from
// the prediction event stream.
package dashboard

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/underwriteiq/platform/pkg/common/logger"
	"github.com/underwriteiq/platform/pkg/common/models"
	"github.com/underwriteiq/platform/pkg/serving"
	"github.com/underwriteiq/platform/pkg/storage"
)

// Inference abstracts the inference service for testing.
type Inference interface {
	Score(ctx context.Context, req models.ScoreRequest) (models.PredictionResult, error)
	Healthy(ctx context.Context) bool
}

type Service struct {
	inference   Inference
	features    *storage.FeatureStore
	predictions *serving.Repository

	seenTotal    atomic.Int64
	seenHighRisk atomic.Int64
}

func NewService(inference Inference, features *storage.FeatureStore, predictions *serving.Repository) *Service {
	return &Service{
		inference:   inference,
		features:    features,
		predictions: predictions,
	}
}

// Run executes one dashboard-triggered scoring run. When MLOps is set, the
// result is persisted to the feature store and prediction history; plain runs
// only score.
func (s *Service) Run(ctx context.Context, req models.RunRequest) (models.RunResult, error) {
	start := time.Now()

	policyNumber := req.PolicyNumber
	if policyNumber == "" {
		policyNumber = generatePolicyNumber(req.PolicyPrefix)
	}

	prediction, err := s.inference.Score(ctx, models.ScoreRequest{
		PolicyNumber: policyNumber,
		MIBXML:       req.MIBXML,
		RXXML:        req.RXXML,
		Strategy:     req.Strategy,
	})
	if err != nil {
		return models.RunResult{}, fmt.Errorf("scoring policy %s: %w", policyNumber, err)
	}

	result := models.RunResult{Prediction: prediction}

	if req.MLOps {
		mlopsStart := time.Now()
		if err := s.persist(ctx, req, prediction); err != nil {
			return models.RunResult{}, err
		}
		result.Persisted = true
		result.MLOpsMs = float64(time.Since(mlopsStart).Microseconds()) / 1000
	}

	result.TotalMs = float64(time.Since(start).Microseconds()) / 1000

	logger.Log.WithFields(map[string]interface{}{
		"policy_number": prediction.PolicyNumber,
		"risk_score":    prediction.RiskScore,
		"risk_level":    prediction.RiskLevel,
		"persisted":     result.Persisted,
		"total_ms":      result.TotalMs,
	}).Info("Dashboard run completed")

	return result, nil
}

func (s *Service) persist(ctx context.Context, req models.RunRequest, prediction models.PredictionResult) error {
	hasMIB := req.MIBXML != ""
	hasRX := req.RXXML != ""
	if err := s.features.Upsert(ctx, prediction.PolicyNumber, hasMIB, hasRX, prediction.RiskScore); err != nil {
		return fmt.Errorf("upserting features for %s: %w", prediction.PolicyNumber, err)
	}
	if err := s.predictions.RecordPrediction(ctx, prediction); err != nil {
		return fmt.Errorf("recording prediction for %s: %w", prediction.PolicyNumber, err)
	}
	return nil
}

// HandlePredictionEvent consumes prediction.completed events and updates
// activity counters. Matches kafka.EventHandler.
func (s *Service) HandlePredictionEvent(ctx context.Context, event models.Event) error {
	if event.Type != "prediction.completed" {
		return nil
	}
	s.seenTotal.Add(1)
	if level, ok := event.Data["risk_level"].(string); ok && level == models.RiskLevelHigh {
		s.seenHighRisk.Add(1)
	}
	return nil
}

// Status reports inference reachability and event-stream counters.
func (s *Service) Status(ctx context.Context) models.DashboardStatus {
	return models.DashboardStatus{
		InferenceHealthy: s.inference.Healthy(ctx),
		PredictionsSeen:  s.seenTotal.Load(),
		HighRiskSeen:     s.seenHighRisk.Load(),
	}
}

// RecentFeatures exposes the newest feature-store rows.
func (s *Service) RecentFeatures(ctx context.Context, limit int) ([]storage.OnlineFeature, error) {
	return s.features.Recent(ctx, limit)
}

// RecentPredictions exposes the newest prediction history rows.
func (s *Service) RecentPredictions(ctx context.Context, limit int) ([]serving.ModelPrediction, error) {
	return s.predictions.Recent(ctx, limit)
}

func generatePolicyNumber(prefix string) string {
	if prefix == "" {
		prefix = "TEST"
	}
	now := time.Now().UTC()
	return fmt.Sprintf("%s-%s%03d", prefix, now.Format("20060102150405"), now.Nanosecond()/1e6)
}
