// Package serving wires the extraction-to-classification pipeline behind the
// inference API. Each Score invocation owns its data exclusively; the
// service holds no mutable state and is safe for concurrent use.
package serving

import (
	"context"
	"math"
	"time"

	"github.com/underwriteiq/platform/pkg/common/logger"
	"github.com/underwriteiq/platform/pkg/common/models"
	"github.com/underwriteiq/platform/pkg/evidence"
	"github.com/underwriteiq/platform/pkg/evidence/mib"
	"github.com/underwriteiq/platform/pkg/evidence/rx"
	"github.com/underwriteiq/platform/pkg/features"
	"github.com/underwriteiq/platform/pkg/observability/metrics"
	"github.com/underwriteiq/platform/pkg/scoring"
)

// EventPublisher emits prediction lifecycle events to the event bus.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Service struct {
	mib       *mib.Extractor
	rx        *rx.Extractor
	scorer    *scoring.Scorer
	publisher EventPublisher // optional
}

func NewService(catalog evidence.Catalog, scorer *scoring.Scorer, publisher EventPublisher) *Service {
	return &Service{
		mib:       mib.NewExtractor(catalog),
		rx:        rx.NewExtractor(catalog),
		scorer:    scorer,
		publisher: publisher,
	}
}

// Score runs the full pipeline for one subject: extract both evidence
// documents, combine, score, classify. It always returns a complete result;
// missing or malformed evidence degrades to default features, never to an
// error.
func (s *Service) Score(ctx context.Context, req models.ScoreRequest) models.PredictionResult {
	start := time.Now()

	mibFeatures := s.mib.Extract(req.MIBXML).Map()
	rxFeatures := s.rx.Extract(req.RXXML).Map()
	combined := features.Combine(mibFeatures, rxFeatures)

	score, modelVersion := s.scorer.Score(ctx, combined, req.Strategy)
	level := scoring.Classify(score)

	result := models.PredictionResult{
		PolicyNumber: req.PolicyNumber,
		RiskScore:    round(score, 4),
		RiskLevel:    level,
		ModelVersion: modelVersion,
		InferenceMs:  round(float64(time.Since(start).Microseconds())/1000.0, 2),
		FeatureCount: models.DeclaredFeatureCount,
		Features: models.FeatureBundle{
			MIB:      mibFeatures,
			RX:       rxFeatures,
			Combined: combined,
		},
	}

	metrics.ObservePrediction(level)

	if s.publisher != nil {
		data := map[string]interface{}{
			"policy_number": result.PolicyNumber,
			"risk_score":    result.RiskScore,
			"risk_level":    result.RiskLevel,
			"model_version": result.ModelVersion,
			"inference_ms":  result.InferenceMs,
		}
		if err := s.publisher.PublishEvent(ctx, "prediction.completed", "inference-service", data); err != nil {
			logger.Log.WithError(err).Warn("Failed to publish prediction event")
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"policy_number": result.PolicyNumber,
		"risk_score":    result.RiskScore,
		"risk_level":    result.RiskLevel,
		"model_version": result.ModelVersion,
		"inference_ms":  result.InferenceMs,
	}).Info("Prediction completed")

	return result
}

func round(value float64, digits int) float64 {
	factor := math.Pow(10, float64(digits))
	return math.Round(value*factor) / factor
}
