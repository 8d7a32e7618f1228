package scoring

import (
	"context"

	"github.com/underwriteiq/platform/pkg/common/logger"
	"github.com/underwriteiq/platform/pkg/common/models"
	"github.com/underwriteiq/platform/pkg/observability/metrics"
)

// Scorer selects between the remote registry and the rule-based formula.
// Configuration is fixed at construction; the per-request strategy override
// can only choose between the strategies the process was built with.
type Scorer struct {
	defaultStrategy string
	ruleBased       RuleBased
	registry        *RegistryClient // nil when remote scoring is not configured
}

func NewScorer(defaultStrategy string, registry *RegistryClient) *Scorer {
	if defaultStrategy == "" {
		defaultStrategy = models.StrategyRuleBased
	}
	return &Scorer{
		defaultStrategy: defaultStrategy,
		registry:        registry,
	}
}

// Score runs the requested strategy (or the configured default when empty)
// and returns the score with the name of the strategy that actually
// produced it. Registry failures degrade to the rule-based score; the
// caller only sees the fallback result and its RULE_BASED tag.
func (s *Scorer) Score(ctx context.Context, combined map[string]interface{}, requested string) (float64, string) {
	strategy := requested
	if strategy == "" {
		strategy = s.defaultStrategy
	}

	if strategy == models.StrategyRemote && s.registry != nil {
		score, err := s.registry.Score(ctx, combined)
		if err == nil {
			metrics.IncRegistryScored()
			return score, s.registry.Name()
		}
		metrics.IncRegistryFallback()
		logger.Log.WithError(err).Warn("Model registry scoring failed, using rule-based fallback")
	}

	score, _ := s.ruleBased.Score(ctx, combined)
	return score, s.ruleBased.Name()
}
