// Package scoring turns a combined feature mapping into a bounded risk score
// and a categorical risk level. Two strategies exist: the deterministic
// rule-based formula, always available, and the remote model registry, which
// falls back to the rules on any failure.
package scoring

import (
	"context"
	"math"

	"github.com/underwriteiq/platform/pkg/common/models"
	"github.com/underwriteiq/platform/pkg/features"
)

// Strategy produces a risk score in [0,1] from a combined feature mapping.
type Strategy interface {
	Name() string
	Score(ctx context.Context, combined map[string]interface{}) (float64, error)
}

// RuleBased is the fixed weighted formula over fourteen contributing terms.
// Each term is individually capped and the sum is capped at 1.0, so the
// score is monotonically non-decreasing in every positive indicator and
// never leaves [0,1]. It cannot fail: absent features are zero/false.
type RuleBased struct{}

func (RuleBased) Name() string { return models.ModelVersionRuleBased }

func (RuleBased) Score(_ context.Context, combined map[string]interface{}) (float64, error) {
	score := 0.0

	// MIB factors
	score += float64(features.GetInt(combined, "mib_hit_count")) * 0.15
	score += math.Min(0.15, float64(features.GetInt(combined, "mib_code_count"))*0.025)
	if features.GetBool(combined, "mib_bmi_over_35") {
		score += 0.10
	}
	if features.GetBool(combined, "mib_has_cardiac_code") {
		score += 0.10
	}
	if features.GetBool(combined, "mib_has_cancer_code") {
		score += 0.15
	}
	if features.GetBool(combined, "mib_has_substance_abuse_code") {
		score += 0.12
	}

	// RX factors
	score += math.Min(0.15, float64(features.GetInt(combined, "rx_total_fills"))*0.02)
	score += math.Min(0.12, float64(features.GetInt(combined, "rx_unique_drugs"))*0.02)
	if features.GetBool(combined, "rx_drug_opioid") {
		score += 0.15
	}
	if features.GetBool(combined, "rx_drug_benzo") {
		score += 0.10
	}
	if features.GetBool(combined, "rx_drug_insulin") {
		score += 0.12
	}

	// High-risk combinations
	if features.GetBool(combined, "flag_opioid_and_benzo") {
		score += 0.25
	}
	if features.GetBool(combined, "flag_high_risk_combo") {
		score += 0.15
	}
	if features.GetBool(combined, "flag_polypharmacy_10") {
		score += 0.10
	}

	return math.Min(1.0, score), nil
}
