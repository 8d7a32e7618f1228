package scoring

import (
	"context"
	"math"
	"os"
	"testing"

	"github.com/underwriteiq/platform/pkg/common/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func ruleScore(t *testing.T, combined map[string]interface{}) float64 {
	t.Helper()
	score, err := RuleBased{}.Score(context.Background(), combined)
	if err != nil {
		t.Fatalf("rule scoring failed: %v", err)
	}
	return score
}

func TestRuleBasedEmptyFeaturesScoreZero(t *testing.T) {
	if got := ruleScore(t, map[string]interface{}{}); got != 0 {
		t.Fatalf("expected zero score, got %f", got)
	}
	if got := ruleScore(t, nil); got != 0 {
		t.Fatalf("expected zero score for nil mapping, got %f", got)
	}
}

func TestRuleBasedMIBContributions(t *testing.T) {
	combined := map[string]interface{}{
		"mib_code_count":       1,
		"mib_bmi_over_35":      true,
		"mib_has_cardiac_code": true,
	}
	// 0.025 + 0.10 + 0.10
	if got := ruleScore(t, combined); math.Abs(got-0.225) > 1e-9 {
		t.Fatalf("expected 0.225, got %f", got)
	}
}

func TestRuleBasedOpioidBenzoScenario(t *testing.T) {
	combined := map[string]interface{}{
		"rx_total_fills":        10,
		"rx_unique_drugs":       2,
		"rx_drug_opioid":        true,
		"rx_drug_benzo":         true,
		"flag_opioid_and_benzo": true,
		"flag_high_risk_combo":  true,
	}
	// 0.15 + 0.04 + 0.15 + 0.10 + 0.25 + 0.15
	if got := ruleScore(t, combined); math.Abs(got-0.84) > 1e-9 {
		t.Fatalf("expected 0.84, got %f", got)
	}
}

func TestRuleBasedCountTermsAreCapped(t *testing.T) {
	combined := map[string]interface{}{
		"mib_code_count":  100,
		"rx_total_fills":  500,
		"rx_unique_drugs": 500,
	}
	// 0.15 + 0.15 + 0.12 at the per-term caps
	if got := ruleScore(t, combined); math.Abs(got-0.42) > 1e-9 {
		t.Fatalf("expected capped terms to sum to 0.42, got %f", got)
	}
}

func TestRuleBasedScoreNeverExceedsOne(t *testing.T) {
	combined := map[string]interface{}{
		"mib_hit_count":                1,
		"mib_code_count":               20,
		"mib_bmi_over_35":              true,
		"mib_has_cardiac_code":         true,
		"mib_has_cancer_code":          true,
		"mib_has_substance_abuse_code": true,
		"rx_total_fills":               50,
		"rx_unique_drugs":              20,
		"rx_drug_opioid":               true,
		"rx_drug_benzo":                true,
		"rx_drug_insulin":              true,
		"flag_opioid_and_benzo":        true,
		"flag_high_risk_combo":         true,
		"flag_polypharmacy_10":         true,
	}
	if got := ruleScore(t, combined); got != 1.0 {
		t.Fatalf("expected capped score 1.0, got %f", got)
	}
}

func TestRuleBasedMonotonicInIndicators(t *testing.T) {
	base := map[string]interface{}{
		"mib_code_count": 2,
		"rx_total_fills": 3,
	}
	baseline := ruleScore(t, base)

	for _, flag := range []string{
		"mib_bmi_over_35", "mib_has_cardiac_code", "mib_has_cancer_code",
		"mib_has_substance_abuse_code", "rx_drug_opioid", "rx_drug_benzo",
		"rx_drug_insulin", "flag_opioid_and_benzo", "flag_high_risk_combo",
		"flag_polypharmacy_10",
	} {
		combined := map[string]interface{}{
			"mib_code_count": 2,
			"rx_total_fills": 3,
			flag:             true,
		}
		if got := ruleScore(t, combined); got <= baseline {
			t.Fatalf("expected %s to raise the score above %f, got %f", flag, baseline, got)
		}
	}
}
