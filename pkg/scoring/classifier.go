package scoring

import "github.com/underwriteiq/platform/pkg/common/models"

// Classifier thresholds, boundary-inclusive.
const (
	HighThreshold   = 0.6
	MediumThreshold = 0.3
)

// Classify maps a risk score to its ordered risk level. Total and
// deterministic; no failure mode.
func Classify(score float64) string {
	switch {
	case score >= HighThreshold:
		return models.RiskLevelHigh
	case score >= MediumThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}
