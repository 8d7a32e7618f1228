// Package features merges the per-source feature mappings into the combined
// vector consumed by the scorers, and provides the defensive typed lookups
// scoring relies on.
package features

import (
	"github.com/underwriteiq/platform/pkg/evidence/mib"
	"github.com/underwriteiq/platform/pkg/evidence/rx"
)

// CombinedFeatureCount is the size of the union of the two vocabularies.
// The MIB and RX key sets are disjoint by prefix, so the union size is the
// plain sum; a test guards against silent drift when extractor logic changes.
const CombinedFeatureCount = mib.FeatureCount + rx.FeatureCount

// Combine unions the two feature mappings. Keys never collide.
func Combine(mibFeatures, rxFeatures map[string]interface{}) map[string]interface{} {
	combined := make(map[string]interface{}, len(mibFeatures)+len(rxFeatures))
	for name, value := range mibFeatures {
		combined[name] = value
	}
	for name, value := range rxFeatures {
		combined[name] = value
	}
	return combined
}

// GetInt looks up an integer feature, treating absence or a foreign type as
// zero. Scoring must never fail on a missing key.
func GetInt(features map[string]interface{}, name string) int {
	switch v := features[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// GetBool looks up a boolean feature, defaulting to false.
func GetBool(features map[string]interface{}, name string) bool {
	v, _ := features[name].(bool)
	return v
}

// GetFloat looks up a real-valued feature, defaulting to 0.0.
func GetFloat(features map[string]interface{}, name string) float64 {
	switch v := features[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
