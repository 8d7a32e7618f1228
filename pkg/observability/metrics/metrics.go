package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	predictionsTotal  atomic.Int64
	predictionsLow    atomic.Int64
	predictionsMedium atomic.Int64
	predictionsHigh   atomic.Int64
	registryScored    atomic.Int64
	registryFallbacks atomic.Int64
	batchRowsTotal    atomic.Int64
)

func Init() {}

// ObservePrediction records one completed scoring invocation.
func ObservePrediction(level string) {
	predictionsTotal.Add(1)
	switch level {
	case "LOW":
		predictionsLow.Add(1)
	case "MEDIUM":
		predictionsMedium.Add(1)
	case "HIGH":
		predictionsHigh.Add(1)
	}
}

// ObserveBatch records the row count of one batch envelope.
func ObserveBatch(rows int) {
	batchRowsTotal.Add(int64(rows))
}

// IncRegistryScored counts predictions produced by the remote registry.
func IncRegistryScored() {
	registryScored.Add(1)
}

// IncRegistryFallback counts registry failures recovered by the rule-based
// strategy.
func IncRegistryFallback() {
	registryFallbacks.Add(1)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP underwriteiq_predictions_total Number of risk predictions served since process start.\n")
	fmt.Fprintf(w, "# TYPE underwriteiq_predictions_total counter\n")
	fmt.Fprintf(w, "underwriteiq_predictions_total %d\n", predictionsTotal.Load())

	fmt.Fprintf(w, "# HELP underwriteiq_predictions_low_total Number of predictions classified LOW.\n")
	fmt.Fprintf(w, "# TYPE underwriteiq_predictions_low_total counter\n")
	fmt.Fprintf(w, "underwriteiq_predictions_low_total %d\n", predictionsLow.Load())

	fmt.Fprintf(w, "# HELP underwriteiq_predictions_medium_total Number of predictions classified MEDIUM.\n")
	fmt.Fprintf(w, "# TYPE underwriteiq_predictions_medium_total counter\n")
	fmt.Fprintf(w, "underwriteiq_predictions_medium_total %d\n", predictionsMedium.Load())

	fmt.Fprintf(w, "# HELP underwriteiq_predictions_high_total Number of predictions classified HIGH.\n")
	fmt.Fprintf(w, "# TYPE underwriteiq_predictions_high_total counter\n")
	fmt.Fprintf(w, "underwriteiq_predictions_high_total %d\n", predictionsHigh.Load())

	fmt.Fprintf(w, "# HELP underwriteiq_registry_scored_total Number of predictions produced by the model registry.\n")
	fmt.Fprintf(w, "# TYPE underwriteiq_registry_scored_total counter\n")
	fmt.Fprintf(w, "underwriteiq_registry_scored_total %d\n", registryScored.Load())

	fmt.Fprintf(w, "# HELP underwriteiq_registry_fallback_total Number of registry failures recovered by rule-based scoring.\n")
	fmt.Fprintf(w, "# TYPE underwriteiq_registry_fallback_total counter\n")
	fmt.Fprintf(w, "underwriteiq_registry_fallback_total %d\n", registryFallbacks.Load())

	fmt.Fprintf(w, "# HELP underwriteiq_batch_rows_total Number of subject rows received in batch envelopes.\n")
	fmt.Fprintf(w, "# TYPE underwriteiq_batch_rows_total counter\n")
	fmt.Fprintf(w, "underwriteiq_batch_rows_total %d\n", batchRowsTotal.Load())
}
