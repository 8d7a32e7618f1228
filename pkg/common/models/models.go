package models

import "time"

// Risk levels produced by the classifier, ordered LOW < MEDIUM < HIGH.
const (
	RiskLevelLow    = "LOW"
	RiskLevelMedium = "MEDIUM"
	RiskLevelHigh   = "HIGH"
)

// Scoring strategies a caller may request.
const (
	StrategyRuleBased = "rule-based"
	StrategyRemote    = "remote"
)

// Model version tags recorded with every result, identifying which path
// actually produced the score. A remote request that fell back reports
// ModelVersionRuleBased.
const (
	ModelVersionRuleBased = "RULE_BASED"
	ModelVersionRegistry  = "REGISTRY_V2"
)

// DeclaredFeatureCount is the feature count advertised on the wire. The
// response contract declares 105 features; the enumerated vocabularies
// currently compute 92 of them, the rest being reserved placeholder fields.
// Reported as a constant, never recomputed per response.
const DeclaredFeatureCount = 105

// ModelName identifies the evidence risk model in persisted predictions.
const ModelName = "EVIDENCE_RISK_MODEL"

// ValidStrategy reports whether s names a known scoring strategy.
func ValidStrategy(s string) bool {
	return s == StrategyRuleBased || s == StrategyRemote
}

// ScoreRequest is a single-subject scoring invocation. Both evidence
// documents are optional; a subject may have no MIB or RX history.
type ScoreRequest struct {
	PolicyNumber string `json:"policy_number"`
	MIBXML       string `json:"mib_xml,omitempty"`
	RXXML        string `json:"rx_xml,omitempty"`
	Strategy     string `json:"strategy,omitempty"`
}

// FeatureBundle carries the per-source feature mappings and their union.
type FeatureBundle struct {
	MIB      map[string]interface{} `json:"mib"`
	RX       map[string]interface{} `json:"rx"`
	Combined map[string]interface{} `json:"combined,omitempty"`
}

// PredictionResult is the immutable outcome of one pipeline invocation.
type PredictionResult struct {
	PolicyNumber string        `json:"policy_number"`
	RiskScore    float64       `json:"risk_score"`
	RiskLevel    string        `json:"risk_level"`
	ModelVersion string        `json:"model_version"`
	InferenceMs  float64       `json:"inference_ms"`
	FeatureCount int           `json:"feature_count"`
	Features     FeatureBundle `json:"features"`
}

// Event bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // prediction.completed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Dashboard models
type RunRequest struct {
	PolicyNumber string `json:"policy_number,omitempty"`
	PolicyPrefix string `json:"policy_prefix,omitempty"`
	MIBXML       string `json:"mib_xml,omitempty"`
	RXXML        string `json:"rx_xml,omitempty"`
	Strategy     string `json:"strategy,omitempty"`
	MLOps        bool   `json:"mlops"`
}

type RunResult struct {
	Prediction PredictionResult `json:"prediction"`
	Persisted  bool             `json:"persisted"`
	TotalMs    float64          `json:"total_ms"`
	MLOpsMs    float64          `json:"mlops_ms,omitempty"`
}

type DashboardStatus struct {
	InferenceHealthy bool  `json:"inference_healthy"`
	PredictionsSeen  int64 `json:"predictions_seen"`
	HighRiskSeen     int64 `json:"high_risk_seen"`
}
