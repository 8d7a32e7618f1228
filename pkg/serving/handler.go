package serving

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/underwriteiq/platform/pkg/common/models"
	"github.com/underwriteiq/platform/pkg/observability/metrics"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/predict", h.handleBatchPredict).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/score", h.handleScore).Methods(http.MethodPost)
	r.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)
}

type batchRequest struct {
	Data [][]json.RawMessage `json:"data"`
}

type batchResponse struct {
	Data [][]interface{} `json:"data"`
}

// handleBatchPredict serves the row-indexed batch envelope: each request row
// is [row_number, policy_number, mib_xml, rx_xml], each response row is
// [row_number, result]. Rows are scored independently; no state is shared
// between them.
func (h *Handler) handleBatchPredict(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if len(req.Data) == 0 {
		writeJSON(w, http.StatusOK, batchResponse{
			Data: [][]interface{}{{0, map[string]interface{}{
				"status":  "ok",
				"message": "submit data rows for scoring",
			}}},
		})
		return
	}

	metrics.ObserveBatch(len(req.Data))

	rows := make([][]interface{}, 0, len(req.Data))
	for _, raw := range req.Data {
		rowNum, scoreReq := decodeBatchRow(raw)
		result := h.service.Score(r.Context(), scoreReq)
		rows = append(rows, []interface{}{rowNum, result})
	}

	writeJSON(w, http.StatusOK, batchResponse{Data: rows})
}

// decodeBatchRow tolerates short or malformed rows; unparseable cells fall
// back to their zero values and a missing policy number is autogenerated.
func decodeBatchRow(raw []json.RawMessage) (int, models.ScoreRequest) {
	var rowNum int
	if len(raw) > 0 {
		json.Unmarshal(raw[0], &rowNum)
	}

	var req models.ScoreRequest
	if len(raw) > 1 {
		json.Unmarshal(raw[1], &req.PolicyNumber)
	}
	if req.PolicyNumber == "" {
		req.PolicyNumber = "AUTO-" + time.Now().UTC().Format("20060102150405")
	}
	if len(raw) > 2 {
		json.Unmarshal(raw[2], &req.MIBXML)
	}
	if len(raw) > 3 {
		json.Unmarshal(raw[3], &req.RXXML)
	}

	return rowNum, req
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Strategy != "" && !models.ValidStrategy(req.Strategy) {
		http.Error(w, "unknown scoring strategy", http.StatusBadRequest)
		return
	}
	if req.PolicyNumber == "" {
		req.PolicyNumber = "AUTO-" + time.Now().UTC().Format("20060102150405")
	}

	result := h.service.Score(r.Context(), req)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		// Row-envelope shape for service-function health probes.
		writeJSON(w, http.StatusOK, batchResponse{
			Data: [][]interface{}{{0, map[string]interface{}{
				"status":    "healthy",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}}},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":  "evidence-risk-inference",
		"version":  "1.0.0",
		"features": models.DeclaredFeatureCount,
		"status":   "running",
	})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics.WritePrometheus(w)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
