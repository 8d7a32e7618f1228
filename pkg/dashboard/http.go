package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/underwriteiq/platform/pkg/common/logger"
	"github.com/underwriteiq/platform/pkg/common/models"
)

// Handler exposes the dashboard HTTP API.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the dashboard routes. When auth is non-nil the run
// endpoint requires authentication; read endpoints stay open.
func (h *Handler) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/api/v1/status", h.handleStatus).Methods("GET")
	r.HandleFunc("/api/v1/features/recent", h.handleRecentFeatures).Methods("GET")
	r.HandleFunc("/api/v1/predictions/recent", h.handleRecentPredictions).Methods("GET")

	run := r.PathPrefix("/api/v1/inference").Subrouter()
	if auth != nil {
		run.Use(auth)
	}
	run.HandleFunc("/run", h.handleRun).Methods("POST")
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req models.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Strategy != "" && !models.ValidStrategy(req.Strategy) {
		writeError(w, http.StatusBadRequest, "unknown scoring strategy")
		return
	}

	result, err := h.service.Run(r.Context(), req)
	if err != nil {
		logger.Log.WithError(err).Error("Dashboard run failed")
		writeError(w, http.StatusBadGateway, "inference run failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Status(r.Context()))
}

func (h *Handler) handleRecentFeatures(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.RecentFeatures(r.Context(), queryLimit(r))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to list recent features")
		writeError(w, http.StatusInternalServerError, "failed to list features")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(rows),
		"features": rows,
	})
}

func (h *Handler) handleRecentPredictions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.RecentPredictions(r.Context(), queryLimit(r))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to list recent predictions")
		writeError(w, http.StatusInternalServerError, "failed to list predictions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":       len(rows),
		"predictions": rows,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "dashboard-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func queryLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
