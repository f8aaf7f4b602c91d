package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wkg-uslp/internal/match"
)

// ProgressSource provides live run counters
type ProgressSource interface {
	Snapshot() match.ProgressSnapshot
}

// StatusHandler reports matching progress
type StatusHandler struct {
	Progress ProgressSource
	Logger   *slog.Logger
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status string `json:"status"`
}

// GetStatus returns the current progress snapshot
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.Progress.Snapshot())
}

// Health reports that the process is serving
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *StatusHandler) writeJSON(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := h.Logger
		if logger == nil {
			logger = slog.Default()
		}
		// headers are already sent, the client only sees a truncated body
		logger.Debug("Failed to write response",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
}
