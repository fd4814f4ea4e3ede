package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is anything whose connectivity the readiness check verifies.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and readiness endpoints.
type HealthHandler struct {
	db     Pinger
	redis  Pinger // nil when no revocation store is configured
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db, redis Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, redis: redis, logger: logger}
}

// HealthResponse is the /health body shape
type HealthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Health handles GET /health - simple liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{
		Success:   true,
		Message:   "HRMS API is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /readyz - returns 200 only when dependencies answer
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "error: " + err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
		h.logger.Warn("readiness check failed",
			slog.String("database", checks["database"]),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"ready": ready, "checks": checks})
}
