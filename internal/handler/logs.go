package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/hrms/internal/security/audit"
	"github.com/yourorg/hrms/internal/security/middleware"
)

// LogsHandler exposes the organization's audit trail, read-only.
type LogsHandler struct {
	auditor     *audit.Recorder
	logger      *slog.Logger
	development bool
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(auditor *audit.Recorder, logger *slog.Logger, development bool) *LogsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogsHandler{auditor: auditor, logger: logger, development: development}
}

// List handles GET /api/logs with optional limit and offset query
// parameters. Missing, malformed or out-of-range values fall back to the
// recorder's defaults and clamps.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	logs, err := h.auditor.List(claims.OrganizationID, limit, offset)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}
	respondList(w, logs, len(logs))
}

// ListByEntity handles GET /api/logs/{entity_type}/{entity_id}
func (h *LogsHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entityType := r.PathValue("entity_type")
	entityID, ok := pathID(r, "entity_id")
	if entityType == "" || !ok {
		respondError(w, http.StatusBadRequest, "Valid entity type and ID are required")
		return
	}

	logs, err := h.auditor.ListByEntity(claims.OrganizationID, entityType, entityID)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}
	respondList(w, logs, len(logs))
}
