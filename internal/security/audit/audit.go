package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/yourorg/hrms/internal/domain"
	"github.com/yourorg/hrms/internal/observability/metrics"
)

const (
	// DefaultLimit applies when the caller omits a page size.
	DefaultLimit = 100
	// MaxLimit caps page sizes and entity queries so a malicious limit
	// cannot produce an unbounded result set.
	MaxLimit = 500
)

// Recorder appends immutable audit rows and echoes each one to the
// structured log. Rows are written after the action they describe has
// committed: a failed write surfaces as an error to the caller but can
// never roll back the primary mutation.
type Recorder struct {
	repo   domain.AuditRepository
	logger *slog.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(repo domain.AuditRepository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record appends one entry. entityType, entityID and ipAddress are stored
// as NULL when zero; details, when non-nil, is JSON-serialized into the
// opaque details column. A returned error means the trail is missing this
// action, which callers must not swallow.
func (r *Recorder) Record(orgID, userID int64, action, entityType string, entityID int64, details any, ipAddress string) (*domain.AuditEntry, error) {
	entry := &domain.AuditEntry{
		OrganizationID: orgID,
		UserID:         userID,
		Action:         action,
	}
	if entityType != "" {
		entry.EntityType = &entityType
	}
	if entityID != 0 {
		entry.EntityID = &entityID
	}
	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return nil, fmt.Errorf("failed to encode audit details: %w", err)
		}
		s := string(raw)
		entry.Details = &s
	}

	if err := r.repo.Insert(entry); err != nil {
		metrics.ObserveAuditWrite("error")
		return nil, err
	}
	metrics.ObserveAuditWrite("ok")

	r.logger.Info("audit",
		slog.String("action", action),
		slog.String("entity_type", entityType),
		slog.Int64("entity_id", entityID),
		slog.Int64("organization_id", orgID),
		slog.Int64("user_id", userID),
	)
	return entry, nil
}

// List returns the organization's entries newest-first. Zero or negative
// limits fall back to DefaultLimit, oversized limits clamp to MaxLimit,
// negative offsets clamp to zero.
func (r *Recorder) List(orgID int64, limit, offset int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return r.repo.List(orgID, limit, offset)
}

// ListByEntity returns entries for one entity newest-first, capped at
// MaxLimit rows.
func (r *Recorder) ListByEntity(orgID int64, entityType string, entityID int64) ([]*domain.AuditEntry, error) {
	return r.repo.ListByEntity(orgID, entityType, entityID, MaxLimit)
}
