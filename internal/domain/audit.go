package domain

import "time"

// AuditEntry is one immutable row of the audit trail. The application only
// ever inserts and reads these; there is no update or delete path.
type AuditEntry struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	UserID         int64     `json:"user_id"` // actor; an organization id
	Action         string    `json:"action"`
	EntityType     *string   `json:"entity_type"`
	EntityID       *int64    `json:"entity_id"`
	Details        *string   `json:"details"` // opaque JSON payload
	IPAddress      *string   `json:"ip_address"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuditRepository defines append-only access to the audit trail.
type AuditRepository interface {
	Insert(entry *AuditEntry) error
	// List returns entries newest-first. Callers pass sanitized limit and
	// offset values.
	List(orgID int64, limit, offset int) ([]*AuditEntry, error)
	// ListByEntity returns entries for one entity newest-first, capped at
	// limit rows.
	ListByEntity(orgID int64, entityType string, entityID int64, limit int) ([]*AuditEntry, error)
}
