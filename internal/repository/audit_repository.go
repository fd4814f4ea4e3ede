package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourorg/hrms/internal/domain"
)

// PostgresAuditRepository implements domain.AuditRepository using
// PostgreSQL. The table is append-only; no update or delete statements
// exist in this package.
type PostgresAuditRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAuditRepository creates a new audit repository
func NewPostgresAuditRepository(db *sql.DB, logger *slog.Logger) *PostgresAuditRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAuditRepository{db: db, logger: logger}
}

const auditColumns = `id, organization_id, user_id, action, entity_type, entity_id,
	details, ip_address, created_at`

// Insert appends one audit row and fills in the generated id and timestamp.
func (r *PostgresAuditRepository) Insert(entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_logs
		(organization_id, user_id, action, entity_type, entity_id, details, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(
		query,
		entry.OrganizationID,
		entry.UserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Details,
		entry.IPAddress,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		r.logger.Error("failed to insert audit entry",
			slog.Int64("organization_id", entry.OrganizationID),
			slog.String("action", entry.Action),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to insert audit entry: %w", classifyError(err))
	}
	return nil
}

// List returns the organization's audit entries newest-first.
func (r *PostgresAuditRepository) List(orgID int64, limit, offset int) ([]*domain.AuditEntry, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", classifyError(err))
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

// ListByEntity returns entries for one entity newest-first, capped at limit.
func (r *PostgresAuditRepository) ListByEntity(orgID int64, entityType string, entityID int64, limit int) ([]*domain.AuditEntry, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE organization_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC
		LIMIT $4
	`
	rows, err := r.db.Query(query, orgID, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entity audit entries: %w", classifyError(err))
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func scanAuditRows(rows *sql.Rows) ([]*domain.AuditEntry, error) {
	out := []*domain.AuditEntry{}
	for rows.Next() {
		entry := &domain.AuditEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.OrganizationID,
			&entry.UserID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Details,
			&entry.IPAddress,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
