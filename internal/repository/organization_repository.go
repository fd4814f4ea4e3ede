package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/hrms/internal/domain"
)

// PostgresOrganizationRepository implements domain.OrganizationRepository
// using PostgreSQL.
type PostgresOrganizationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresOrganizationRepository creates a new organization repository
func NewPostgresOrganizationRepository(db *sql.DB, logger *slog.Logger) *PostgresOrganizationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOrganizationRepository{db: db, logger: logger}
}

// Create persists a new organization. The email unique index is the final
// arbiter of duplicates; a violation surfaces as domain.ErrDuplicate.
func (r *PostgresOrganizationRepository) Create(org *domain.Organization) error {
	query := `
		INSERT INTO organizations (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(query, org.Name, org.Email, org.PasswordHash).Scan(
		&org.ID,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		err = classifyError(err)
		if !errors.Is(err, domain.ErrDuplicate) {
			r.logger.Error("failed to create organization",
				slog.String("email", org.Email),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetByEmail retrieves an organization by email, including the password
// hash, for credential verification.
func (r *PostgresOrganizationRepository) GetByEmail(email string) (*domain.Organization, error) {
	org := &domain.Organization{}
	query := `
		SELECT id, name, email, password, created_at, updated_at
		FROM organizations
		WHERE email = $1
	`
	err := r.db.QueryRow(query, email).Scan(
		&org.ID,
		&org.Name,
		&org.Email,
		&org.PasswordHash,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization by email: %w", classifyError(err))
	}
	return org, nil
}

// GetByID retrieves an organization by ID. The password hash is never
// selected on this path.
func (r *PostgresOrganizationRepository) GetByID(id int64) (*domain.Organization, error) {
	org := &domain.Organization{}
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	err := r.db.QueryRow(query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Email,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", classifyError(err))
	}
	return org, nil
}

// UpdatePassword overwrites the stored hash and bumps updated_at.
func (r *PostgresOrganizationRepository) UpdatePassword(id int64, passwordHash string) error {
	query := `
		UPDATE organizations
		SET password = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING updated_at
	`
	var discard sql.NullTime
	err := r.db.QueryRow(query, passwordHash, id).Scan(&discard)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		r.logger.Error("failed to update organization password",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to update password: %w", classifyError(err))
	}
	return nil
}
