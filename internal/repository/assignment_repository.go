package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/hrms/internal/domain"
)

// PostgresAssignmentRepository implements domain.AssignmentRepository using
// PostgreSQL. Uniqueness of the (employee_id, team_id) pair is enforced by
// the junction table's unique constraint, not application locking; two
// concurrent assigns for the same pair race safely.
type PostgresAssignmentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAssignmentRepository creates a new assignment repository
func NewPostgresAssignmentRepository(db *sql.DB, logger *slog.Logger) *PostgresAssignmentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAssignmentRepository{db: db, logger: logger}
}

// verifyOwnership checks that the employee and the team both resolve under
// orgID. Both assign and unassign run this before touching the junction
// table so a cross-tenant pair fails as ErrNotFound, never as a constraint
// error.
func (r *PostgresAssignmentRepository) verifyOwnership(employeeID, teamID, orgID int64) error {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM employees WHERE id = $1 AND organization_id = $3),
			EXISTS (SELECT 1 FROM teams WHERE id = $2 AND organization_id = $3)
	`
	var empOK, teamOK bool
	if err := r.db.QueryRow(query, employeeID, teamID, orgID).Scan(&empOK, &teamOK); err != nil {
		return fmt.Errorf("failed to verify ownership: %w", classifyError(err))
	}
	if !empOK || !teamOK {
		return fmt.Errorf("employee or team not found in this organization: %w", domain.ErrNotFound)
	}
	return nil
}

// Assign inserts the pair after verifying both rows belong to orgID.
// ON CONFLICT DO NOTHING makes a duplicate insert return no row, which is
// reported as ErrAlreadyAssigned rather than a persistence failure.
func (r *PostgresAssignmentRepository) Assign(employeeID, teamID, orgID int64) (*domain.Assignment, error) {
	if err := r.verifyOwnership(employeeID, teamID, orgID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO employee_teams (employee_id, team_id)
		VALUES ($1, $2)
		ON CONFLICT (employee_id, team_id) DO NOTHING
		RETURNING id, employee_id, team_id, assigned_at
	`
	a := &domain.Assignment{}
	err := r.db.QueryRow(query, employeeID, teamID).Scan(
		&a.ID,
		&a.EmployeeID,
		&a.TeamID,
		&a.AssignedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAlreadyAssigned
		}
		r.logger.Error("failed to assign employee to team",
			slog.Int64("employee_id", employeeID),
			slog.Int64("team_id", teamID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to assign employee: %w", classifyError(err))
	}
	return a, nil
}

// Unassign deletes the pair after the same ownership check as Assign and
// returns the deleted row.
func (r *PostgresAssignmentRepository) Unassign(employeeID, teamID, orgID int64) (*domain.Assignment, error) {
	if err := r.verifyOwnership(employeeID, teamID, orgID); err != nil {
		return nil, err
	}

	query := `
		DELETE FROM employee_teams
		WHERE employee_id = $1 AND team_id = $2
		RETURNING id, employee_id, team_id, assigned_at
	`
	a := &domain.Assignment{}
	err := r.db.QueryRow(query, employeeID, teamID).Scan(
		&a.ID,
		&a.EmployeeID,
		&a.TeamID,
		&a.AssignedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to unassign employee: %w", classifyError(err))
	}
	return a, nil
}
