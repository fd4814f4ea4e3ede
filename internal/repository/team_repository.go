package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/hrms/internal/domain"
)

// PostgresTeamRepository implements domain.TeamRepository using PostgreSQL.
type PostgresTeamRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *sql.DB, logger *slog.Logger) *PostgresTeamRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTeamRepository{db: db, logger: logger}
}

// teamWithMembers selects a team row enriched with its member count and a
// JSON array of members (NULL when the team is empty).
const teamWithMembers = `
	SELECT t.id, t.organization_id, t.name, t.description, t.created_at, t.updated_at,
	       COUNT(et.employee_id)::int AS member_count,
	       json_agg(
	         json_build_object(
	           'employee_id', e.id,
	           'first_name', e.first_name,
	           'last_name', e.last_name,
	           'email', e.email,
	           'position', e.position,
	           'assigned_at', et.assigned_at
	         )
	       ) FILTER (WHERE e.id IS NOT NULL) AS members
	FROM teams t
	LEFT JOIN employee_teams et ON t.id = et.team_id
	LEFT JOIN employees e ON et.employee_id = e.id
`

// Create inserts a new team under orgID and fills in generated fields.
func (r *PostgresTeamRepository) Create(orgID int64, t *domain.Team) error {
	query := `
		INSERT INTO teams (organization_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, organization_id, created_at, updated_at
	`
	err := r.db.QueryRow(query, orgID, t.Name, t.Description).Scan(
		&t.ID,
		&t.OrganizationID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		err = classifyError(err)
		if !errors.Is(err, domain.ErrDuplicate) {
			r.logger.Error("failed to create team",
				slog.Int64("organization_id", orgID),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	t.Members = []domain.TeamMember{}
	return nil
}

// List returns the organization's teams newest-first, each carrying its
// members and member count.
func (r *PostgresTeamRepository) List(orgID int64) ([]*domain.Team, error) {
	query := teamWithMembers + `
		WHERE t.organization_id = $1
		GROUP BY t.id
		ORDER BY t.created_at DESC
	`
	rows, err := r.db.Query(query, orgID)
	if err != nil {
		r.logger.Error("failed to list teams",
			slog.Int64("organization_id", orgID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list teams: %w", classifyError(err))
	}
	defer rows.Close()

	out := []*domain.Team{}
	for rows.Next() {
		t, err := scanTeamWithMembers(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID retrieves one team under orgID, with members and member count.
func (r *PostgresTeamRepository) GetByID(id, orgID int64) (*domain.Team, error) {
	query := teamWithMembers + `
		WHERE t.id = $1 AND t.organization_id = $2
		GROUP BY t.id
	`
	t, err := scanTeamWithMembers(r.db.QueryRow(query, id, orgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", classifyError(err))
	}
	return t, nil
}

// Update replaces the mutable fields and refreshes t from the stored row.
func (r *PostgresTeamRepository) Update(id, orgID int64, t *domain.Team) error {
	query := `
		UPDATE teams
		SET name = $1, description = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND organization_id = $4
		RETURNING id, organization_id, name, description, created_at, updated_at
	`
	err := r.db.QueryRow(query, t.Name, t.Description, id, orgID).Scan(
		&t.ID,
		&t.OrganizationID,
		&t.Name,
		&t.Description,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		err = classifyError(err)
		if !errors.Is(err, domain.ErrDuplicate) {
			r.logger.Error("failed to update team",
				slog.Int64("id", id),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("failed to update team: %w", err)
	}
	t.Members = []domain.TeamMember{}
	return nil
}

// Delete removes the team and returns the deleted row. Memberships cascade
// at the database level.
func (r *PostgresTeamRepository) Delete(id, orgID int64) (*domain.Team, error) {
	query := `
		DELETE FROM teams
		WHERE id = $1 AND organization_id = $2
		RETURNING id, organization_id, name, description, created_at, updated_at
	`
	t := &domain.Team{Members: []domain.TeamMember{}}
	err := r.db.QueryRow(query, id, orgID).Scan(
		&t.ID,
		&t.OrganizationID,
		&t.Name,
		&t.Description,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to delete team",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to delete team: %w", classifyError(err))
	}
	return t, nil
}

// Members lists the team's employees, most recently assigned first.
func (r *PostgresTeamRepository) Members(teamID, orgID int64) ([]*domain.AssignedEmployee, error) {
	query := `
		SELECT e.id, e.organization_id, e.first_name, e.last_name, e.email,
		       e.phone, e.position, e.department, e.hire_date,
		       e.created_at, e.updated_at, et.assigned_at
		FROM employees e
		INNER JOIN employee_teams et ON e.id = et.employee_id
		INNER JOIN teams t ON et.team_id = t.id
		WHERE t.id = $1 AND t.organization_id = $2
		ORDER BY et.assigned_at DESC
	`
	rows, err := r.db.Query(query, teamID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", classifyError(err))
	}
	defer rows.Close()

	out := []*domain.AssignedEmployee{}
	for rows.Next() {
		ae := &domain.AssignedEmployee{}
		err := rows.Scan(
			&ae.ID,
			&ae.OrganizationID,
			&ae.FirstName,
			&ae.LastName,
			&ae.Email,
			&ae.Phone,
			&ae.Position,
			&ae.Department,
			&ae.HireDate,
			&ae.CreatedAt,
			&ae.UpdatedAt,
			&ae.AssignedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		ae.Teams = []domain.EmployeeTeam{}
		out = append(out, ae)
	}
	return out, rows.Err()
}

func scanTeamWithMembers(row rowScanner) (*domain.Team, error) {
	t := &domain.Team{}
	var membersJSON []byte
	err := row.Scan(
		&t.ID,
		&t.OrganizationID,
		&t.Name,
		&t.Description,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.MemberCount,
		&membersJSON,
	)
	if err != nil {
		return nil, err
	}
	t.Members, err = decodeTeamMembers(membersJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode members aggregate: %w", err)
	}
	return t, nil
}
