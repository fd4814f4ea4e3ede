package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/hrms/internal/domain"
)

// PostgresEmployeeRepository implements domain.EmployeeRepository using
// PostgreSQL. Every query filters on organization_id so a cross-tenant id
// resolves to no rows.
type PostgresEmployeeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresEmployeeRepository creates a new employee repository
func NewPostgresEmployeeRepository(db *sql.DB, logger *slog.Logger) *PostgresEmployeeRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEmployeeRepository{db: db, logger: logger}
}

const employeeColumns = `e.id, e.organization_id, e.first_name, e.last_name, e.email,
	e.phone, e.position, e.department, e.hire_date, e.created_at, e.updated_at`

// employeeWithTeams selects an employee row enriched with its team
// memberships as a JSON array (NULL when the employee has none).
const employeeWithTeams = `
	SELECT ` + employeeColumns + `,
	       json_agg(
	         json_build_object(
	           'team_id', t.id,
	           'team_name', t.name,
	           'assigned_at', et.assigned_at
	         )
	       ) FILTER (WHERE t.id IS NOT NULL) AS teams
	FROM employees e
	LEFT JOIN employee_teams et ON e.id = et.employee_id
	LEFT JOIN teams t ON et.team_id = t.id
`

// Create inserts a new employee under orgID and fills in generated fields.
func (r *PostgresEmployeeRepository) Create(orgID int64, e *domain.Employee) error {
	query := `
		INSERT INTO employees
		(organization_id, first_name, last_name, email, phone, position, department, hire_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, organization_id, created_at, updated_at
	`
	err := r.db.QueryRow(
		query,
		orgID,
		e.FirstName,
		e.LastName,
		e.Email,
		e.Phone,
		e.Position,
		e.Department,
		e.HireDate,
	).Scan(&e.ID, &e.OrganizationID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		err = classifyError(err)
		if !errors.Is(err, domain.ErrDuplicate) {
			r.logger.Error("failed to create employee",
				slog.Int64("organization_id", orgID),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	e.Teams = []domain.EmployeeTeam{}
	return nil
}

// List returns the organization's employees newest-first, each carrying its
// team memberships.
func (r *PostgresEmployeeRepository) List(orgID int64) ([]*domain.Employee, error) {
	query := employeeWithTeams + `
		WHERE e.organization_id = $1
		GROUP BY e.id
		ORDER BY e.created_at DESC
	`
	rows, err := r.db.Query(query, orgID)
	if err != nil {
		r.logger.Error("failed to list employees",
			slog.Int64("organization_id", orgID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list employees: %w", classifyError(err))
	}
	defer rows.Close()

	out := []*domain.Employee{}
	for rows.Next() {
		e, err := scanEmployeeWithTeams(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID retrieves one employee under orgID, with team memberships.
func (r *PostgresEmployeeRepository) GetByID(id, orgID int64) (*domain.Employee, error) {
	query := employeeWithTeams + `
		WHERE e.id = $1 AND e.organization_id = $2
		GROUP BY e.id
	`
	e, err := scanEmployeeWithTeams(r.db.QueryRow(query, id, orgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", classifyError(err))
	}
	return e, nil
}

// Update replaces all mutable fields and refreshes e from the stored row.
func (r *PostgresEmployeeRepository) Update(id, orgID int64, e *domain.Employee) error {
	query := `
		UPDATE employees
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
		    position = $5, department = $6, hire_date = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $8 AND organization_id = $9
		RETURNING id, organization_id, first_name, last_name, email,
		          phone, position, department, hire_date, created_at, updated_at
	`
	err := r.db.QueryRow(
		query,
		e.FirstName,
		e.LastName,
		e.Email,
		e.Phone,
		e.Position,
		e.Department,
		e.HireDate,
		id,
		orgID,
	).Scan(
		&e.ID,
		&e.OrganizationID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.Phone,
		&e.Position,
		&e.Department,
		&e.HireDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		err = classifyError(err)
		if !errors.Is(err, domain.ErrDuplicate) {
			r.logger.Error("failed to update employee",
				slog.Int64("id", id),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	e.Teams = []domain.EmployeeTeam{}
	return nil
}

// Delete removes the employee and returns the deleted row. Team memberships
// cascade at the database level.
func (r *PostgresEmployeeRepository) Delete(id, orgID int64) (*domain.Employee, error) {
	query := `
		DELETE FROM employees
		WHERE id = $1 AND organization_id = $2
		RETURNING id, organization_id, first_name, last_name, email,
		          phone, position, department, hire_date, created_at, updated_at
	`
	e := &domain.Employee{Teams: []domain.EmployeeTeam{}}
	err := r.db.QueryRow(query, id, orgID).Scan(
		&e.ID,
		&e.OrganizationID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.Phone,
		&e.Position,
		&e.Department,
		&e.HireDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to delete employee",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to delete employee: %w", classifyError(err))
	}
	return e, nil
}

// Teams lists the employee's teams, most recently assigned first.
func (r *PostgresEmployeeRepository) Teams(employeeID, orgID int64) ([]*domain.AssignedTeam, error) {
	query := `
		SELECT t.id, t.organization_id, t.name, t.description,
		       t.created_at, t.updated_at, et.assigned_at
		FROM teams t
		INNER JOIN employee_teams et ON t.id = et.team_id
		INNER JOIN employees e ON et.employee_id = e.id
		WHERE e.id = $1 AND e.organization_id = $2
		ORDER BY et.assigned_at DESC
	`
	rows, err := r.db.Query(query, employeeID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee teams: %w", classifyError(err))
	}
	defer rows.Close()

	out := []*domain.AssignedTeam{}
	for rows.Next() {
		at := &domain.AssignedTeam{}
		err := rows.Scan(
			&at.ID,
			&at.OrganizationID,
			&at.Name,
			&at.Description,
			&at.CreatedAt,
			&at.UpdatedAt,
			&at.AssignedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		at.Members = []domain.TeamMember{}
		out = append(out, at)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployeeWithTeams(row rowScanner) (*domain.Employee, error) {
	e := &domain.Employee{}
	var teamsJSON []byte
	err := row.Scan(
		&e.ID,
		&e.OrganizationID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.Phone,
		&e.Position,
		&e.Department,
		&e.HireDate,
		&e.CreatedAt,
		&e.UpdatedAt,
		&teamsJSON,
	)
	if err != nil {
		return nil, err
	}
	e.Teams, err = decodeEmployeeTeams(teamsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode teams aggregate: %w", err)
	}
	return e, nil
}
