package domain

import "time"

// Team belongs to exactly one organization. Name is unique within that
// organization.
type Team struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Members and MemberCount are populated by list/get queries so clients
	// never need a per-team fan-out.
	MemberCount int          `json:"member_count"`
	Members     []TeamMember `json:"members"`
}

// TeamMember is the compact employee reference embedded in team listings.
type TeamMember struct {
	EmployeeID int64     `json:"employee_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Position   *string   `json:"position"`
	AssignedAt time.Time `json:"assigned_at"`
}

// AssignedEmployee is a full employee row plus assignment time, as returned
// by the team member listing.
type AssignedEmployee struct {
	Employee
	AssignedAt time.Time `json:"assigned_at"`
}

// Assignment is one row of the employee-team junction table. The
// (EmployeeID, TeamID) pair is unique.
type Assignment struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	TeamID     int64     `json:"team_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// TeamRepository defines tenant-scoped data access for teams. Same
// contract as EmployeeRepository: cross-tenant ids are ErrNotFound.
type TeamRepository interface {
	Create(orgID int64, t *Team) error
	List(orgID int64) ([]*Team, error)
	GetByID(id, orgID int64) (*Team, error)
	Update(id, orgID int64, t *Team) error
	Delete(id, orgID int64) (*Team, error)
	// Members lists the team's employees, most recently assigned first.
	Members(teamID, orgID int64) ([]*AssignedEmployee, error)
}

// AssignmentRepository manages the employee-team junction.
type AssignmentRepository interface {
	// Assign verifies that both the employee and the team resolve under
	// orgID (ErrNotFound otherwise), then inserts the pair. A pair that
	// already exists yields ErrAlreadyAssigned, never a second row.
	Assign(employeeID, teamID, orgID int64) (*Assignment, error)

	// Unassign verifies tenant ownership the same way, then deletes the
	// pair and returns it. ErrNotFound when the pair is absent.
	Unassign(employeeID, teamID, orgID int64) (*Assignment, error)
}
