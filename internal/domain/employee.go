package domain

import "time"

// Employee belongs to exactly one organization. Email is unique within that
// organization, not globally.
type Employee struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organization_id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone"`
	Position       *string    `json:"position"`
	Department     *string    `json:"department"`
	HireDate       *time.Time `json:"hire_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Teams is populated by list/get queries; empty when the employee has
	// no memberships.
	Teams []EmployeeTeam `json:"teams"`
}

// EmployeeTeam is the compact team reference embedded in employee listings.
type EmployeeTeam struct {
	TeamID     int64     `json:"team_id"`
	TeamName   string    `json:"team_name"`
	AssignedAt time.Time `json:"assigned_at"`
}

// AssignedTeam is a full team row plus the time the employee joined it,
// as returned by the employee's team listing.
type AssignedTeam struct {
	Team
	AssignedAt time.Time `json:"assigned_at"`
}

// EmployeeRepository defines tenant-scoped data access for employees. The
// orgID parameter is mandatory on every method: an id that exists under a
// different organization behaves exactly like a missing id.
type EmployeeRepository interface {
	Create(orgID int64, e *Employee) error
	List(orgID int64) ([]*Employee, error)
	GetByID(id, orgID int64) (*Employee, error)
	// Update replaces all mutable fields and refreshes e from the stored
	// row. Returns ErrNotFound when id does not resolve under orgID.
	Update(id, orgID int64, e *Employee) error
	// Delete removes the employee (memberships cascade) and returns the
	// deleted row.
	Delete(id, orgID int64) (*Employee, error)
	// Teams lists the employee's teams, most recently assigned first.
	Teams(employeeID, orgID int64) ([]*AssignedTeam, error)
}
