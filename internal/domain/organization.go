package domain

import "time"

// Organization is the tenant root. Every other entity hangs off its ID, and
// the organization record doubles as the login principal (there is no
// separate user table).
type Organization struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"` // globally unique
	PasswordHash string    `json:"-"`     // bcrypt, never serialized
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OrganizationRepository defines data access for organizations.
type OrganizationRepository interface {
	// Create persists a new organization and fills in ID and timestamps.
	// Returns ErrDuplicate when the email is already registered.
	Create(org *Organization) error

	// GetByEmail returns the full record including the password hash, for
	// credential verification. Returns ErrNotFound when absent.
	GetByEmail(email string) (*Organization, error)

	// GetByID returns the record without the password hash.
	GetByID(id int64) (*Organization, error)

	// UpdatePassword overwrites the stored hash and bumps updated_at.
	UpdatePassword(id int64, passwordHash string) error
}
