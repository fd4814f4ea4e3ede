package domain

import "errors"

// Sentinel errors shared by repositories, services and handlers. Repositories
// wrap these with fmt.Errorf("...: %w", ...) so callers classify with
// errors.Is instead of matching message strings.
var (
	// ErrNotFound covers both "row does not exist" and "row belongs to
	// another organization" - the two must be indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate maps a unique-constraint violation (organization email,
	// per-organization employee email or team name).
	ErrDuplicate = errors.New("already exists")

	// ErrForeignKey maps a foreign-key violation (reference to a missing row).
	ErrForeignKey = errors.New("referenced row does not exist")

	// ErrAlreadyAssigned signals an (employee, team) pair that is already in
	// the junction table. Distinct from ErrDuplicate so handlers can produce
	// the "already assigned" conflict message.
	ErrAlreadyAssigned = errors.New("employee already assigned to team")

	// ErrInvalidCredentials is returned on login failure. It deliberately
	// does not distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrValidation marks malformed or missing input caught before any
	// persistence call.
	ErrValidation = errors.New("validation failed")
)
