package database

import (
	"context"
	"fmt"
	"log/slog"
)

// schema holds the full DDL, ordered so foreign keys resolve. Organizations
// own everything transitively: deleting one cascades through employees,
// teams, memberships and audit rows.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id SERIAL PRIMARY KEY,
		organization_id INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(20),
		position VARCHAR(100),
		department VARCHAR(100),
		hire_date DATE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(organization_id, email)
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id SERIAL PRIMARY KEY,
		organization_id INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(organization_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS employee_teams (
		id SERIAL PRIMARY KEY,
		employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		assigned_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(employee_id, team_id)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id SERIAL PRIMARY KEY,
		organization_id INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		user_id INTEGER REFERENCES organizations(id),
		action VARCHAR(100) NOT NULL,
		entity_type VARCHAR(50),
		entity_id INTEGER,
		details TEXT,
		ip_address VARCHAR(45),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_org ON employees(organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_teams_org ON teams(organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_employee_teams_employee ON employee_teams(employee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_employee_teams_team ON employee_teams(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_org ON audit_logs(organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at)`,
}

// Migrate creates the schema inside a single transaction on one
// connection. It runs once at startup before the server accepts traffic;
// a failure rolls everything back and aborts the boot.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	conn, err := cp.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire migration connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration statement failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	cp.logger.Info("database schema ready", slog.Int("statements", len(schema)))
	return nil
}
