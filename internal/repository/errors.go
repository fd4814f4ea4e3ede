package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"github.com/yourorg/hrms/internal/domain"
)

// classifyError maps driver errors onto the domain sentinels using the
// SQLSTATE codes postgres reports. Classification never inspects message
// text; the constraint name is carried along for development diagnostics.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, pqErr.Constraint)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrForeignKey, pqErr.Constraint)
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("transaction conflict (retryable): %w", err)
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		return fmt.Errorf("database connection error: %w", err)
	default:
		return fmt.Errorf("postgres error [%s]: %s: %w", pqErr.Code, pqErr.Message, err)
	}
}
