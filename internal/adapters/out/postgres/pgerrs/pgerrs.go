// Package pgerrs classifies PostgreSQL driver errors into the engine's error
// taxonomy.
package pgerrs

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"grabbit/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the adapters act on.
const (
	UniqueViolation   = "23505"
	LockNotAvailable  = "55P03"
	QueryCanceled     = "57014"
	DeadlockDetected  = "40P01"
	connectionClassID = "08"
)

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolation
}

// IsUnavailable reports whether err means the store could not serve the
// request in time: lock and statement timeouts, deadlocks, connection
// failures and expired contexts.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case LockNotAvailable, QueryCanceled, DeadlockDetected:
			return true
		}
		return strings.HasPrefix(pgErr.Code, connectionClassID)
	}
	return false
}

// Classify wraps err with the operation name. Unavailability becomes
// errs.StorageUnavailableError; other errors keep their chain.
func Classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if IsUnavailable(err) {
		return errs.NewStorageUnavailableErrorWithCause(operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}
