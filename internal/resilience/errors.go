package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Postgres SQLSTATE codes for conflicts that succeed when the transaction
// is run again.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// ConflictError marks an error as a lost race that is safe to retry.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string {
	return e.Err.Error()
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NewConflictError wraps err as retryable.
func NewConflictError(err error) *ConflictError {
	return &ConflictError{Err: err}
}

// IsTransient reports whether err (or anything it wraps) is a lock
// conflict or a dropped connection, after which the whole transaction can
// be replayed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ConflictError
	if errors.As(err, &ce) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
		return false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// Extended codes carry the primary code in the low byte.
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Drivers do not always keep the typed error once it crosses
	// database/sql or eris wrapping.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"database is locked",
		"database table is locked",
		"could not serialize access",
		"deadlock detected",
		"connection reset by peer",
		"broken pipe",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
