package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

// classify wraps a driver error with the Inventory error kind it represents.
// op describes what was being attempted.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrNotFound) ||
		errors.Is(err, types.ErrReferentialIntegrity) ||
		errors.Is(err, types.ErrInvalidInput) ||
		errors.Is(err, types.ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, kindOf(err), err)
}

func kindOf(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.ErrStorageFailure
	}

	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return types.ErrReferentialIntegrity
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK,
			sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return types.ErrInvalidInput
		}
	}

	// Extended codes are not always surfaced; fall back to the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return types.ErrReferentialIntegrity
	case strings.Contains(msg, "NOT NULL constraint failed"),
		strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "UNIQUE constraint failed"):
		return types.ErrInvalidInput
	}
	return types.ErrStorageFailure
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrNotFound, fmt.Sprintf(format, args...))
}
