package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBusy marks a write that lost a lock race with another process holding
// the same database file.
var ErrBusy = errors.New("store busy")

// isLockConflict reports SQLITE_BUSY and "database is locked" failures.
// The driver does not expose typed codes through database/sql.
func isLockConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// sqliteErr wraps err with op, tagging lock conflicts with ErrBusy.
func sqliteErr(op string, err error) error {
	if isLockConflict(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrBusy, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
