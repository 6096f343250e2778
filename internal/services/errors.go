package services

import (
	"errors"
	"strings"
)

// Sentinel errors classify service failures for the HTTP layer. Wrap them
// with %w and context; handlers map each class to a status code.
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrValidation      = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrStateConflict   = errors.New("state conflict")
	ErrSessionExpired  = errors.New("session expired")
	ErrTransient       = errors.New("transient storage failure")
)

// isTransientDBError reports whether a storage error is worth retrying.
// Covers sqlite lock contention and Postgres serialization/deadlock failures.
func isTransientDBError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"database is locked",
		"database table is locked",
		"busy",
		"deadlock",
		"serialization",
		"could not serialize",
		"timeout",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
