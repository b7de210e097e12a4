package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates an insert violated a uniqueness constraint.
	ErrConflict = errors.New("repository: conflict")
)

// ConflictError reports which unique field caused an insert to be rejected.
// It unwraps to ErrConflict so callers can match with errors.Is.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("repository: %s already taken", e.Field)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
