package engine

import (
	"errors"
	"fmt"
)

// ErrNoCopiesAvailable rejects a borrow when every copy is already out.
var ErrNoCopiesAvailable = errors.New("no copies available")

// ValidationError reports caller input that violates a field constraint.
// Nothing is mutated when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing book or loan. Nothing is mutated.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// PersistenceError reports a failed durable commit. The in-memory state was
// rolled back, so the operation did not take effect.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("commit snapshot: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
