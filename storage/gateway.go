// Package storage persists the inventory snapshot. A gateway only loads and
// commits whole snapshots; it never applies business rules.
package storage

import (
	"context"
	"fmt"

	"Gin_postgres_redis_library_tool/models"
)

// Gateway is the durable-persistence contract the engine commits through.
type Gateway interface {
	// Load returns the last committed snapshot, or an empty one when no
	// prior state exists. Malformed state yields a *CorruptStateError.
	Load(ctx context.Context) (models.Snapshot, error)

	// Commit durably replaces the previous snapshot with snap. From the
	// caller's perspective the replacement is atomic: a crash mid-commit
	// must never leave partially-written state observable.
	Commit(ctx context.Context, snap models.Snapshot) error
}

// CorruptStateError means the persisted snapshot exists but failed to parse.
// Callers should refuse to start rather than mask potential data loss.
type CorruptStateError struct {
	Source string
	Err    error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt snapshot in %s: %v", e.Source, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }
