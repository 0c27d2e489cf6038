package task

import (
	"context"
	"time"
)

// ListFilter controls which tasks List returns. Zero values mean no filter.
type ListFilter struct {
	StartDate  *time.Time // created at or after
	EndDate    *time.Time // created at or before
	Department string     // exact name or doublestar glob, e.g. "eng*"
	Search     string     // case-insensitive substring of title or description
	AssignedTo string     // user ID
}

// Store defines the interface for task persistence.
type Store interface {
	// Create persists a new task together with any updates it already has.
	Create(ctx context.Context, t *Task) error

	// Get returns a task with its updates and replies.
	// Returns ErrNotFound if the task does not exist.
	Get(ctx context.Context, id string) (Task, error)

	// List returns tasks matching the filter, ordered by created_at DESC.
	List(ctx context.Context, filter ListFilter) ([]Task, error)

	// Mutate loads a task, applies fn, and persists the result in a single
	// transaction. New updates and replies are appended; existing ones are
	// never rewritten. If fn returns an error nothing is written.
	Mutate(ctx context.Context, id string, fn func(*Task) error) (Task, error)

	// Delete removes a task and its history.
	// Returns ErrNotFound if the task does not exist.
	Delete(ctx context.Context, id string) error
}
