// Package department defines the department domain model.
package department

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a department does not exist.
	ErrNotFound = errors.New("department not found")
	// ErrDuplicateName is returned when a department name is already taken.
	ErrDuplicateName = errors.New("department name already in use")
)

// Department groups users and tasks. Name is unique and is what tasks and
// users reference.
type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Store defines the interface for department persistence.
type Store interface {
	Create(ctx context.Context, d *Department) error
	Get(ctx context.Context, id string) (Department, error)
	GetByName(ctx context.Context, name string) (Department, error)
	List(ctx context.Context) ([]Department, error)
	Save(ctx context.Context, d Department) error
}
