// Package user defines the user domain model and the roles that gate task
// lifecycle operations.
package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when another user already owns the email.
	ErrDuplicateEmail = errors.New("email already in use")
)

// Role is the organisational role of a user.
type Role string

const (
	RoleDirector Role = "DIRECTOR"
	RoleHOD      Role = "HOD"
	RoleEmployee Role = "EMPLOYEE"
)

// Roles lists every role in rank order, highest first.
var Roles = []Role{RoleDirector, RoleHOD, RoleEmployee}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleDirector, RoleHOD, RoleEmployee:
		return true
	default:
		return false
	}
}

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// User is a member of the organisation.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Department string    `json:"department"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Ref returns the denormalized reference stored on tasks.
func (u User) Ref() Ref {
	return Ref{ID: u.ID, Name: u.Name, Role: u.Role, Department: u.Department}
}

// Ref is a denormalized pointer to a user, carrying the fields lifecycle
// rules need without another lookup.
type Ref struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool { return r.ID == "" }

// Store defines the interface for user persistence.
type Store interface {
	// Create persists a new user. Returns ErrDuplicateEmail on email collision.
	Create(ctx context.Context, u *User) error

	// Get returns a user by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (User, error)

	// GetByEmail looks a user up by case-insensitive email.
	GetByEmail(ctx context.Context, email string) (User, error)

	// List returns all users, ordered by name.
	List(ctx context.Context) ([]User, error)

	// Save updates an existing user. Returns ErrNotFound if missing.
	Save(ctx context.Context, u User) error
}
