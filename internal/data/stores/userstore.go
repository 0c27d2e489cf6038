package stores

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/taskdesk/internal/core/user"
	"github.com/colonyops/taskdesk/internal/data/db"
)

// UserStore implements user.Store using SQLite.
type UserStore struct {
	db *db.DB
}

var _ user.Store = (*UserStore)(nil)

// NewUserStore creates a new SQLite-backed user store.
func NewUserStore(db *db.DB) *UserStore {
	return &UserStore{db: db}
}

// Create persists a new user, generating an ID and timestamps when unset.
// Returns ErrDuplicateEmail if the email is taken.
func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	u.Email = strings.TrimSpace(u.Email)

	err := s.db.Queries().CreateUser(ctx, db.CreateUserParams{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		Department: u.Department,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt.UnixNano(),
		UpdatedAt:  u.UpdatedAt.UnixNano(),
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return user.ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// Get returns a user by ID.
func (s *UserStore) Get(ctx context.Context, id string) (user.User, error) {
	row, err := s.db.Queries().GetUser(ctx, id)
	if err != nil {
		if IsNotFoundError(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return rowToUser(row), nil
}

// GetByEmail returns a user by case-insensitive email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	row, err := s.db.Queries().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if IsNotFoundError(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return rowToUser(row), nil
}

// List returns all users ordered by name.
func (s *UserStore) List(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.Queries().ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, rowToUser(row))
	}
	return users, nil
}

// Save updates an existing user.
func (s *UserStore) Save(ctx context.Context, u user.User) error {
	n, err := s.db.Queries().UpdateUser(ctx, db.UpdateUserParams{
		Name:       u.Name,
		Email:      strings.TrimSpace(u.Email),
		Role:       string(u.Role),
		Department: u.Department,
		IsActive:   u.IsActive,
		UpdatedAt:  u.UpdatedAt.UnixNano(),
		ID:         u.ID,
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return user.ErrDuplicateEmail
		}
		return fmt.Errorf("save user: %w", err)
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func rowToUser(row db.User) user.User {
	return user.User{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Role:       user.Role(row.Role),
		Department: row.Department,
		IsActive:   row.IsActive,
		CreatedAt:  fromUnix(row.CreatedAt),
		UpdatedAt:  fromUnix(row.UpdatedAt),
	}
}
