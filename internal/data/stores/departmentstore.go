package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/data/db"
)

// DepartmentStore implements department.Store using SQLite.
type DepartmentStore struct {
	db *db.DB
}

var _ department.Store = (*DepartmentStore)(nil)

// NewDepartmentStore creates a new SQLite-backed department store.
func NewDepartmentStore(db *db.DB) *DepartmentStore {
	return &DepartmentStore{db: db}
}

// Create persists a new department, generating an ID and timestamps when
// unset. Returns ErrDuplicateName if the name is taken.
func (s *DepartmentStore) Create(ctx context.Context, d *department.Department) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}

	err := s.db.Queries().CreateDepartment(ctx, db.CreateDepartmentParams{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		Description: toNullString(d.Description),
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt.UnixNano(),
		UpdatedAt:   d.UpdatedAt.UnixNano(),
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return department.ErrDuplicateName
		}
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// Get returns a department by ID.
func (s *DepartmentStore) Get(ctx context.Context, id string) (department.Department, error) {
	row, err := s.db.Queries().GetDepartment(ctx, id)
	if err != nil {
		if IsNotFoundError(err) {
			return department.Department{}, department.ErrNotFound
		}
		return department.Department{}, fmt.Errorf("get department: %w", err)
	}
	return rowToDepartment(row), nil
}

// GetByName returns a department by its case-insensitive name.
func (s *DepartmentStore) GetByName(ctx context.Context, name string) (department.Department, error) {
	row, err := s.db.Queries().GetDepartmentByName(ctx, name)
	if err != nil {
		if IsNotFoundError(err) {
			return department.Department{}, department.ErrNotFound
		}
		return department.Department{}, fmt.Errorf("get department by name: %w", err)
	}
	return rowToDepartment(row), nil
}

// List returns all departments ordered by name.
func (s *DepartmentStore) List(ctx context.Context) ([]department.Department, error) {
	rows, err := s.db.Queries().ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}

	out := make([]department.Department, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToDepartment(row))
	}
	return out, nil
}

// Save updates an existing department.
func (s *DepartmentStore) Save(ctx context.Context, d department.Department) error {
	n, err := s.db.Queries().UpdateDepartment(ctx, db.UpdateDepartmentParams{
		Name:        d.Name,
		Code:        d.Code,
		Description: toNullString(d.Description),
		IsActive:    d.IsActive,
		UpdatedAt:   d.UpdatedAt.UnixNano(),
		ID:          d.ID,
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return department.ErrDuplicateName
		}
		return fmt.Errorf("save department: %w", err)
	}
	if n == 0 {
		return department.ErrNotFound
	}
	return nil
}

func rowToDepartment(row db.Department) department.Department {
	return department.Department{
		ID:          row.ID,
		Name:        row.Name,
		Code:        row.Code,
		Description: fromNullString(row.Description),
		IsActive:    row.IsActive,
		CreatedAt:   fromUnix(row.CreatedAt),
		UpdatedAt:   fromUnix(row.UpdatedAt),
	}
}
