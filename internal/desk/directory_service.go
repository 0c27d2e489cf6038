package desk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/eventbus"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
	"github.com/colonyops/taskdesk/internal/core/validate"
)

// DirectoryService manages users and departments. Writes are restricted to
// directors; "deleting" a record blocks it.
type DirectoryService struct {
	users user.Store
	depts department.Store
	bus   *eventbus.EventBus
	log   zerolog.Logger
	now   func() time.Time
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(users user.Store, depts department.Store, bus *eventbus.EventBus, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		users: users,
		depts: depts,
		bus:   bus,
		log:   log.With().Str("component", "directory-service").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// UserInput holds the editable fields of a user.
type UserInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// DepartmentInput holds the editable fields of a department.
type DepartmentInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Actor returns the active user behind id.
func (s *DirectoryService) Actor(ctx context.Context, id string) (user.User, error) {
	return loadActor(ctx, s.users, id)
}

// GetUser returns a user by ID.
func (s *DirectoryService) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.users.Get(ctx, id)
}

// FindUserByEmail returns a user by email.
func (s *DirectoryService) FindUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// ListUsers returns every user, blocked ones included.
func (s *DirectoryService) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.users.List(ctx)
}

// Bootstrap creates the first director. It fails once any user exists.
func (s *DirectoryService) Bootstrap(ctx context.Context, in UserInput) (user.User, error) {
	existing, err := s.users.List(ctx)
	if err != nil {
		return user.User{}, fmt.Errorf("list users: %w", err)
	}
	if len(existing) > 0 {
		return user.User{}, fmt.Errorf("%w: directory already has users", task.ErrInvalidState)
	}
	in.Role = string(user.RoleDirector)
	return s.createUser(ctx, in)
}

// CreateUser adds a new active user.
func (s *DirectoryService) CreateUser(ctx context.Context, actorID string, in UserInput) (user.User, error) {
	if err := s.requireDirector(ctx, actorID); err != nil {
		return user.User{}, err
	}
	return s.createUser(ctx, in)
}

func (s *DirectoryService) createUser(ctx context.Context, in UserInput) (user.User, error) {
	u, err := s.validateUser(ctx, in)
	if err != nil {
		return user.User{}, err
	}
	u.IsActive = true

	if err := s.users.Create(ctx, &u); err != nil {
		return user.User{}, s.userWriteError(err)
	}

	s.log.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("user created")
	s.bus.PublishUserSaved(eventbus.UserSavedPayload{User: u, Created: true})
	return u, nil
}

// UpdateUser replaces the editable fields of a user.
func (s *DirectoryService) UpdateUser(ctx context.Context, actorID, id string, in UserInput) (user.User, error) {
	if err := s.requireDirector(ctx, actorID); err != nil {
		return user.User{}, err
	}

	current, err := s.users.Get(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	u, err := s.validateUser(ctx, in)
	if err != nil {
		return user.User{}, err
	}
	u.ID = current.ID
	u.IsActive = current.IsActive
	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = s.now()

	if err := s.users.Save(ctx, u); err != nil {
		return user.User{}, s.userWriteError(err)
	}

	s.bus.PublishUserSaved(eventbus.UserSavedPayload{User: u})
	return u, nil
}

// BlockUser deactivates a user. Blocking a blocked user is a no-op.
func (s *DirectoryService) BlockUser(ctx context.Context, actorID, id string) (user.User, error) {
	if err := s.requireDirector(ctx, actorID); err != nil {
		return user.User{}, err
	}
	if actorID == id {
		return user.User{}, fmt.Errorf("%w: directors cannot block themselves", task.ErrInvalidState)
	}

	u, err := s.users.Get(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if !u.IsActive {
		return u, nil
	}

	u.IsActive = false
	u.UpdatedAt = s.now()
	if err := s.users.Save(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("block user: %w", err)
	}

	s.log.Info().Str("user_id", u.ID).Msg("user blocked")
	s.bus.PublishUserSaved(eventbus.UserSavedPayload{User: u})
	return u, nil
}

// ListDepartments returns every department.
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]department.Department, error) {
	return s.depts.List(ctx)
}

// GetDepartment returns a department by ID.
func (s *DirectoryService) GetDepartment(ctx context.Context, id string) (department.Department, error) {
	return s.depts.Get(ctx, id)
}

// CreateDepartment adds a new active department.
func (s *DirectoryService) CreateDepartment(ctx context.Context, actorID string, in DepartmentInput) (department.Department, error) {
	if err := s.requireDirector(ctx, actorID); err != nil {
		return department.Department{}, err
	}

	d, err := validateDepartment(in)
	if err != nil {
		return department.Department{}, err
	}
	d.IsActive = true

	if err := s.depts.Create(ctx, &d); err != nil {
		return department.Department{}, deptWriteError(err)
	}

	s.log.Info().Str("department_id", d.ID).Str("name", d.Name).Msg("department created")
	s.bus.PublishDepartmentSaved(eventbus.DepartmentSavedPayload{Department: d, Created: true})
	return d, nil
}

// UpdateDepartment replaces the editable fields of a department. Tasks and
// users keep the department name they were saved with.
func (s *DirectoryService) UpdateDepartment(ctx context.Context, actorID, id string, in DepartmentInput) (department.Department, error) {
	if err := s.requireDirector(ctx, actorID); err != nil {
		return department.Department{}, err
	}

	current, err := s.depts.Get(ctx, id)
	if err != nil {
		return department.Department{}, err
	}

	d, err := validateDepartment(in)
	if err != nil {
		return department.Department{}, err
	}
	d.ID = current.ID
	d.IsActive = current.IsActive
	d.CreatedAt = current.CreatedAt
	d.UpdatedAt = s.now()

	if err := s.depts.Save(ctx, d); err != nil {
		return department.Department{}, deptWriteError(err)
	}

	s.bus.PublishDepartmentSaved(eventbus.DepartmentSavedPayload{Department: d})
	return d, nil
}

// BlockDepartment deactivates a department. Blocking twice is a no-op.
func (s *DirectoryService) BlockDepartment(ctx context.Context, actorID, id string) (department.Department, error) {
	if err := s.requireDirector(ctx, actorID); err != nil {
		return department.Department{}, err
	}

	d, err := s.depts.Get(ctx, id)
	if err != nil {
		return department.Department{}, err
	}
	if !d.IsActive {
		return d, nil
	}

	d.IsActive = false
	d.UpdatedAt = s.now()
	if err := s.depts.Save(ctx, d); err != nil {
		return department.Department{}, fmt.Errorf("block department: %w", err)
	}

	s.log.Info().Str("department_id", d.ID).Msg("department blocked")
	s.bus.PublishDepartmentSaved(eventbus.DepartmentSavedPayload{Department: d})
	return d, nil
}

func (s *DirectoryService) requireDirector(ctx context.Context, actorID string) error {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return err
	}
	return requireDirector(actor)
}

// validateUser checks in and resolves its department to the stored name.
func (s *DirectoryService) validateUser(ctx context.Context, in UserInput) (user.User, error) {
	role, _ := user.ParseRole(in.Role)
	u := user.User{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Role:  role,
	}

	var dept department.Department
	deptErr := func(name string) error {
		name = strings.TrimSpace(name)
		if name == "" {
			if role == user.RoleDirector {
				return nil
			}
			return errors.New("is required for heads of department and employees")
		}
		d, err := s.depts.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, department.ErrNotFound) {
				return fmt.Errorf("unknown department %q", name)
			}
			return err
		}
		if !d.IsActive {
			return fmt.Errorf("department %s is blocked", d.Name)
		}
		dept = d
		return nil
	}

	err := criterio.ValidateStruct(
		criterio.Run("name", u.Name, validate.Required),
		criterio.Run("email", u.Email, validate.Email),
		criterio.Run("role", in.Role, validRole),
		criterio.Run("department", in.Department, deptErr),
	)
	if err != nil {
		return user.User{}, fmt.Errorf("%w: %w", task.ErrValidation, err)
	}

	u.Department = dept.Name
	return u, nil
}

func validateDepartment(in DepartmentInput) (department.Department, error) {
	d := department.Department{
		Name:        strings.TrimSpace(in.Name),
		Code:        strings.ToUpper(strings.TrimSpace(in.Code)),
		Description: strings.TrimSpace(in.Description),
	}
	err := criterio.ValidateStruct(
		criterio.Run("name", d.Name, validate.Required),
	)
	if err != nil {
		return department.Department{}, fmt.Errorf("%w: %w", task.ErrValidation, err)
	}
	return d, nil
}

func (s *DirectoryService) userWriteError(err error) error {
	if errors.Is(err, user.ErrDuplicateEmail) {
		return fmt.Errorf("%w: %w", task.ErrValidation, criterio.NewFieldErrors("email", err))
	}
	return err
}

func deptWriteError(err error) error {
	if errors.Is(err, department.ErrDuplicateName) {
		return fmt.Errorf("%w: %w", task.ErrValidation, criterio.NewFieldErrors("name", err))
	}
	return err
}

func validRole(s string) error {
	if _, ok := user.ParseRole(s); !ok {
		return fmt.Errorf("unknown role %q", s)
	}
	return nil
}
