package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/taskdesk/internal/core/user"
	"github.com/colonyops/taskdesk/internal/core/validate"
)

// Engine applies lifecycle transitions to task values.
//
// Engine checks are advisory. Role and department data held by a caller may
// be stale, so the API server runs the same checks again against freshly
// loaded records inside a store transaction, and that run is the one that
// counts. Engine holds no locks; callers serialise access to a Task.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the ID source for updates, replies and tasks.
func WithIDGenerator(fn func() string) EngineOption {
	return func(e *Engine) { e.newID = fn }
}

// NewEngine creates an Engine using the wall clock and random UUIDs.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Draft holds the director-supplied fields of a new task.
type Draft struct {
	Title       string
	Description string
	Priority    Priority
	AssignedTo  user.User
	StartDate   time.Time
	DueDate     time.Time
}

// Create builds a new PENDING task. Only directors may create tasks, and
// only for active HODs or employees. The department is taken from the
// assignee.
func (e *Engine) Create(actor user.Ref, d Draft) (Task, error) {
	if actor.Role != user.RoleDirector {
		return Task{}, forbidden("only directors can create tasks")
	}

	if d.Priority == "" {
		d.Priority = PriorityMedium
	}

	err := criterio.ValidateStruct(
		criterio.Run("title", d.Title, validate.Required),
		criterio.Run("priority", d.Priority, validPriority),
		criterio.Run("assignedTo", d.AssignedTo, assignable),
		criterio.Run("dueDate", d, dueAfterStart),
	)
	if err != nil {
		return Task{}, validation(err)
	}

	now := e.now()
	start := d.StartDate
	if start.IsZero() {
		start = now
	}

	return Task{
		ID:          e.newID(),
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Status:      StatusPending,
		Priority:    d.Priority,
		Department:  d.AssignedTo.Department,
		AssignedTo:  d.AssignedTo.Ref(),
		AssignedBy:  actor,
		StartDate:   start,
		DueDate:     d.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		Updates:     []Update{},
	}, nil
}

// CanSubmitUpdate reports, as an ErrForbidden error, why actor may not post
// a progress update on t. Returns nil when allowed.
func (e *Engine) CanSubmitUpdate(t Task, actor user.Ref) error {
	switch actor.Role {
	case user.RoleEmployee, user.RoleHOD:
	default:
		return forbidden("only the assignee can submit updates")
	}
	if actor.ID == "" || actor.ID != t.AssignedTo.ID {
		return forbidden("only the assignee can submit updates")
	}
	if actor.Department != t.Department {
		return forbidden("assignee is not in the task's department")
	}
	if t.DirectorApproved {
		return forbidden("task is director approved and read-only until reopened")
	}
	return nil
}

// SubmitUpdate records a progress update by the assignee and moves the task
// to status. On any error t is left unmodified.
func (e *Engine) SubmitUpdate(t *Task, actor user.Ref, status Status, remarks string) (Update, error) {
	if err := e.CanSubmitUpdate(*t, actor); err != nil {
		return Update{}, err
	}

	err := criterio.ValidateStruct(
		criterio.Run("status", status, validStatus),
		criterio.Run("remarks", remarks, validate.Required),
	)
	if err != nil {
		return Update{}, validation(err)
	}

	if !CanTransition(t.Status, status) {
		return Update{}, invalidState("cannot move task from %s to %s", t.Status, status)
	}

	now := e.stamp(t)
	u := Update{
		ID:             e.newID(),
		Status:         status,
		PreviousStatus: t.Status,
		Remarks:        strings.TrimSpace(remarks),
		UpdatedBy:      actor,
		CreatedAt:      now,
		Replies:        []Reply{},
	}

	t.Updates = append(t.Updates, u)
	t.Status = status
	t.UpdatedAt = now
	if status == StatusCompleted {
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}

	return u, nil
}

// Approve grants one approval stage. It reports whether the task changed:
// repeating an approval that is already granted is a no-op and appends
// nothing.
func (e *Engine) Approve(t *Task, actor user.Ref, stage Stage) (bool, error) {
	if err := criterio.Run("stage", stage, validStage); err != nil {
		return false, validation(err)
	}

	switch stage {
	case StageHOD:
		if actor.Role != user.RoleHOD {
			return false, forbidden("HOD approval requires a head of department")
		}
		if actor.Department != t.Department {
			return false, forbidden("HOD approval requires the task's own department head")
		}
		if t.HODApproved {
			return false, nil
		}
		if !t.RequiresHODApproval() {
			return false, invalidState("task assigned to a head of department has no HOD approval stage")
		}
		if t.Status != StatusCompleted {
			return false, invalidState("HOD approval requires a completed task, status is %s", t.Status)
		}
		t.HODApproved = true

	case StageDirector:
		if actor.Role != user.RoleDirector {
			return false, forbidden("director approval requires a director")
		}
		if t.DirectorApproved {
			return false, nil
		}
		if t.RequiresHODApproval() && !t.HODApproved {
			return false, invalidState("director approval requires HOD approval first")
		}
		if t.Status != StatusCompleted {
			return false, invalidState("director approval requires a completed task, status is %s", t.Status)
		}
		t.DirectorApproved = true
	}

	now := e.stamp(t)
	t.Updates = append(t.Updates, Update{
		ID:             e.newID(),
		Status:         t.Status,
		PreviousStatus: t.Status,
		Remarks:        fmt.Sprintf("Approved by %s (%s)", displayName(actor), stage),
		UpdatedBy:      actor,
		CreatedAt:      now,
		Replies:        []Reply{},
	})
	t.UpdatedAt = now

	return true, nil
}

// Reopen lifts an approval: both flags are cleared and the task returns to
// IN_PROGRESS. History is kept; a synthetic update records the reopen.
func (e *Engine) Reopen(t *Task, actor user.Ref, reason string) (Update, error) {
	switch actor.Role {
	case user.RoleDirector:
	case user.RoleHOD:
		if actor.Department != t.Department {
			return Update{}, forbidden("only the task's own department head can reopen it")
		}
	default:
		return Update{}, forbidden("only a head of department or director can reopen tasks")
	}

	if !t.HODApproved && !t.DirectorApproved {
		return Update{}, invalidState("only approved tasks can be reopened")
	}

	remarks := strings.TrimSpace(reason)
	if remarks == "" {
		remarks = "Reopened by " + displayName(actor)
	}

	now := e.stamp(t)
	u := Update{
		ID:             e.newID(),
		Status:         StatusInProgress,
		PreviousStatus: t.Status,
		Remarks:        remarks,
		UpdatedBy:      actor,
		CreatedAt:      now,
		Replies:        []Reply{},
	}

	t.Updates = append(t.Updates, u)
	t.Status = StatusInProgress
	t.CompletedAt = nil
	t.HODApproved = false
	t.DirectorApproved = false
	t.UpdatedAt = now

	return u, nil
}

// Reply appends a threaded reply to one of t's updates.
func (e *Engine) Reply(t *Task, updateID string, actor user.Ref, message string) (Reply, error) {
	if actor.Role != user.RoleEmployee && actor.Role != user.RoleDirector {
		return Reply{}, forbidden("only employees and directors can reply to updates")
	}
	if err := criterio.Run("message", message, validate.Required); err != nil {
		return Reply{}, validation(err)
	}

	u, ok := t.FindUpdate(updateID)
	if !ok {
		return Reply{}, fmt.Errorf("update %s: %w", updateID, ErrNotFound)
	}

	now := e.now()
	r := Reply{
		ID:        e.newID(),
		Message:   strings.TrimSpace(message),
		RepliedBy: actor,
		CreatedAt: now,
	}
	u.Replies = append(u.Replies, r)
	t.UpdatedAt = now

	return r, nil
}

// CheckInvariants verifies the structural rules every task must satisfy.
func CheckInvariants(t Task) error {
	if (t.CompletedAt != nil) != (t.Status == StatusCompleted) {
		return invalidState("completedAt must be set exactly when status is COMPLETED (status %s)", t.Status)
	}
	if t.DirectorApproved && t.RequiresHODApproval() && !t.HODApproved {
		return invalidState("director approval without HOD approval")
	}
	for i := 1; i < len(t.Updates); i++ {
		if t.Updates[i].CreatedAt.Before(t.Updates[i-1].CreatedAt) {
			return invalidState("update %s predates the update before it", t.Updates[i].ID)
		}
	}
	return nil
}

// stamp returns the timestamp for a new update, never earlier than the last
// update so the sequence stays non-decreasing.
func (e *Engine) stamp(t *Task) time.Time {
	now := e.now()
	if n := len(t.Updates); n > 0 && now.Before(t.Updates[n-1].CreatedAt) {
		return t.Updates[n-1].CreatedAt
	}
	return now
}

func displayName(r user.Ref) string {
	if r.Name != "" {
		return r.Name
	}
	return string(r.Role)
}

func validStatus(s Status) error {
	if !s.IsValid() {
		return fmt.Errorf("unknown status %q", s)
	}
	return nil
}

func validPriority(p Priority) error {
	if !p.IsValid() {
		return fmt.Errorf("unknown priority %q", p)
	}
	return nil
}

func validStage(st Stage) error {
	if !st.IsValid() {
		return fmt.Errorf("unknown approval stage %q", st)
	}
	return nil
}

func assignable(u user.User) error {
	if u.ID == "" {
		return validate.ErrRequired
	}
	if u.Role != user.RoleHOD && u.Role != user.RoleEmployee {
		return fmt.Errorf("tasks can only be assigned to a head of department or employee")
	}
	if !u.IsActive {
		return fmt.Errorf("user %s is blocked", u.Name)
	}
	return nil
}

func dueAfterStart(d Draft) error {
	if !d.DueDate.IsZero() && !d.StartDate.IsZero() && d.DueDate.Before(d.StartDate) {
		return fmt.Errorf("must not be before the start date")
	}
	return nil
}
