package desk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/colonyops/taskdesk/internal/core/eventbus"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

// TaskService runs lifecycle operations against freshly loaded task and
// actor records. Every write goes through task.Store.Mutate, so the engine
// checks made here are the authoritative ones.
type TaskService struct {
	tasks  task.Store
	users  user.Store
	engine *task.Engine
	bus    *eventbus.EventBus
	log    zerolog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks task.Store, users user.Store, engine *task.Engine, bus *eventbus.EventBus, log zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		users:  users,
		engine: engine,
		bus:    bus,
		log:    log.With().Str("component", "task-service").Logger(),
	}
}

// CreateInput holds the fields of a new task. The assignee is referenced by
// user ID.
type CreateInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	AssigneeID  string    `json:"assignedTo"`
	StartDate   time.Time `json:"startDate"`
	DueDate     time.Time `json:"dueDate"`
}

// Create validates and stores a new task on behalf of actorID.
func (s *TaskService) Create(ctx context.Context, actorID string, in CreateInput) (task.Task, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return task.Task{}, err
	}
	return s.create(ctx, actor, in)
}

func (s *TaskService) create(ctx context.Context, actor user.User, in CreateInput) (task.Task, error) {
	if actor.Role != user.RoleDirector {
		return task.Task{}, fmt.Errorf("%w: only directors can create tasks", task.ErrForbidden)
	}

	var assignee user.User
	if in.AssigneeID != "" {
		u, err := s.users.Get(ctx, in.AssigneeID)
		switch {
		case errors.Is(err, user.ErrNotFound):
			return task.Task{}, fmt.Errorf("%w: %w", task.ErrValidation,
				criterio.NewFieldErrors("assignedTo", fmt.Errorf("unknown user %s", in.AssigneeID)))
		case err != nil:
			return task.Task{}, fmt.Errorf("load assignee: %w", err)
		}
		assignee = u
	}

	priority := task.Priority(strings.ToUpper(strings.TrimSpace(in.Priority)))

	t, err := s.engine.Create(actor.Ref(), task.Draft{
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		AssignedTo:  assignee,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return task.Task{}, err
	}

	if err := s.tasks.Create(ctx, &t); err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.log.Info().Str("task_id", t.ID).Str("assignee", assignee.ID).Msg("task created")
	s.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: t})
	return t, nil
}

// ImportItem is one task in a bulk import file. The assignee may be given
// by ID or by email.
type ImportItem struct {
	CreateInput
	AssigneeEmail string `json:"assigneeEmail"`
}

// Import creates tasks in order, stopping at the first failure. Tasks
// created before the failure are kept and returned.
func (s *TaskService) Import(ctx context.Context, actorID string, items []ImportItem) ([]task.Task, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}

	created := make([]task.Task, 0, len(items))
	for i, item := range items {
		in := item.CreateInput
		if in.AssigneeID == "" && item.AssigneeEmail != "" {
			u, err := s.users.GetByEmail(ctx, item.AssigneeEmail)
			if err != nil {
				if errors.Is(err, user.ErrNotFound) {
					return created, fmt.Errorf("item %d: %w: %w", i, task.ErrValidation,
						criterio.NewFieldErrors("assigneeEmail", fmt.Errorf("unknown user %s", item.AssigneeEmail)))
				}
				return created, fmt.Errorf("item %d: %w", i, err)
			}
			in.AssigneeID = u.ID
		}

		t, err := s.create(ctx, actor, in)
		if err != nil {
			return created, fmt.Errorf("item %d: %w", i, err)
		}
		created = append(created, t)
	}
	return created, nil
}

// Get returns a task by ID.
func (s *TaskService) Get(ctx context.Context, id string) (task.Task, error) {
	return s.tasks.Get(ctx, id)
}

// List returns tasks matching filter.
func (s *TaskService) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	return s.tasks.List(ctx, filter)
}

// SubmitUpdate records a progress update by the assignee.
func (s *TaskService) SubmitUpdate(ctx context.Context, actorID, taskID string, status task.Status, remarks string) (task.Task, task.Update, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return task.Task{}, task.Update{}, err
	}

	var u task.Update
	t, err := s.tasks.Mutate(ctx, taskID, func(t *task.Task) error {
		var err error
		u, err = s.engine.SubmitUpdate(t, actor.Ref(), status, remarks)
		return err
	})
	if err != nil {
		return task.Task{}, task.Update{}, err
	}

	s.log.Info().
		Str("task_id", t.ID).
		Str("from", string(u.PreviousStatus)).
		Str("to", string(u.Status)).
		Msg("task updated")
	s.bus.PublishTaskUpdated(eventbus.TaskUpdatedPayload{Task: t, Update: u})
	return t, u, nil
}

// Approve grants an approval stage. changed is false when the stage was
// already granted.
func (s *TaskService) Approve(ctx context.Context, actorID, taskID string, stage task.Stage) (t task.Task, changed bool, err error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return task.Task{}, false, err
	}

	t, err = s.tasks.Mutate(ctx, taskID, func(t *task.Task) error {
		var err error
		changed, err = s.engine.Approve(t, actor.Ref(), stage)
		return err
	})
	if err != nil {
		return task.Task{}, false, err
	}

	if changed {
		s.log.Info().Str("task_id", t.ID).Str("stage", string(stage)).Msg("task approved")
		s.bus.PublishTaskApproved(eventbus.TaskApprovedPayload{Task: t, Stage: stage, Actor: actor.Ref()})
	}
	return t, changed, nil
}

// Reopen clears the approvals of a task and moves it back to IN_PROGRESS.
func (s *TaskService) Reopen(ctx context.Context, actorID, taskID, reason string) (task.Task, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return task.Task{}, err
	}

	var u task.Update
	t, err := s.tasks.Mutate(ctx, taskID, func(t *task.Task) error {
		var err error
		u, err = s.engine.Reopen(t, actor.Ref(), reason)
		return err
	})
	if err != nil {
		return task.Task{}, err
	}

	s.log.Info().Str("task_id", t.ID).Msg("task reopened")
	s.bus.PublishTaskReopened(eventbus.TaskReopenedPayload{Task: t, Update: u})
	return t, nil
}

// Reply adds a threaded reply to an update.
func (s *TaskService) Reply(ctx context.Context, actorID, taskID, updateID, message string) (task.Task, task.Reply, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return task.Task{}, task.Reply{}, err
	}

	var r task.Reply
	t, err := s.tasks.Mutate(ctx, taskID, func(t *task.Task) error {
		var err error
		r, err = s.engine.Reply(t, updateID, actor.Ref(), message)
		return err
	})
	if err != nil {
		return task.Task{}, task.Reply{}, err
	}

	s.bus.PublishReplyAdded(eventbus.ReplyAddedPayload{Task: t, UpdateID: updateID, Reply: r})
	return t, r, nil
}

// Delete hard-deletes a task. Directors only.
func (s *TaskService) Delete(ctx context.Context, actorID, taskID string) error {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return err
	}
	if actor.Role != user.RoleDirector {
		return fmt.Errorf("%w: only directors can delete tasks", task.ErrForbidden)
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	s.log.Info().Str("task_id", taskID).Msg("task deleted")
	s.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: taskID})
	return nil
}
