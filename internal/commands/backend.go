package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/taskdesk/internal/client"
	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/daterange"
	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
	"github.com/colonyops/taskdesk/internal/desk"
)

// ErrNoActor is returned by local commands that need --as but did not get it.
var ErrNoActor = errors.New("no acting user: pass --as <user id or email> or set TASKDESK_AS")

// Backend is the set of operations commands drive. It is served either by
// the local services or by a remote API server.
type Backend interface {
	Me(ctx context.Context) (user.User, error)

	ListTasks(ctx context.Context, filter task.ListFilter) ([]task.Task, error)
	GetTask(ctx context.Context, id string) (task.Task, error)
	CreateTask(ctx context.Context, in desk.CreateInput) (task.Task, error)
	ImportTasks(ctx context.Context, items []desk.ImportItem) ([]task.Task, error)
	DeleteTask(ctx context.Context, id string) error
	SubmitUpdate(ctx context.Context, id string, status task.Status, remarks string) (task.Task, task.Update, error)
	Approve(ctx context.Context, id string, stage task.Stage) (task.Task, bool, error)
	Reopen(ctx context.Context, id, reason string) (task.Task, error)
	Reply(ctx context.Context, id, updateID, message string) (task.Task, task.Reply, error)

	ListUsers(ctx context.Context) ([]user.User, error)
	CreateUser(ctx context.Context, in desk.UserInput) (user.User, error)
	UpdateUser(ctx context.Context, id string, in desk.UserInput) (user.User, error)
	BlockUser(ctx context.Context, id string) (user.User, error)

	ListDepartments(ctx context.Context) ([]department.Department, error)
	CreateDepartment(ctx context.Context, in desk.DepartmentInput) (department.Department, error)
	UpdateDepartment(ctx context.Context, id string, in desk.DepartmentInput) (department.Department, error)
	BlockDepartment(ctx context.Context, id string) (department.Department, error)

	Activity(ctx context.Context, filter daterange.Filter, custom daterange.Custom) ([]activity.Entry, error)
}

// newBackend picks the remote API when client.base_url is configured and the
// local database otherwise.
func newBackend(flags *Flags, app *desk.App) (Backend, error) {
	cfg := flags.Config.Client
	if cfg.Remote() {
		c, err := client.New(cfg.BaseURL, cfg.Token, cfg.Timeout,
			client.WithLogger(log.With().Str("component", "client").Logger()))
		if err != nil {
			return nil, err
		}
		return &remoteBackend{c: c}, nil
	}
	return &localBackend{app: app, as: flags.As}, nil
}

type localBackend struct {
	app *desk.App
	as  string

	actorID string
}

// actor resolves --as once. Values containing '@' are looked up by email.
func (b *localBackend) actor(ctx context.Context) (string, error) {
	if b.actorID != "" {
		return b.actorID, nil
	}
	as := strings.TrimSpace(b.as)
	if as == "" {
		return "", ErrNoActor
	}
	if strings.Contains(as, "@") {
		u, err := b.app.Directory.FindUserByEmail(ctx, as)
		if err != nil {
			return "", fmt.Errorf("resolve --as %s: %w", as, err)
		}
		as = u.ID
	}
	b.actorID = as
	return as, nil
}

func (b *localBackend) Me(ctx context.Context) (user.User, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return user.User{}, err
	}
	return b.app.Directory.Actor(ctx, id)
}

func (b *localBackend) ListTasks(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	return b.app.Tasks.List(ctx, filter)
}

func (b *localBackend) GetTask(ctx context.Context, id string) (task.Task, error) {
	return b.app.Tasks.Get(ctx, id)
}

func (b *localBackend) CreateTask(ctx context.Context, in desk.CreateInput) (task.Task, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return task.Task{}, err
	}
	return b.app.Tasks.Create(ctx, id, in)
}

func (b *localBackend) ImportTasks(ctx context.Context, items []desk.ImportItem) ([]task.Task, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return nil, err
	}
	return b.app.Tasks.Import(ctx, id, items)
}

func (b *localBackend) DeleteTask(ctx context.Context, taskID string) error {
	id, err := b.actor(ctx)
	if err != nil {
		return err
	}
	return b.app.Tasks.Delete(ctx, id, taskID)
}

func (b *localBackend) SubmitUpdate(ctx context.Context, taskID string, status task.Status, remarks string) (task.Task, task.Update, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return task.Task{}, task.Update{}, err
	}
	return b.app.Tasks.SubmitUpdate(ctx, id, taskID, status, remarks)
}

func (b *localBackend) Approve(ctx context.Context, taskID string, stage task.Stage) (task.Task, bool, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return task.Task{}, false, err
	}
	return b.app.Tasks.Approve(ctx, id, taskID, stage)
}

func (b *localBackend) Reopen(ctx context.Context, taskID, reason string) (task.Task, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return task.Task{}, err
	}
	return b.app.Tasks.Reopen(ctx, id, taskID, reason)
}

func (b *localBackend) Reply(ctx context.Context, taskID, updateID, message string) (task.Task, task.Reply, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return task.Task{}, task.Reply{}, err
	}
	return b.app.Tasks.Reply(ctx, id, taskID, updateID, message)
}

func (b *localBackend) ListUsers(ctx context.Context) ([]user.User, error) {
	return b.app.Directory.ListUsers(ctx)
}

func (b *localBackend) CreateUser(ctx context.Context, in desk.UserInput) (user.User, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return user.User{}, err
	}
	return b.app.Directory.CreateUser(ctx, id, in)
}

func (b *localBackend) UpdateUser(ctx context.Context, userID string, in desk.UserInput) (user.User, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return user.User{}, err
	}
	return b.app.Directory.UpdateUser(ctx, id, userID, in)
}

func (b *localBackend) BlockUser(ctx context.Context, userID string) (user.User, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return user.User{}, err
	}
	return b.app.Directory.BlockUser(ctx, id, userID)
}

func (b *localBackend) ListDepartments(ctx context.Context) ([]department.Department, error) {
	return b.app.Directory.ListDepartments(ctx)
}

func (b *localBackend) CreateDepartment(ctx context.Context, in desk.DepartmentInput) (department.Department, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return department.Department{}, err
	}
	return b.app.Directory.CreateDepartment(ctx, id, in)
}

func (b *localBackend) UpdateDepartment(ctx context.Context, deptID string, in desk.DepartmentInput) (department.Department, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return department.Department{}, err
	}
	return b.app.Directory.UpdateDepartment(ctx, id, deptID, in)
}

func (b *localBackend) BlockDepartment(ctx context.Context, deptID string) (department.Department, error) {
	id, err := b.actor(ctx)
	if err != nil {
		return department.Department{}, err
	}
	return b.app.Directory.BlockDepartment(ctx, id, deptID)
}

func (b *localBackend) Activity(ctx context.Context, filter daterange.Filter, custom daterange.Custom) ([]activity.Entry, error) {
	me, err := b.Me(ctx)
	if err != nil {
		return nil, err
	}
	viewer := activity.Viewer{Role: me.Role, Department: me.Department}
	return b.app.Activity.Feed(ctx, viewer, filter, custom)
}

type remoteBackend struct {
	c *client.Client
}

func (b *remoteBackend) Me(ctx context.Context) (user.User, error) { return b.c.Me(ctx) }

func (b *remoteBackend) ListTasks(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	return b.c.ListTasks(ctx, filter)
}

func (b *remoteBackend) GetTask(ctx context.Context, id string) (task.Task, error) {
	return b.c.GetTask(ctx, id)
}

func (b *remoteBackend) CreateTask(ctx context.Context, in desk.CreateInput) (task.Task, error) {
	return b.c.CreateTask(ctx, in)
}

// ImportTasks mirrors TaskService.Import over the API: items run in order
// and the first failure stops the import.
func (b *remoteBackend) ImportTasks(ctx context.Context, items []desk.ImportItem) ([]task.Task, error) {
	var byEmail map[string]string

	created := make([]task.Task, 0, len(items))
	for i, item := range items {
		in := item.CreateInput
		if in.AssigneeID == "" && item.AssigneeEmail != "" {
			if byEmail == nil {
				users, err := b.c.ListUsers(ctx)
				if err != nil {
					return created, fmt.Errorf("list users: %w", err)
				}
				byEmail = make(map[string]string, len(users))
				for _, u := range users {
					byEmail[strings.ToLower(u.Email)] = u.ID
				}
			}
			id, ok := byEmail[strings.ToLower(strings.TrimSpace(item.AssigneeEmail))]
			if !ok {
				return created, fmt.Errorf("item %d: %w: unknown user %s", i, task.ErrValidation, item.AssigneeEmail)
			}
			in.AssigneeID = id
		}

		t, err := b.c.CreateTask(ctx, in)
		if err != nil {
			return created, fmt.Errorf("item %d: %w", i, err)
		}
		created = append(created, t)
	}
	return created, nil
}

func (b *remoteBackend) DeleteTask(ctx context.Context, id string) error {
	return b.c.DeleteTask(ctx, id)
}

func (b *remoteBackend) SubmitUpdate(ctx context.Context, id string, status task.Status, remarks string) (task.Task, task.Update, error) {
	resp, err := b.c.SubmitUpdate(ctx, id, status, remarks)
	return resp.Task, resp.Update, err
}

func (b *remoteBackend) Approve(ctx context.Context, id string, stage task.Stage) (task.Task, bool, error) {
	resp, err := b.c.Approve(ctx, id, stage)
	return resp.Task, resp.Changed, err
}

func (b *remoteBackend) Reopen(ctx context.Context, id, reason string) (task.Task, error) {
	return b.c.Reopen(ctx, id, reason)
}

func (b *remoteBackend) Reply(ctx context.Context, id, updateID, message string) (task.Task, task.Reply, error) {
	resp, err := b.c.Reply(ctx, id, updateID, message)
	return resp.Task, resp.Reply, err
}

func (b *remoteBackend) ListUsers(ctx context.Context) ([]user.User, error) {
	return b.c.ListUsers(ctx)
}

func (b *remoteBackend) CreateUser(ctx context.Context, in desk.UserInput) (user.User, error) {
	return b.c.CreateUser(ctx, in)
}

func (b *remoteBackend) UpdateUser(ctx context.Context, id string, in desk.UserInput) (user.User, error) {
	return b.c.UpdateUser(ctx, id, in)
}

func (b *remoteBackend) BlockUser(ctx context.Context, id string) (user.User, error) {
	return b.c.BlockUser(ctx, id)
}

func (b *remoteBackend) ListDepartments(ctx context.Context) ([]department.Department, error) {
	return b.c.ListDepartments(ctx)
}

func (b *remoteBackend) CreateDepartment(ctx context.Context, in desk.DepartmentInput) (department.Department, error) {
	return b.c.CreateDepartment(ctx, in)
}

func (b *remoteBackend) UpdateDepartment(ctx context.Context, id string, in desk.DepartmentInput) (department.Department, error) {
	return b.c.UpdateDepartment(ctx, id, in)
}

func (b *remoteBackend) BlockDepartment(ctx context.Context, id string) (department.Department, error) {
	return b.c.BlockDepartment(ctx, id)
}

func (b *remoteBackend) Activity(ctx context.Context, filter daterange.Filter, custom daterange.Custom) ([]activity.Entry, error) {
	return b.c.Activity(ctx, filter, custom)
}
