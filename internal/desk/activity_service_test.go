package desk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/daterange"
	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

type stubSource struct {
	tasks    []task.Task
	users    []user.User
	depts    []department.Department
	tasksErr error
	usersErr error
	deptsErr error
}

func (s stubSource) ListTasks(context.Context, task.ListFilter) ([]task.Task, error) {
	return s.tasks, s.tasksErr
}

func (s stubSource) ListUsers(context.Context) ([]user.User, error) {
	return s.users, s.usersErr
}

func (s stubSource) ListDepartments(context.Context) ([]department.Department, error) {
	return s.depts, s.deptsErr
}

func TestActivityService_LoadDegradesFailedFetches(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	src := stubSource{
		users:    []user.User{{ID: "u1", Name: "Erin", Department: "Engineering", IsActive: true, CreatedAt: created, UpdatedAt: created}},
		tasksErr: errors.New("tasks down"),
		deptsErr: errors.New("departments down"),
	}
	svc := NewActivityService(src, activity.DefaultOptions(), zerolog.Nop())

	snap, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap.Tasks)
	assert.Empty(t, snap.Tasks)
	assert.Empty(t, snap.Departments)
	require.Len(t, snap.Users, 1)
}

func TestActivityService_LoadCancelled(t *testing.T) {
	svc := NewActivityService(stubSource{}, activity.DefaultOptions(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestActivityService_Feed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.mustTask(t, f.employee)

	_, _, err := f.tasks.SubmitUpdate(ctx, f.employee.ID, tk.ID, task.StatusBlocked, "waiting on vendor")
	require.NoError(t, err)

	entries, err := f.activity.Feed(ctx, activity.Viewer{Role: user.RoleDirector}, daterange.FilterAll, daterange.Custom{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var kinds []activity.Kind
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, activity.KindUserCreated)
	assert.Contains(t, kinds, activity.KindDepartmentCreated)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.After(entries[i-1].Timestamp))
	}

	tomorrow, err := f.activity.Feed(ctx, activity.Viewer{Role: user.RoleDirector}, daterange.FilterTomorrow, daterange.Custom{})
	require.NoError(t, err)
	assert.Empty(t, tomorrow)

	outsider, err := f.activity.Feed(ctx, activity.Viewer{Role: user.RoleEmployee, Department: "Sales"}, daterange.FilterAll, daterange.Custom{})
	require.NoError(t, err)
	assert.Empty(t, outsider)
}
