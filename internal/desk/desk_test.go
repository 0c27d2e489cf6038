package desk

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/eventbus/testbus"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
	"github.com/colonyops/taskdesk/internal/data/db"
	"github.com/colonyops/taskdesk/internal/data/stores"
)

type fixture struct {
	tasks     *TaskService
	directory *DirectoryService
	activity  *ActivityService
	bus       *testbus.Bus

	director user.User
	hod      user.User
	employee user.User
	blocked  user.User
	eng      department.Department
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	users := stores.NewUserStore(database)
	depts := stores.NewDepartmentStore(database)
	tasks := stores.NewTaskStore(database)
	tb := testbus.New(t)
	log := zerolog.Nop()

	f := &fixture{
		tasks:     NewTaskService(tasks, users, task.NewEngine(), tb.EventBus, log),
		directory: NewDirectoryService(users, depts, tb.EventBus, log),
		activity:  NewActivityService(NewStoreSource(tasks, users, depts), activityOpts, log),
		bus:       tb,
	}

	f.director, err = f.directory.Bootstrap(ctx, UserInput{Name: "Dana", Email: "dana@example.com"})
	require.NoError(t, err)

	f.eng, err = f.directory.CreateDepartment(ctx, f.director.ID, DepartmentInput{Name: "Engineering", Code: "eng"})
	require.NoError(t, err)

	f.hod = f.mustUser(t, "Hank", "hank@example.com", user.RoleHOD)
	f.employee = f.mustUser(t, "Erin", "erin@example.com", user.RoleEmployee)
	f.blocked = f.mustUser(t, "Bob", "bob@example.com", user.RoleEmployee)
	_, err = f.directory.BlockUser(ctx, f.director.ID, f.blocked.ID)
	require.NoError(t, err)

	tb.Reset()
	return f
}

func (f *fixture) mustUser(t *testing.T, name, email string, role user.Role) user.User {
	t.Helper()
	u, err := f.directory.CreateUser(context.Background(), f.director.ID, UserInput{
		Name:       name,
		Email:      email,
		Role:       string(role),
		Department: "engineering",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) mustTask(t *testing.T, assignee user.User) task.Task {
	t.Helper()
	tk, err := f.tasks.Create(context.Background(), f.director.ID, CreateInput{
		Title:      "Write the runbook",
		Priority:   "high",
		AssigneeID: assignee.ID,
	})
	require.NoError(t, err)
	return tk
}
