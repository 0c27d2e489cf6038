package desk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/eventbus"
	"github.com/colonyops/taskdesk/internal/core/task"
)

var activityOpts = activity.DefaultOptions()

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("director creates task for employee", func(t *testing.T) {
		f := newFixture(t)

		tk := f.mustTask(t, f.employee)
		assert.Equal(t, task.StatusPending, tk.Status)
		assert.Equal(t, task.PriorityHigh, tk.Priority)
		assert.Equal(t, "Engineering", tk.Department)
		assert.Equal(t, f.employee.Ref(), tk.AssignedTo)
		assert.Equal(t, f.director.Ref(), tk.AssignedBy)

		got, err := f.tasks.Get(ctx, tk.ID)
		require.NoError(t, err)
		assert.Equal(t, tk.Title, got.Title)

		f.bus.AssertPublished(t, eventbus.EventTaskCreated)
	})

	t.Run("non director is forbidden", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.tasks.Create(ctx, f.hod.ID, CreateInput{Title: "x", AssigneeID: f.employee.ID})
		require.ErrorIs(t, err, task.ErrForbidden)
	})

	t.Run("unknown assignee is a field error", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.tasks.Create(ctx, f.director.ID, CreateInput{Title: "x", AssigneeID: "ghost"})
		require.ErrorIs(t, err, task.ErrValidation)
		fields := task.FieldErrors(err)
		require.Len(t, fields, 1)
		assert.Equal(t, "assignedTo", fields[0].Field)
	})

	t.Run("blocked assignee rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.tasks.Create(ctx, f.director.ID, CreateInput{Title: "x", AssigneeID: f.blocked.ID})
		require.ErrorIs(t, err, task.ErrValidation)
	})

	t.Run("blocked actor is forbidden", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.tasks.Create(ctx, f.blocked.ID, CreateInput{Title: "x", AssigneeID: f.employee.ID})
		require.ErrorIs(t, err, task.ErrForbidden)
	})
}

func TestTaskService_FullApprovalFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.mustTask(t, f.employee)

	_, u, err := f.tasks.SubmitUpdate(ctx, f.employee.ID, tk.ID, task.StatusInProgress, "started")
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, u.PreviousStatus)

	done, _, err := f.tasks.SubmitUpdate(ctx, f.employee.ID, tk.ID, task.StatusCompleted, "finished")
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	_, _, err = f.tasks.Approve(ctx, f.director.ID, tk.ID, task.StageDirector)
	require.ErrorIs(t, err, task.ErrInvalidState)

	_, changed, err := f.tasks.Approve(ctx, f.hod.ID, tk.ID, task.StageHOD)
	require.NoError(t, err)
	assert.True(t, changed)

	approved, changed, err := f.tasks.Approve(ctx, f.director.ID, tk.ID, task.StageDirector)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, approved.HODApproved)
	assert.True(t, approved.DirectorApproved)

	again, changed, err := f.tasks.Approve(ctx, f.director.ID, tk.ID, task.StageDirector)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, again.Updates, len(approved.Updates))

	_, _, err = f.tasks.SubmitUpdate(ctx, f.employee.ID, tk.ID, task.StatusCompleted, "one more thing")
	require.ErrorIs(t, err, task.ErrForbidden)

	reopened, err := f.tasks.Reopen(ctx, f.hod.ID, tk.ID, "")
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, reopened.Status)
	assert.False(t, reopened.HODApproved)
	assert.False(t, reopened.DirectorApproved)
	assert.Nil(t, reopened.CompletedAt)
	require.NoError(t, task.CheckInvariants(reopened))

	f.bus.AssertPublished(t, eventbus.EventTaskUpdated)
	f.bus.AssertPublished(t, eventbus.EventTaskApproved)
	f.bus.AssertPublished(t, eventbus.EventTaskReopened)
	assert.Len(t, f.bus.Of(eventbus.EventTaskApproved), 2)
}

func TestTaskService_SubmitUpdateForbiddenLeavesTaskUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.mustTask(t, f.employee)

	_, _, err := f.tasks.SubmitUpdate(ctx, f.hod.ID, tk.ID, task.StatusInProgress, "not mine")
	require.ErrorIs(t, err, task.ErrForbidden)

	got, err := f.tasks.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, got.Status)
	assert.Empty(t, got.Updates)
	f.bus.AssertNotPublished(t, eventbus.EventTaskUpdated, 20*time.Millisecond)
}

func TestTaskService_Reply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.mustTask(t, f.employee)

	_, u, err := f.tasks.SubmitUpdate(ctx, f.employee.ID, tk.ID, task.StatusBlocked, "waiting on access")
	require.NoError(t, err)

	got, r, err := f.tasks.Reply(ctx, f.director.ID, tk.ID, u.ID, "granted")
	require.NoError(t, err)
	assert.Equal(t, "granted", r.Message)
	up, ok := got.FindUpdate(u.ID)
	require.True(t, ok)
	require.Len(t, up.Replies, 1)

	_, _, err = f.tasks.Reply(ctx, f.hod.ID, tk.ID, u.ID, "me too")
	require.ErrorIs(t, err, task.ErrForbidden)

	_, _, err = f.tasks.Reply(ctx, f.director.ID, tk.ID, "nope", "hello")
	require.ErrorIs(t, err, task.ErrNotFound)

	f.bus.AssertPublished(t, eventbus.EventReplyAdded)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.mustTask(t, f.employee)

	require.ErrorIs(t, f.tasks.Delete(ctx, f.employee.ID, tk.ID), task.ErrForbidden)
	require.NoError(t, f.tasks.Delete(ctx, f.director.ID, tk.ID))
	require.ErrorIs(t, f.tasks.Delete(ctx, f.director.ID, tk.ID), task.ErrNotFound)

	f.bus.AssertPublished(t, eventbus.EventTaskDeleted)
}

func TestTaskService_Import(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.tasks.Import(ctx, f.director.ID, []ImportItem{
		{CreateInput: CreateInput{Title: "One", AssigneeID: f.employee.ID}},
		{CreateInput: CreateInput{Title: "Two"}, AssigneeEmail: "HANK@example.com"},
		{CreateInput: CreateInput{Title: "Three"}, AssigneeEmail: "nobody@example.com"},
		{CreateInput: CreateInput{Title: "Four", AssigneeID: f.employee.ID}},
	})
	require.ErrorIs(t, err, task.ErrValidation)
	assert.Contains(t, err.Error(), "item 2")
	require.Len(t, created, 2)
	assert.Equal(t, f.hod.ID, created[1].AssignedTo.ID)

	all, err := f.tasks.List(ctx, task.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
