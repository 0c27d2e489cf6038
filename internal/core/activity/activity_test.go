package activity

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskdesk/internal/core/daterange"
	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

var t0 = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func at(offset time.Duration) time.Time { return t0.Add(offset) }

func ptr[T any](v T) *T { return &v }

func allQuery(v Viewer) Query {
	return NewQuery(daterange.FilterAll, daterange.Custom{}, t0, v)
}

var directorView = Viewer{Role: user.RoleDirector, Department: "Management"}

func kinds(entries []Entry) []Kind {
	out := make([]Kind, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Kind)
	}
	return out
}

func TestScenarioA_CreatedOnly(t *testing.T) {
	s := Snapshot{Tasks: []task.Task{{ID: "t1", Title: "Audit", Status: task.StatusPending, CreatedAt: at(0)}}}

	got := Reconstruct(s, allQuery(directorView), DefaultOptions())

	require.Len(t, got, 1)
	assert.Equal(t, KindTaskCreated, got[0].Kind)
	assert.Equal(t, at(0), got[0].Timestamp)
}

func TestScenarioB_StatusChangeMessage(t *testing.T) {
	u := task.Update{
		PreviousStatus: task.StatusPending,
		Status:         task.StatusInProgress,
		Comment:        "started",
		Remarks:        "ignored when a comment exists",
	}

	assert.Equal(t, "Status changed from PENDING to IN_PROGRESS: started", UpdateMessage(u))
}

func TestScenarioC_DedupKeepsHigherPriority(t *testing.T) {
	s := Snapshot{Tasks: []task.Task{{
		ID:        "t1",
		CreatedAt: at(0),
		Updates: []task.Update{
			{ID: "u1", Status: task.StatusPending, PreviousStatus: task.StatusPending, Remarks: "reading", CreatedAt: at(2 * time.Second)},
		},
	}}}

	got := Reconstruct(s, allQuery(directorView), DefaultOptions())

	require.Len(t, got, 1)
	assert.Equal(t, KindTaskCreated, got[0].Kind)
	assert.Equal(t, 2, got[0].Priority)
}

func TestScenarioD_TomorrowIsAlwaysEmpty(t *testing.T) {
	s := Snapshot{
		Tasks: []task.Task{{ID: "t1", CreatedAt: at(24 * time.Hour)}},
		Users: []user.User{{ID: "u1", CreatedAt: at(25 * time.Hour)}},
	}
	q := NewQuery(daterange.FilterTomorrow, daterange.Custom{}, t0, directorView)
	require.NotNil(t, q.Window)

	got := Reconstruct(s, q, DefaultOptions())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScenarioE_BlockedDepartment(t *testing.T) {
	s := Snapshot{Departments: []department.Department{{
		ID:        "d1",
		Name:      "Engineering",
		IsActive:  false,
		CreatedAt: at(0),
		UpdatedAt: at(1500 * time.Millisecond),
	}}}

	entries := Extract(s, DefaultOptions())

	assert.Equal(t, []Kind{KindDepartmentCreated, KindDepartmentBlocked}, kinds(entries))
	assert.NotContains(t, kinds(Reconstruct(s, allQuery(directorView), DefaultOptions())), KindDepartmentUpdated)
}

func TestUpdateMessage(t *testing.T) {
	tests := []struct {
		name string
		u    task.Update
		want string
	}{
		{
			name: "status change with remarks",
			u:    task.Update{PreviousStatus: task.StatusInProgress, Status: task.StatusBlocked, Remarks: "waiting on vendor"},
			want: "Status changed from IN_PROGRESS to BLOCKED: waiting on vendor",
		},
		{
			name: "status change alone",
			u:    task.Update{PreviousStatus: task.StatusInProgress, Status: task.StatusCompleted},
			want: "Status changed from IN_PROGRESS to COMPLETED",
		},
		{
			name: "comment wins over remarks",
			u:    task.Update{PreviousStatus: task.StatusPending, Status: task.StatusPending, Comment: "c", Remarks: "r"},
			want: "c",
		},
		{
			name: "remarks",
			u:    task.Update{PreviousStatus: task.StatusPending, Status: task.StatusPending, Remarks: "r"},
			want: "r",
		},
		{
			name: "no previous status",
			u:    task.Update{Status: task.StatusInProgress},
			want: "Status updated to IN_PROGRESS",
		},
		{
			name: "same status and nothing to say",
			u:    task.Update{PreviousStatus: task.StatusPending, Status: task.StatusPending},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UpdateMessage(tt.u))
		})
	}
}

func TestExtract_Tasks(t *testing.T) {
	s := Snapshot{Tasks: []task.Task{{
		ID:          "t1",
		Title:       "Audit",
		Department:  "Engineering",
		AssignedTo:  user.Ref{Name: "Erin"},
		AssignedBy:  user.Ref{Name: "Dana"},
		CreatedAt:   at(0),
		CompletedAt: ptr(at(time.Hour)),
		Updates: []task.Update{
			{ID: "u1", PreviousStatus: task.StatusPending, Status: task.StatusPending, CreatedAt: at(time.Minute)},
			{ID: "u2", PreviousStatus: task.StatusPending, Status: task.StatusInProgress, Timestamp: ptr(at(2 * time.Minute))},
			{ID: "u3", Remarks: "legacy", UpdatedAt: ptr(at(3 * time.Minute))},
			{ID: "u4", Remarks: "no time at all"},
		},
	}}}

	got := Extract(s, DefaultOptions())

	require.Equal(t, []Kind{KindTaskCreated, KindTaskUpdate, KindTaskUpdate, KindTaskCompleted}, kinds(got))
	assert.Equal(t, "Dana", got[0].Actor)
	assert.Equal(t, "Task assigned to Erin", got[0].Message)
	assert.Equal(t, at(2*time.Minute), got[1].Timestamp)
	assert.Equal(t, at(3*time.Minute), got[2].Timestamp)
	assert.Equal(t, "legacy", got[2].Message)
	assert.Equal(t, at(time.Hour), got[3].Timestamp)
	for _, e := range got {
		assert.Equal(t, "Engineering", e.Department)
		assert.Equal(t, "t1", e.EntityID)
	}
}

func TestExtract_UsersRespectEditThreshold(t *testing.T) {
	s := Snapshot{Users: []user.User{
		{ID: "a", Name: "A", IsActive: true, CreatedAt: at(0), UpdatedAt: at(time.Second)},
		{ID: "b", Name: "B", IsActive: true, CreatedAt: at(0), UpdatedAt: at(1001 * time.Millisecond)},
		{ID: "c", Name: "C", IsActive: false, CreatedAt: at(0), UpdatedAt: at(time.Minute)},
	}}

	got := Extract(s, DefaultOptions())
	assert.Equal(t, []Kind{
		KindUserCreated,
		KindUserCreated, KindUserUpdated,
		KindUserCreated, KindUserBlocked,
	}, kinds(got))

	got = Extract(s, Options{EditThreshold: 2 * time.Minute})
	assert.Equal(t, []Kind{KindUserCreated, KindUserCreated, KindUserCreated}, kinds(got))
}

func TestFilter_Window(t *testing.T) {
	entries := []Entry{
		{Kind: KindTaskCreated, EntityID: "old", Timestamp: t0.AddDate(0, 0, -3)},
		{Kind: KindTaskCreated, EntityID: "today", Timestamp: at(time.Hour)},
	}

	t.Run("today", func(t *testing.T) {
		q := NewQuery(daterange.FilterToday, daterange.Custom{}, t0, directorView)
		got := Filter(entries, q)
		require.Len(t, got, 1)
		assert.Equal(t, "today", got[0].EntityID)
	})

	t.Run("all keeps everything", func(t *testing.T) {
		assert.Len(t, Filter(entries, allQuery(directorView)), 2)
	})

	t.Run("incomplete custom range keeps nothing", func(t *testing.T) {
		q := NewQuery(daterange.FilterCustom, daterange.Custom{From: ptr(t0)}, t0, directorView)
		assert.Nil(t, q.Window)
		assert.Empty(t, Filter(entries, q))
	})
}

func TestFilter_EmployeeScoping(t *testing.T) {
	s := Snapshot{
		Tasks: []task.Task{
			{ID: "t-eng", Department: "Engineering", CreatedAt: at(0)},
			{ID: "t-ops", Department: "Operations", CreatedAt: at(0)},
		},
		Users: []user.User{
			{ID: "u-eng", Department: "Engineering", CreatedAt: at(0)},
			{ID: "u-ops", Department: "Operations", CreatedAt: at(0)},
		},
		Departments: []department.Department{
			{ID: "d-eng", Name: "Engineering", IsActive: true, CreatedAt: at(0)},
			{ID: "d-ops", Name: "Operations", IsActive: true, CreatedAt: at(0)},
		},
	}

	employee := Viewer{Role: user.RoleEmployee, Department: "Engineering"}
	got := Reconstruct(s, allQuery(employee), DefaultOptions())
	require.Len(t, got, 3)
	for _, e := range got {
		assert.Equal(t, "Engineering", e.Department)
	}

	hod := Viewer{Role: user.RoleHOD, Department: "Engineering"}
	assert.Len(t, Reconstruct(s, allQuery(hod), DefaultOptions()), 6)
}

func TestCollapse(t *testing.T) {
	entry := func(id string, kind Kind, offset time.Duration) Entry {
		return Entry{EntityType: EntityTask, EntityID: id, Kind: kind, Priority: kind.Priority(), Timestamp: at(offset), Message: string(kind)}
	}

	t.Run("gap at window keeps both", func(t *testing.T) {
		got := Collapse([]Entry{
			entry("t1", KindTaskCreated, 0),
			entry("t1", KindTaskUpdate, 5*time.Second),
		}, DefaultOptions())
		assert.Equal(t, []Kind{KindTaskUpdate, KindTaskCreated}, kinds(got))
	})

	t.Run("tie keeps newer", func(t *testing.T) {
		older := entry("t1", KindTaskUpdate, 0)
		newer := entry("t1", KindTaskUpdate, time.Second)
		newer.Message = "newer"

		got := Collapse([]Entry{older, newer}, DefaultOptions())
		require.Len(t, got, 1)
		assert.Equal(t, "newer", got[0].Message)
	})

	t.Run("different entities never fold", func(t *testing.T) {
		got := Collapse([]Entry{
			entry("t1", KindTaskCreated, 0),
			entry("t2", KindTaskCreated, 0),
		}, DefaultOptions())
		assert.Len(t, got, 2)
	})

	t.Run("same id different entity type never fold", func(t *testing.T) {
		a := entry("x", KindTaskCreated, 0)
		b := entry("x", KindUserCreated, 0)
		b.EntityType = EntityUser
		assert.Len(t, Collapse([]Entry{a, b}, DefaultOptions()), 2)
	})

	t.Run("replacement becomes the representative", func(t *testing.T) {
		// update@10s, blocked@7s, update@3s: blocked replaces the first
		// update and is then 4s from the last, which folds into it.
		got := Collapse([]Entry{
			entry("t1", KindTaskUpdate, 10*time.Second),
			entry("t1", KindUserBlocked, 7*time.Second),
			entry("t1", KindTaskUpdate, 3*time.Second),
		}, DefaultOptions())
		require.Len(t, got, 1)
		assert.Equal(t, KindUserBlocked, got[0].Kind)
	})

	t.Run("custom window", func(t *testing.T) {
		in := []Entry{
			entry("t1", KindTaskCreated, 0),
			entry("t1", KindTaskUpdate, 2*time.Second),
		}
		assert.Len(t, Collapse(in, Options{DedupWindow: time.Second}), 2)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		in := []Entry{
			entry("t1", KindTaskCreated, 0),
			entry("t2", KindTaskCreated, time.Minute),
		}
		Collapse(in, DefaultOptions())
		assert.Equal(t, "t1", in[0].EntityID)
	})
}

func TestCollapse_DedupProperty(t *testing.T) {
	all := []Kind{KindTaskCreated, KindTaskUpdate, KindTaskCompleted, KindUserBlocked}

	for _, a := range all {
		for _, b := range all {
			for _, gap := range []time.Duration{0, time.Millisecond, 2 * time.Second, 4999 * time.Millisecond} {
				ea := Entry{EntityType: EntityTask, EntityID: "t", Kind: a, Priority: a.Priority(), Timestamp: at(0)}
				eb := Entry{EntityType: EntityTask, EntityID: "t", Kind: b, Priority: b.Priority(), Timestamp: at(gap)}

				got := Collapse([]Entry{ea, eb}, DefaultOptions())
				require.Len(t, got, 1)
				assert.GreaterOrEqual(t, got[0].Priority, ea.Priority)
				assert.GreaterOrEqual(t, got[0].Priority, eb.Priority)
			}
		}
	}
}

func TestReconstruct_Deterministic(t *testing.T) {
	s := Snapshot{
		Tasks: []task.Task{
			{ID: "t1", Title: "A", CreatedAt: at(0)},
			{ID: "t2", Title: "B", CreatedAt: at(0)},
			{ID: "t3", Title: "C", CreatedAt: at(0), Updates: []task.Update{
				{ID: "u", Remarks: "x", CreatedAt: at(time.Minute)},
			}},
		},
		Users: []user.User{{ID: "u1", CreatedAt: at(0)}},
	}
	q := allQuery(directorView)

	first := Reconstruct(s, q, DefaultOptions())
	for range 20 {
		assert.Equal(t, first, Reconstruct(s, q, DefaultOptions()))
	}

	// equal timestamps keep extraction order
	require.Len(t, first, 5)
	assert.Equal(t, KindTaskUpdate, first[0].Kind)
	assert.Equal(t, []string{"t1", "t2", "t3", "u1"}, []string{
		first[1].EntityID, first[2].EntityID, first[3].EntityID, first[4].EntityID,
	})
}

func TestFeed_LastRequestWins(t *testing.T) {
	var f Feed

	first := f.Begin()
	second := f.Begin()

	assert.False(t, f.IsCurrent(first))
	assert.True(t, f.IsCurrent(second))

	var applied []Token
	assert.True(t, f.Settle(second, func() { applied = append(applied, second) }))
	assert.False(t, f.Settle(first, func() { applied = append(applied, first) }))
	assert.Equal(t, []Token{second}, applied)
}

func TestFeed_Concurrent(t *testing.T) {
	var (
		f  Feed
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)

	tokens := make([]Token, 50)
	for i := range tokens {
		tokens[i] = f.Begin()
	}

	for _, tok := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Settle(tok, func() {
				mu.Lock()
				ok++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
}
