package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/daterange"
	"github.com/colonyops/taskdesk/pkg/tuitest"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

// filterLoader returns one entry titled after the requested filter.
func filterLoader(_ context.Context, f daterange.Filter, _ daterange.Custom) ([]activity.Entry, error) {
	return []activity.Entry{{
		Kind:       activity.KindTaskCreated,
		EntityType: activity.EntityTask,
		EntityID:   string(f),
		Title:      "feed " + string(f),
		Timestamp:  fixedNow.Add(-time.Hour),
	}}, nil
}

func newModel(t *testing.T, load Loader, opts Options) Model {
	t.Helper()
	opts.Refresh = -1
	opts.Now = func() time.Time { return fixedNow }
	return New(context.Background(), load, opts)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	require.True(t, ok)
	return mm, cmd
}

func TestNew_InitialFilter(t *testing.T) {
	m := newModel(t, filterLoader, Options{Filter: daterange.FilterMonth})
	assert.Equal(t, daterange.FilterMonth, m.Filter())
	assert.NotContains(t, m.filters, daterange.FilterCustom)

	m = newModel(t, filterLoader, Options{Filter: daterange.FilterCustom})
	assert.Equal(t, daterange.FilterCustom, m.Filter())

	m = newModel(t, filterLoader, Options{})
	assert.Equal(t, daterange.FilterToday, m.Filter())
}

func TestModel_LoadApplies(t *testing.T) {
	m := newModel(t, filterLoader, Options{Filter: daterange.FilterWeek})

	m, cmd := update(t, m, tuitest.KeyPress('r'))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	m, _ = update(t, m, cmd())
	assert.False(t, m.loading)
	require.Len(t, m.Entries(), 1)
	assert.Equal(t, "feed week", m.Entries()[0].Title)
}

func TestModel_StaleResultDiscarded(t *testing.T) {
	m := newModel(t, filterLoader, Options{Filter: daterange.FilterToday})

	// Switch twice before either load finishes.
	m, first := update(t, m, tuitest.KeyPress('2'))
	require.NotNil(t, first)
	m, second := update(t, m, tuitest.KeyPress('3'))
	require.NotNil(t, second)
	assert.Equal(t, daterange.FilterTomorrow, m.Filter())

	// The newer result lands first; the older one must not overwrite it.
	m, _ = update(t, m, second())
	m, _ = update(t, m, first())

	require.Len(t, m.Entries(), 1)
	assert.Equal(t, "feed tomorrow", m.Entries()[0].Title)
	assert.False(t, m.loading)
}

func TestModel_StaleResultKeepsLoading(t *testing.T) {
	m := newModel(t, filterLoader, Options{Filter: daterange.FilterToday})

	m, first := update(t, m, tuitest.KeyPress('2'))
	m, _ = update(t, m, tuitest.KeyPress('3'))

	m, _ = update(t, m, first())
	assert.True(t, m.loading, "stale result must not end the newer load")
	assert.Empty(t, m.Entries())
}

func TestModel_FilterCycling(t *testing.T) {
	m := newModel(t, filterLoader, Options{Filter: daterange.FilterToday})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, daterange.FilterAll, m.Filter(), "wraps to the last preset")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, daterange.FilterToday, m.Filter())
}

func TestModel_LoadErrorKeepsEntries(t *testing.T) {
	fail := false
	load := func(ctx context.Context, f daterange.Filter, c daterange.Custom) ([]activity.Entry, error) {
		if fail {
			return nil, errors.New("server unavailable")
		}
		return filterLoader(ctx, f, c)
	}

	m := newModel(t, load, Options{Filter: daterange.FilterWeek})
	m, cmd := update(t, m, tuitest.KeyPress('r'))
	m, _ = update(t, m, cmd())
	require.Len(t, m.Entries(), 1)

	fail = true
	m, cmd = update(t, m, tuitest.KeyPress('r'))
	m, _ = update(t, m, cmd())

	require.Error(t, m.err)
	assert.Len(t, m.Entries(), 1)
	assert.Contains(t, tuitest.StripANSI(m.View()), "server unavailable")
}

func TestModel_Search(t *testing.T) {
	entries := []activity.Entry{
		{Kind: activity.KindTaskUpdate, EntityID: "1", Title: "Quarterly report", Timestamp: fixedNow.Add(-time.Minute)},
		{Kind: activity.KindUserCreated, EntityID: "2", Title: "Ada Lovelace", Message: "New employee joined", Timestamp: fixedNow.Add(-2 * time.Minute)},
		{Kind: activity.KindTaskCreated, EntityID: "3", Title: "Quarterly budget", Timestamp: fixedNow.Add(-3 * time.Minute)},
	}
	load := func(context.Context, daterange.Filter, daterange.Custom) ([]activity.Entry, error) {
		return entries, nil
	}

	m := newModel(t, load, Options{Filter: daterange.FilterAll})
	m, cmd := update(t, m, tuitest.KeyPress('r'))
	m, _ = update(t, m, cmd())

	m, _ = update(t, m, tuitest.KeyPress('/'))
	require.True(t, m.searching)
	for _, msg := range tuitest.KeyPressString("qrtly") {
		m, _ = update(t, m, msg)
	}

	got := m.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].EntityID, "matches keep feed order")
	assert.Equal(t, "3", got[1].EntityID)

	// Keys typed while searching do not switch filters.
	assert.Equal(t, daterange.FilterAll, m.Filter())

	m, _ = update(t, m, tuitest.KeyEsc())
	assert.False(t, m.searching)
	assert.Len(t, m.Entries(), 3)
}

func TestModel_CursorScrolls(t *testing.T) {
	var entries []activity.Entry
	for i := range 20 {
		entries = append(entries, activity.Entry{
			Kind:      activity.KindTaskUpdate,
			EntityID:  string(rune('a' + i)),
			Title:     "entry",
			Timestamp: fixedNow.Add(-time.Duration(i) * time.Minute),
		})
	}
	load := func(context.Context, daterange.Filter, daterange.Custom) ([]activity.Entry, error) {
		return entries, nil
	}

	m := newModel(t, load, Options{Filter: daterange.FilterAll})
	m, _ = update(t, m, tuitest.WindowSize(80, 10))
	m, cmd := update(t, m, tuitest.KeyPress('r'))
	m, _ = update(t, m, cmd())

	for range 8 {
		m, _ = update(t, m, tuitest.KeyDown())
	}
	assert.Equal(t, 8, m.cursor)
	assert.Equal(t, 8-m.listHeight()+1, m.offset)

	for range 30 {
		m, _ = update(t, m, tuitest.KeyUp())
	}
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, 0, m.offset)
}

func TestModel_View(t *testing.T) {
	m := newModel(t, filterLoader, Options{Filter: daterange.FilterWeek})
	m, cmd := update(t, m, tuitest.KeyPress('r'))
	m, _ = update(t, m, cmd())

	out := tuitest.StripANSI(m.View())
	assert.Contains(t, out, "taskdesk activity")
	assert.Contains(t, out, "4 week")
	assert.Contains(t, out, "feed week")
	assert.Contains(t, out, "1 hour ago")
}

func TestModel_EmptyView(t *testing.T) {
	load := func(context.Context, daterange.Filter, daterange.Custom) ([]activity.Entry, error) {
		return nil, nil
	}
	m := newModel(t, load, Options{Filter: daterange.FilterTomorrow})
	m, cmd := update(t, m, tuitest.KeyPress('r'))
	m, _ = update(t, m, cmd())

	assert.Contains(t, tuitest.StripANSI(m.View()), "No activity")
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t, filterLoader, Options{})
	_, cmd := update(t, m, tuitest.KeyPress('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
