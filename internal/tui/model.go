// Package tui implements the interactive activity feed.
package tui

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/sahilm/fuzzy"

	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/daterange"
)

// DefaultRefreshInterval is how often the feed reloads on its own.
const DefaultRefreshInterval = 30 * time.Second

// Loader fetches the feed for a filter. It is the local ActivityService or
// the API client, depending on mode.
type Loader func(ctx context.Context, filter daterange.Filter, custom daterange.Custom) ([]activity.Entry, error)

// Options configures the feed view.
type Options struct {
	// Filter is the initial filter. FilterCustom adds a tab for Custom.
	Filter daterange.Filter
	Custom daterange.Custom
	// Refresh is the auto-reload interval. Zero uses the default; negative
	// disables it.
	Refresh time.Duration
	Now     func() time.Time
}

type loadedMsg struct {
	token   activity.Token
	filter  daterange.Filter
	entries []activity.Entry
	err     error
}

type refreshTickMsg struct{}

// Model is the bubbletea model of the activity feed.
type Model struct {
	ctx  context.Context
	load Loader
	feed *activity.Feed
	keys keyMap
	now  func() time.Time

	filters   []daterange.Filter
	filterIdx int
	custom    daterange.Custom
	refresh   time.Duration

	entries []activity.Entry
	visible []activity.Entry
	err     error
	loading bool

	cursor int
	offset int

	searching bool
	search    textinput.Model
	spinner   spinner.Model
	help      help.Model

	width  int
	height int
}

// New creates the feed model. Nothing loads until Init runs.
func New(ctx context.Context, load Loader, opts Options) Model {
	filters := presetFilters()
	idx := 0
	switch {
	case opts.Filter == daterange.FilterCustom:
		filters = append(filters, daterange.FilterCustom)
		idx = len(filters) - 1
	case opts.Filter != "":
		for i, f := range filters {
			if f == opts.Filter {
				idx = i
			}
		}
	}

	refresh := opts.Refresh
	if refresh == 0 {
		refresh = DefaultRefreshInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "fuzzy search"

	return Model{
		ctx:       ctx,
		load:      load,
		feed:      &activity.Feed{},
		keys:      defaultKeys(),
		now:       now,
		filters:   filters,
		filterIdx: idx,
		custom:    opts.Custom,
		refresh:   refresh,
		search:    search,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:      help.New(),
		loading:   true,
		width:     80,
		height:    24,
	}
}

// presetFilters lists the filters that need no extra input.
func presetFilters() []daterange.Filter {
	var out []daterange.Filter
	for _, f := range daterange.Filters {
		if f != daterange.FilterCustom {
			out = append(out, f)
		}
	}
	return out
}

// Filter returns the selected filter.
func (m Model) Filter() daterange.Filter {
	return m.filters[m.filterIdx]
}

// Entries returns the entries currently shown, after search.
func (m Model) Entries() []activity.Entry {
	return m.visible
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.scheduleRefresh(), m.reload())
}

// reload starts a new load. Its token supersedes every load still in
// flight, so only the latest result is applied.
func (m *Model) reload() tea.Cmd {
	tok := m.feed.Begin()
	m.loading = true

	ctx, load, filter, custom := m.ctx, m.load, m.Filter(), m.custom
	return func() tea.Msg {
		entries, err := load(ctx, filter, custom)
		return loadedMsg{token: tok, filter: filter, entries: entries, err: err}
	}
}

func (m Model) scheduleRefresh() tea.Cmd {
	if m.refresh < 0 {
		return nil
	}
	return tea.Tick(m.refresh, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case loadedMsg:
		if !m.feed.IsCurrent(msg.token) {
			log.Debug().Uint64("token", uint64(msg.token)).Str("filter", string(msg.filter)).Msg("tui: discarding stale activity result")
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.entries
		}
		m.applySearch()
		return m, nil

	case refreshTickMsg:
		if m.loading {
			return m, m.scheduleRefresh()
		}
		cmd := m.reload()
		return m, tea.Batch(cmd, m.scheduleRefresh())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextFilter):
		return m.selectFilter((m.filterIdx + 1) % len(m.filters))
	case key.Matches(msg, m.keys.PrevFilter):
		return m.selectFilter((m.filterIdx - 1 + len(m.filters)) % len(m.filters))
	case key.Matches(msg, m.keys.Reload):
		cmd := m.reload()
		return m, cmd
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
		return m, nil
	}

	// 1-9 jump straight to a filter tab.
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; r >= '1' && r <= '9' {
			if i := int(r - '1'); i < len(m.filters) {
				return m.selectFilter(i)
			}
		}
	}
	return m, nil
}

func (m Model) selectFilter(i int) (tea.Model, tea.Cmd) {
	if i == m.filterIdx && !m.loading {
		return m, nil
	}
	m.filterIdx = i
	m.cursor, m.offset = 0, 0
	cmd := m.reload()
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.applySearch()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applySearch()
	return m, cmd
}

// applySearch narrows entries to fuzzy matches of the query. Matches keep
// feed order rather than score order so the list stays chronological.
func (m *Model) applySearch() {
	q := strings.TrimSpace(m.search.Value())
	if q == "" {
		m.visible = m.entries
		m.clampCursor()
		return
	}

	matches := fuzzy.FindFrom(q, entrySource(m.entries))
	idx := make([]int, len(matches))
	for i, match := range matches {
		idx[i] = match.Index
	}
	sort.Ints(idx)

	m.visible = make([]activity.Entry, len(idx))
	for i, j := range idx {
		m.visible[i] = m.entries[j]
	}
	m.cursor, m.offset = 0, 0
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// entrySource adapts entries to fuzzy.Source.
type entrySource []activity.Entry

func (s entrySource) String(i int) string {
	e := s[i]
	return e.Title + " " + e.Message + " " + e.Actor + " " + e.Department
}

func (s entrySource) Len() int { return len(s) }

// Run starts the feed full screen and blocks until the user quits.
func Run(ctx context.Context, load Loader, opts Options) error {
	p := tea.NewProgram(New(ctx, load, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
