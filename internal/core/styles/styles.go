// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"sort"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/task"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

var (
	HeaderStyle   lipgloss.Style
	TitleStyle    lipgloss.Style
	MutedStyle    lipgloss.Style
	DividerStyle  lipgloss.Style
	ErrorStyle    lipgloss.Style
	SuccessStyle  lipgloss.Style
	SelectedStyle lipgloss.Style
	HelpStyle     lipgloss.Style

	TabActiveStyle   lipgloss.Style
	TabInactiveStyle lipgloss.Style
)

var (
	statusStyles   map[task.Status]lipgloss.Style
	priorityStyles map[task.Priority]lipgloss.Style
	kindStyles     map[activity.Kind]lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	TitleStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Surface)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	SelectedStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(p.Primary).
		PaddingLeft(1)
	HelpStyle = lipgloss.NewStyle().Foreground(p.Muted).MarginTop(1)

	TabActiveStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(p.Primary).
		Foreground(p.Background).
		Bold(true)
	TabInactiveStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(p.Muted)

	statusStyles = map[task.Status]lipgloss.Style{
		task.StatusPending:    lipgloss.NewStyle().Foreground(p.Muted),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(p.Primary),
		task.StatusCompleted:  lipgloss.NewStyle().Foreground(p.Success),
		task.StatusBlocked:    lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		task.StatusCancelled:  lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true),
	}
	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityLow:    lipgloss.NewStyle().Foreground(p.Muted),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(p.Warning),
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(p.Error).Bold(true),
	}
	kindStyles = map[activity.Kind]lipgloss.Style{
		activity.KindUserBlocked:       lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		activity.KindDepartmentBlocked: lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		activity.KindTaskCompleted:     lipgloss.NewStyle().Foreground(p.Success),
		activity.KindTaskCreated:       lipgloss.NewStyle().Foreground(p.Primary),
		activity.KindUserCreated:       lipgloss.NewStyle().Foreground(p.Primary),
		activity.KindDepartmentCreated: lipgloss.NewStyle().Foreground(p.Primary),
	}
}

// Status renders a task status in its color.
func Status(s task.Status) string {
	return styleFor(statusStyles, s).Render(string(s))
}

// Priority renders a task priority in its color.
func Priority(p task.Priority) string {
	return styleFor(priorityStyles, p).Render(string(p))
}

// Kind returns the style for an activity entry kind.
func Kind(k activity.Kind) lipgloss.Style {
	if st, ok := kindStyles[k]; ok {
		return st
	}
	return lipgloss.NewStyle().Foreground(CurrentPalette.Secondary)
}

func styleFor[K comparable](m map[K]lipgloss.Style, k K) lipgloss.Style {
	if st, ok := m[k]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func hexPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	p := CurrentPalette

	fg := hexPtr(p.Foreground)
	primary := hexPtr(p.Primary)
	secondary := hexPtr(p.Secondary)
	muted := hexPtr(p.Muted)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = hexPtr(p.Surface)
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}
