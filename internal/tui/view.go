package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/styles"
)

const (
	headerLines = 3
	footerLines = 2
)

func (m Model) listHeight() int {
	h := m.height - headerLines - footerLines
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(styles.DividerStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")

	b.WriteString(m.renderBody())

	b.WriteString("\n")
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(m.help.View(m.keys))
	}

	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(m.filters))
	for i, f := range m.filters {
		label := fmt.Sprintf("%d %s", i+1, f)
		if i == m.filterIdx {
			tabs[i] = styles.TabActiveStyle.Render(label)
		} else {
			tabs[i] = styles.TabInactiveStyle.Render(label)
		}
	}

	title := styles.HeaderStyle.Render("taskdesk activity")
	status := ""
	if m.loading {
		status = " " + m.spinner.View()
	}
	return title + status + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderBody() string {
	rows := m.listHeight()
	lines := make([]string, 0, rows)

	switch {
	case m.err != nil:
		lines = append(lines, styles.ErrorStyle.Render("error: "+m.err.Error()))
	case len(m.visible) == 0 && m.loading:
		lines = append(lines, styles.MutedStyle.Render("loading…"))
	case len(m.visible) == 0:
		lines = append(lines, styles.MutedStyle.Render("No activity"))
	default:
		now := m.now()
		end := min(m.offset+rows, len(m.visible))
		for i := m.offset; i < end; i++ {
			lines = append(lines, m.renderEntry(m.visible[i], i == m.cursor, now))
		}
	}

	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEntry(e activity.Entry, selected bool, now time.Time) string {
	when := styles.MutedStyle.Render(fmt.Sprintf("%-14s", humanize.RelTime(e.Timestamp, now, "ago", "from now")))
	kind := styles.Kind(e.Kind).Render(fmt.Sprintf("%-18s", e.Kind))

	text := styles.TitleStyle.Render(e.Title)
	if e.Message != "" {
		text += " " + e.Message
	}
	if e.Actor != "" {
		text += styles.MutedStyle.Render(" · " + e.Actor)
	}

	line := when + " " + kind + " " + text
	if selected {
		return styles.SelectedStyle.Render(line)
	}
	return "  " + line
}
