package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/task"
)

// TaskMarkdown renders a task and its update thread as markdown. Times are
// shown relative to now.
func TaskMarkdown(t task.Task, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Status | %s |\n", t.Status)
	fmt.Fprintf(&b, "| Priority | %s |\n", t.Priority)
	fmt.Fprintf(&b, "| Department | %s |\n", t.Department)
	fmt.Fprintf(&b, "| Assigned to | %s (%s) |\n", t.AssignedTo.Name, t.AssignedTo.Role)
	fmt.Fprintf(&b, "| Assigned by | %s |\n", t.AssignedBy.Name)
	if !t.DueDate.IsZero() {
		fmt.Fprintf(&b, "| Due | %s (%s) |\n", t.DueDate.Format(time.DateOnly), humanize.RelTime(t.DueDate, now, "ago", "from now"))
	}
	fmt.Fprintf(&b, "| Approvals | %s |\n", approvals(t))
	fmt.Fprintf(&b, "| ID | `%s` |\n", t.ID)

	if d := strings.TrimSpace(t.Description); d != "" {
		fmt.Fprintf(&b, "\n%s\n", d)
	}

	if len(t.Updates) == 0 {
		return b.String()
	}

	b.WriteString("\n## Updates\n")
	for _, u := range t.Updates {
		at, _ := u.EventTime()
		fmt.Fprintf(&b, "\n### %s · %s\n\n", u.UpdatedBy.Name, humanize.RelTime(at, now, "ago", "from now"))
		if msg := activity.UpdateMessage(u); msg != "" {
			fmt.Fprintf(&b, "%s\n", msg)
		}
		fmt.Fprintf(&b, "\n`%s`\n", u.ID)
		for _, r := range u.Replies {
			fmt.Fprintf(&b, "\n> **%s** (%s): %s\n", r.RepliedBy.Name, humanize.RelTime(r.CreatedAt, now, "ago", "from now"), r.Message)
		}
	}

	return b.String()
}

func approvals(t task.Task) string {
	var parts []string
	if t.RequiresHODApproval() {
		parts = append(parts, mark("HOD", t.HODApproved))
	}
	parts = append(parts, mark("Director", t.DirectorApproved))
	return strings.Join(parts, ", ")
}

func mark(stage string, ok bool) string {
	if ok {
		return stage + " ✓"
	}
	return stage + " pending"
}

// ActivityLine renders one feed entry as a single plain text line.
func ActivityLine(e activity.Entry, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %-20s %s", humanize.RelTime(e.Timestamp, now, "ago", "from now"), e.Kind, e.Title)
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Actor != "" {
		fmt.Fprintf(&b, " (%s)", e.Actor)
	}
	return b.String()
}
