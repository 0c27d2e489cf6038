package activity

import (
	"fmt"
	"time"

	"github.com/colonyops/taskdesk/internal/core/daterange"
	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

// Extract emits one entry per observable change in the snapshot, in input
// order.
func Extract(s Snapshot, opts Options) []Entry {
	opts = opts.withDefaults()

	entries := make([]Entry, 0, len(s.Tasks)*2+len(s.Users)+len(s.Departments))
	for _, t := range s.Tasks {
		entries = append(entries, taskEntries(t)...)
	}
	for _, u := range s.Users {
		entries = append(entries, userEntries(u, opts.EditThreshold)...)
	}
	for _, d := range s.Departments {
		entries = append(entries, departmentEntries(d, opts.EditThreshold)...)
	}
	return entries
}

func taskEntries(t task.Task) []Entry {
	base := Entry{
		EntityType: EntityTask,
		EntityID:   t.ID,
		Title:      t.Title,
		Department: t.Department,
	}

	out := make([]Entry, 0, len(t.Updates)+2)
	out = append(out, base.with(KindTaskCreated, t.CreatedAt, t.AssignedBy.Name,
		assignedMessage(t)))

	for _, u := range t.Updates {
		at, ok := u.EventTime()
		if !ok {
			continue
		}
		msg := UpdateMessage(u)
		if msg == "" {
			continue
		}
		out = append(out, base.with(KindTaskUpdate, at, u.UpdatedBy.Name, msg))
	}

	if t.CompletedAt != nil {
		out = append(out, base.with(KindTaskCompleted, *t.CompletedAt, t.AssignedTo.Name,
			"Task marked as completed"))
	}
	return out
}

func assignedMessage(t task.Task) string {
	if t.AssignedTo.Name == "" {
		return "Task created"
	}
	return "Task assigned to " + t.AssignedTo.Name
}

// UpdateMessage renders the feed text for a progress update. An empty
// result means the update carries nothing worth showing.
func UpdateMessage(u task.Update) string {
	note := u.Comment
	if note == "" {
		note = u.Remarks
	}

	switch {
	case u.PreviousStatus != "" && u.PreviousStatus != u.Status:
		msg := fmt.Sprintf("Status changed from %s to %s", u.PreviousStatus, u.Status)
		if note != "" {
			msg += ": " + note
		}
		return msg
	case note != "":
		return note
	case u.Status != "" && u.PreviousStatus == "":
		return fmt.Sprintf("Status updated to %s", u.Status)
	default:
		return ""
	}
}

func userEntries(u user.User, threshold time.Duration) []Entry {
	base := Entry{
		EntityType: EntityUser,
		EntityID:   u.ID,
		Title:      u.Name,
		Department: u.Department,
	}

	out := []Entry{base.with(KindUserCreated, u.CreatedAt, "", userCreatedMessage(u))}
	if edited(u.CreatedAt, u.UpdatedAt, threshold) {
		if u.IsActive {
			out = append(out, base.with(KindUserUpdated, u.UpdatedAt, "", u.Name+" was updated"))
		} else {
			out = append(out, base.with(KindUserBlocked, u.UpdatedAt, "", u.Name+" was blocked"))
		}
	}
	return out
}

func userCreatedMessage(u user.User) string {
	if u.Department == "" {
		return fmt.Sprintf("%s joined as %s", u.Name, u.Role)
	}
	return fmt.Sprintf("%s joined %s as %s", u.Name, u.Department, u.Role)
}

func departmentEntries(d department.Department, threshold time.Duration) []Entry {
	base := Entry{
		EntityType: EntityDepartment,
		EntityID:   d.ID,
		Title:      d.Name,
		Department: d.Name,
	}

	out := []Entry{base.with(KindDepartmentCreated, d.CreatedAt, "", "Department "+d.Name+" created")}
	if edited(d.CreatedAt, d.UpdatedAt, threshold) {
		// Blocked and updated are exclusive: a blocked department never
		// also reports an edit.
		if d.IsActive {
			out = append(out, base.with(KindDepartmentUpdated, d.UpdatedAt, "", "Department "+d.Name+" updated"))
		} else {
			out = append(out, base.with(KindDepartmentBlocked, d.UpdatedAt, "", "Department "+d.Name+" blocked"))
		}
	}
	return out
}

func edited(created, updated time.Time, threshold time.Duration) bool {
	return updated.Sub(created) > threshold
}

func (e Entry) with(kind Kind, at time.Time, actor, msg string) Entry {
	e.Kind = kind
	e.Priority = kind.Priority()
	e.Timestamp = at
	e.Actor = actor
	e.Message = msg
	return e
}

// Filter keeps entries inside the query window that the viewer may see.
func Filter(entries []Entry, q Query) []Entry {
	// Activity is retrospective; a future window can only hold clock skew.
	if q.Filter == daterange.FilterTomorrow || q.Window == nil {
		return []Entry{}
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !q.Window.Unbounded() && !q.Window.Contains(e.Timestamp) {
			continue
		}
		if !visible(e, q.Viewer) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// visible scopes employees to their own department. Other roles see all.
func visible(e Entry, v Viewer) bool {
	if v.Role != user.RoleEmployee {
		return true
	}
	return e.Department == v.Department
}
