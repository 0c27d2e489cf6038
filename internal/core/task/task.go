// Package task defines the task record, its progress updates and replies,
// and the lifecycle engine that moves a task between statuses.
package task

import (
	"strings"
	"time"

	"github.com/colonyops/taskdesk/internal/core/user"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusBlocked    Status = "BLOCKED"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusBlocked, StatusCancelled}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no ordinary update can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseStatus accepts status names case-insensitively, with '-' or ' ' in
// place of '_'.
func ParseStatus(v string) (Status, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	v = strings.NewReplacer("-", "_", " ", "_").Replace(v)
	s := Status(v)
	return s, s.IsValid()
}

// Priority is the urgency assigned by the director.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority accepts priority names case-insensitively.
func ParsePriority(v string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(v)))
	return p, p.IsValid()
}

// Stage names one of the two approval gates.
type Stage string

const (
	StageHOD      Stage = "HOD"
	StageDirector Stage = "DIRECTOR"
)

// IsValid reports whether st is a known approval stage.
func (st Stage) IsValid() bool {
	return st == StageHOD || st == StageDirector
}

// ParseStage accepts stage names case-insensitively.
func ParseStage(v string) (Stage, bool) {
	st := Stage(strings.ToUpper(strings.TrimSpace(v)))
	return st, st.IsValid()
}

// Reply is a threaded comment on a single update.
type Reply struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	RepliedBy user.Ref  `json:"repliedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Update is an append-only progress report on a task.
//
// Timestamp and UpdatedAt are never written by this package. Older API
// payloads carry them instead of CreatedAt and the activity feed falls back
// to them.
type Update struct {
	ID             string     `json:"id"`
	Status         Status     `json:"status"`
	PreviousStatus Status     `json:"previousStatus,omitempty"`
	Remarks        string     `json:"remarks,omitempty"`
	Comment        string     `json:"comment,omitempty"`
	UpdatedBy      user.Ref   `json:"updatedBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
	Replies        []Reply    `json:"replies"`
}

// EventTime returns the first set timestamp among CreatedAt, Timestamp and
// UpdatedAt.
func (u Update) EventTime() (time.Time, bool) {
	if !u.CreatedAt.IsZero() {
		return u.CreatedAt, true
	}
	if u.Timestamp != nil && !u.Timestamp.IsZero() {
		return *u.Timestamp, true
	}
	if u.UpdatedAt != nil && !u.UpdatedAt.IsZero() {
		return *u.UpdatedAt, true
	}
	return time.Time{}, false
}

// Task is a unit of assigned work.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	Department       string     `json:"department"`
	AssignedTo       user.Ref   `json:"assignedTo"`
	AssignedBy       user.Ref   `json:"assignedBy"`
	StartDate        time.Time  `json:"startDate"`
	DueDate          time.Time  `json:"dueDate"`
	CompletedAt      *time.Time `json:"completedAt"`
	HODApproved      bool       `json:"hodApproved"`
	DirectorApproved bool       `json:"directorApproved"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Updates          []Update   `json:"updates"`
}

// RequiresHODApproval reports whether the HOD gate applies. Tasks assigned
// to a head of department go straight to director approval.
func (t *Task) RequiresHODApproval() bool {
	return t.AssignedTo.Role != user.RoleHOD
}

// FindUpdate returns a pointer into t.Updates for the given update ID.
func (t *Task) FindUpdate(id string) (*Update, bool) {
	for i := range t.Updates {
		if t.Updates[i].ID == id {
			return &t.Updates[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.Updates != nil {
		c.Updates = make([]Update, len(t.Updates))
		for i, u := range t.Updates {
			c.Updates[i] = u
			if u.Replies != nil {
				c.Updates[i].Replies = append([]Reply(nil), u.Replies...)
			}
		}
	}
	return c
}
