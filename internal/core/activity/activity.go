// Package activity reconstructs a human-readable activity feed from the
// timestamps already stored on tasks, users and departments. Nothing here is
// persisted; the feed is recomputed from the current snapshot on every view.
//
// Reconstruction runs in two halves. Extract and Filter turn snapshots into
// scoped entries. Collapse sorts and removes near-duplicate entries. An
// audit-log backed extractor can replace the first half without touching
// the second.
package activity

import (
	"context"
	"time"

	"github.com/colonyops/taskdesk/internal/core/daterange"
	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

const (
	// DefaultDedupWindow is the gap under which two entries on the same
	// entity are treated as one logical operation.
	DefaultDedupWindow = 5000 * time.Millisecond
	// DefaultEditThreshold is how far updatedAt must move past createdAt
	// before a user or department counts as edited.
	DefaultEditThreshold = 1000 * time.Millisecond
)

// Kind identifies the type of an activity entry.
type Kind string

const (
	KindTaskCreated       Kind = "task_created"
	KindTaskUpdate        Kind = "task_update"
	KindTaskCompleted     Kind = "task_completed"
	KindUserCreated       Kind = "user_created"
	KindUserUpdated       Kind = "user_updated"
	KindUserBlocked       Kind = "user_blocked"
	KindDepartmentCreated Kind = "department_created"
	KindDepartmentUpdated Kind = "department_updated"
	KindDepartmentBlocked Kind = "department_blocked"
)

// Priority ranks kinds for deduplication: blocked > created = completed >
// updated.
func (k Kind) Priority() int {
	switch k {
	case KindUserBlocked, KindDepartmentBlocked:
		return 3
	case KindTaskCreated, KindUserCreated, KindDepartmentCreated, KindTaskCompleted:
		return 2
	default:
		return 1
	}
}

// EntityType is the kind of record an entry describes.
type EntityType string

const (
	EntityTask       EntityType = "task"
	EntityUser       EntityType = "user"
	EntityDepartment EntityType = "department"
)

// Entry is a single synthesized activity row.
type Entry struct {
	Kind       Kind       `json:"kind"`
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Actor      string     `json:"actor,omitempty"`
	Department string     `json:"department"`
	Timestamp  time.Time  `json:"timestamp"`
	Priority   int        `json:"priority"`
}

// Key identifies the entity an entry belongs to.
func (e Entry) Key() string {
	return string(e.EntityType) + ":" + e.EntityID
}

// Options tunes the reconstruction heuristics. Zero values fall back to the
// defaults.
type Options struct {
	DedupWindow   time.Duration
	EditThreshold time.Duration
}

// DefaultOptions returns Options populated with the default thresholds.
func DefaultOptions() Options {
	return Options{
		DedupWindow:   DefaultDedupWindow,
		EditThreshold: DefaultEditThreshold,
	}
}

func (o Options) withDefaults() Options {
	if o.DedupWindow <= 0 {
		o.DedupWindow = DefaultDedupWindow
	}
	if o.EditThreshold <= 0 {
		o.EditThreshold = DefaultEditThreshold
	}
	return o
}

// Snapshot is the input to reconstruction.
type Snapshot struct {
	Tasks       []task.Task
	Users       []user.User
	Departments []department.Department
}

// Viewer identifies who the feed is rendered for.
type Viewer struct {
	Role       user.Role
	Department string
}

// Query selects the window and audience of a feed.
type Query struct {
	// Filter is the named filter the window was resolved from.
	Filter daterange.Filter
	// Window is the resolved interval. A nil Window matches nothing.
	Window *daterange.Interval
	Viewer Viewer
}

// NewQuery resolves filter against now and builds a Query for viewer.
func NewQuery(filter daterange.Filter, custom daterange.Custom, now time.Time, viewer Viewer) Query {
	q := Query{Filter: filter, Viewer: viewer}
	if iv, ok := daterange.Resolve(filter, custom, now); ok {
		q.Window = &iv
	}
	return q
}

// Source fetches the snapshots reconstruction runs over.
type Source interface {
	ListTasks(ctx context.Context, filter task.ListFilter) ([]task.Task, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	ListDepartments(ctx context.Context) ([]department.Department, error)
}

// Reconstruct runs the full pipeline. Identical inputs always produce an
// identical ordered output.
func Reconstruct(s Snapshot, q Query, opts Options) []Entry {
	return Collapse(Filter(Extract(s, opts), q), opts)
}
