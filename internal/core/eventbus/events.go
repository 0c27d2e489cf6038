// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within taskdesk.
package eventbus

import (
	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

// Event names a bus topic.
type Event string

const (
	// Keep list sorted A-Z
	EventDepartmentSaved       Event = "department.saved"
	EventNotificationPublished Event = "notification.published"
	EventReplyAdded            Event = "reply.added"
	EventTaskApproved          Event = "task.approved"
	EventTaskCreated           Event = "task.created"
	EventTaskDeleted           Event = "task.deleted"
	EventTaskReopened          Event = "task.reopened"
	EventTaskUpdated           Event = "task.updated"
	EventUserSaved             Event = "user.saved"
)

// Events lists every event the bus carries.
var Events = []Event{
	EventDepartmentSaved,
	EventNotificationPublished,
	EventReplyAdded,
	EventTaskApproved,
	EventTaskCreated,
	EventTaskDeleted,
	EventTaskReopened,
	EventTaskUpdated,
	EventUserSaved,
}

// TaskCreatedPayload is emitted when a director creates a task.
type TaskCreatedPayload struct {
	Task task.Task
}

// TaskUpdatedPayload is emitted when the assignee posts a progress update.
type TaskUpdatedPayload struct {
	Task   task.Task
	Update task.Update
}

// TaskApprovedPayload is emitted when an approval stage is granted.
type TaskApprovedPayload struct {
	Task  task.Task
	Stage task.Stage
	Actor user.Ref
}

// TaskReopenedPayload is emitted when an approved task is reopened.
type TaskReopenedPayload struct {
	Task   task.Task
	Update task.Update
}

// TaskDeletedPayload is emitted when a task is hard-deleted.
type TaskDeletedPayload struct {
	TaskID string
}

// ReplyAddedPayload is emitted when someone replies to an update.
type ReplyAddedPayload struct {
	Task     task.Task
	UpdateID string
	Reply    task.Reply
}

// UserSavedPayload is emitted when a user is created, edited or blocked.
type UserSavedPayload struct {
	User    user.User
	Created bool
}

// DepartmentSavedPayload is emitted when a department is created, edited or
// blocked.
type DepartmentSavedPayload struct {
	Department department.Department
	Created    bool
}

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// NotificationPublishedPayload is a user-facing message for one recipient.
type NotificationPublishedPayload struct {
	Recipient user.Ref
	Level     Level
	Message   string
}
