package eventbus

import (
	"fmt"

	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

// NotificationRouter maps lifecycle events to per-recipient notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeTaskCreated(func(p TaskCreatedPayload) {
		r.notifyf(p.Task.AssignedTo, LevelInfo, "new task assigned: %q", p.Task.Title)
	})

	r.bus.SubscribeTaskUpdated(func(p TaskUpdatedPayload) {
		level := LevelInfo
		if p.Update.Status == task.StatusBlocked {
			level = LevelWarning
		}
		if p.Update.PreviousStatus == p.Update.Status {
			return
		}
		r.notifyf(p.Task.AssignedBy, level, "%s moved %q to %s",
			name(p.Update.UpdatedBy), p.Task.Title, p.Update.Status)
	})

	r.bus.SubscribeTaskApproved(func(p TaskApprovedPayload) {
		r.notifyf(p.Task.AssignedTo, LevelInfo, "%q approved by %s (%s)",
			p.Task.Title, name(p.Actor), p.Stage)
		if p.Stage == task.StageHOD {
			r.notifyf(p.Task.AssignedBy, LevelInfo, "%q is awaiting director approval", p.Task.Title)
		}
	})

	r.bus.SubscribeTaskReopened(func(p TaskReopenedPayload) {
		r.notifyf(p.Task.AssignedTo, LevelWarning, "%q was reopened: %s", p.Task.Title, p.Update.Remarks)
	})

	r.bus.SubscribeReplyAdded(func(p ReplyAddedPayload) {
		t := p.Task
		u, ok := t.FindUpdate(p.UpdateID)
		if !ok || u.UpdatedBy.ID == p.Reply.RepliedBy.ID {
			return
		}
		r.notifyf(u.UpdatedBy, LevelInfo, "%s replied on %q", name(p.Reply.RepliedBy), p.Task.Title)
	})
}

func (r *NotificationRouter) notifyf(to user.Ref, level Level, format string, args ...any) {
	if to.ID == "" {
		return
	}
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Recipient: to,
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
	})
}

func name(r user.Ref) string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
