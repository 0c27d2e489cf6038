package eventbus

// PublishTaskCreated publishes EventTaskCreated.
func (bus *EventBus) PublishTaskCreated(p TaskCreatedPayload) { bus.send(EventTaskCreated, p) }

// SubscribeTaskCreated registers fn for EventTaskCreated.
func (bus *EventBus) SubscribeTaskCreated(fn func(TaskCreatedPayload)) {
	bus.subscribe(EventTaskCreated, func(v any) { fn(v.(TaskCreatedPayload)) })
}

// PublishTaskUpdated publishes EventTaskUpdated.
func (bus *EventBus) PublishTaskUpdated(p TaskUpdatedPayload) { bus.send(EventTaskUpdated, p) }

// SubscribeTaskUpdated registers fn for EventTaskUpdated.
func (bus *EventBus) SubscribeTaskUpdated(fn func(TaskUpdatedPayload)) {
	bus.subscribe(EventTaskUpdated, func(v any) { fn(v.(TaskUpdatedPayload)) })
}

// PublishTaskApproved publishes EventTaskApproved.
func (bus *EventBus) PublishTaskApproved(p TaskApprovedPayload) { bus.send(EventTaskApproved, p) }

// SubscribeTaskApproved registers fn for EventTaskApproved.
func (bus *EventBus) SubscribeTaskApproved(fn func(TaskApprovedPayload)) {
	bus.subscribe(EventTaskApproved, func(v any) { fn(v.(TaskApprovedPayload)) })
}

// PublishTaskReopened publishes EventTaskReopened.
func (bus *EventBus) PublishTaskReopened(p TaskReopenedPayload) { bus.send(EventTaskReopened, p) }

// SubscribeTaskReopened registers fn for EventTaskReopened.
func (bus *EventBus) SubscribeTaskReopened(fn func(TaskReopenedPayload)) {
	bus.subscribe(EventTaskReopened, func(v any) { fn(v.(TaskReopenedPayload)) })
}

// PublishTaskDeleted publishes EventTaskDeleted.
func (bus *EventBus) PublishTaskDeleted(p TaskDeletedPayload) { bus.send(EventTaskDeleted, p) }

// SubscribeTaskDeleted registers fn for EventTaskDeleted.
func (bus *EventBus) SubscribeTaskDeleted(fn func(TaskDeletedPayload)) {
	bus.subscribe(EventTaskDeleted, func(v any) { fn(v.(TaskDeletedPayload)) })
}

// PublishReplyAdded publishes EventReplyAdded.
func (bus *EventBus) PublishReplyAdded(p ReplyAddedPayload) { bus.send(EventReplyAdded, p) }

// SubscribeReplyAdded registers fn for EventReplyAdded.
func (bus *EventBus) SubscribeReplyAdded(fn func(ReplyAddedPayload)) {
	bus.subscribe(EventReplyAdded, func(v any) { fn(v.(ReplyAddedPayload)) })
}

// PublishUserSaved publishes EventUserSaved.
func (bus *EventBus) PublishUserSaved(p UserSavedPayload) { bus.send(EventUserSaved, p) }

// SubscribeUserSaved registers fn for EventUserSaved.
func (bus *EventBus) SubscribeUserSaved(fn func(UserSavedPayload)) {
	bus.subscribe(EventUserSaved, func(v any) { fn(v.(UserSavedPayload)) })
}

// PublishDepartmentSaved publishes EventDepartmentSaved.
func (bus *EventBus) PublishDepartmentSaved(p DepartmentSavedPayload) {
	bus.send(EventDepartmentSaved, p)
}

// SubscribeDepartmentSaved registers fn for EventDepartmentSaved.
func (bus *EventBus) SubscribeDepartmentSaved(fn func(DepartmentSavedPayload)) {
	bus.subscribe(EventDepartmentSaved, func(v any) { fn(v.(DepartmentSavedPayload)) })
}

// PublishNotificationPublished publishes EventNotificationPublished.
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

// SubscribeNotificationPublished registers fn for EventNotificationPublished.
func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(v any) { fn(v.(NotificationPublishedPayload)) })
}
