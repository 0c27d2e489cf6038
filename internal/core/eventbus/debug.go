package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger registers bus hooks that log all event activity at debug level.
// Uses OnPublish for event firing, OnDrop for buffer-full warnings, and OnPanic
// for subscriber panic reporting.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		evt := logger.Debug().Str("event", string(event))
		if id := taskID(payload); id != "" {
			evt = evt.Str("task_id", id)
		}
		evt.Msg("event fired")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().Str("event", string(event)).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

func taskID(payload any) string {
	switch p := payload.(type) {
	case TaskCreatedPayload:
		return p.Task.ID
	case TaskUpdatedPayload:
		return p.Task.ID
	case TaskApprovedPayload:
		return p.Task.ID
	case TaskReopenedPayload:
		return p.Task.ID
	case TaskDeletedPayload:
		return p.TaskID
	case ReplyAddedPayload:
		return p.Task.ID
	default:
		return ""
	}
}
