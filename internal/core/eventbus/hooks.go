package eventbus

import "sync"

// hookList is a copy-on-read list of callbacks.
type hookList[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (h *hookList[F]) add(fn F) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *hookList[F]) snapshot() []F {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]F(nil), h.fns...)
}

type hooks struct {
	publish   hookList[func(Event, any)]
	drop      hookList[func(Event, any)]
	subscribe hookList[func(Event)]
	panics    hookList[func(Event, any, any)]
}

// OnPublish adds a hook called after an event is queued.
func (bus *EventBus) OnPublish(fn func(Event, any)) { bus.hooks.publish.add(fn) }

// OnDrop adds a hook called when an event is discarded because the buffer
// is full.
func (bus *EventBus) OnDrop(fn func(Event, any)) { bus.hooks.drop.add(fn) }

// OnSubscribe adds a hook called after each new subscription.
func (bus *EventBus) OnSubscribe(fn func(Event)) { bus.hooks.subscribe.add(fn) }

// OnPanic adds a hook called with the recovered value when a subscriber
// panics. Panics inside the hook itself are swallowed.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) { bus.hooks.panics.add(fn) }

// send queues an event without blocking. Used by the typed Publish methods.
func (bus *EventBus) send(event Event, payload any) {
	if bus == nil {
		return
	}

	fired := &bus.hooks.publish
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
	default:
		fired = &bus.hooks.drop
	}
	for _, fn := range fired.snapshot() {
		fn(event, payload)
	}
}

func (bus *EventBus) runOnSubscribe(event Event) {
	for _, fn := range bus.hooks.subscribe.snapshot() {
		fn(event)
	}
}

func (bus *EventBus) runOnPanic(event Event, payload any, recovered any) {
	for _, fn := range bus.hooks.panics.snapshot() {
		func() {
			defer func() { _ = recover() }()
			fn(event, payload, recovered)
		}()
	}
}
