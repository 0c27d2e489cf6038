package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus delivers published events to subscribers on a single dispatch
// goroutine started by Start. Publishing never blocks: when the buffer is
// full the event is dropped and OnDrop hooks fire.
//
// A nil *EventBus accepts publishes and discards them.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}
