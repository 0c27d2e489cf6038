// Package testbus runs a real EventBus in tests and records what was
// published on it.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/taskdesk/internal/core/eventbus"
)

// Bus is a started EventBus plus a log of published events.
type Bus struct {
	*eventbus.EventBus

	mu      sync.Mutex
	log     map[eventbus.Event][]any
	changed chan struct{}
}

// New starts a bus that is stopped by t.Cleanup.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{
		EventBus: eventbus.New(64),
		log:      map[eventbus.Event][]any{},
		changed:  make(chan struct{}),
	}
	tb.OnPublish(tb.record)

	ctx, cancel := context.WithCancel(context.Background())
	go tb.Start(ctx)
	t.Cleanup(cancel)

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	tb.log[event] = append(tb.log[event], payload)
	close(tb.changed)
	tb.changed = make(chan struct{})
	tb.mu.Unlock()
}

// Of returns the payloads published for event, oldest first.
func (tb *Bus) Of(event eventbus.Event) []any {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return append([]any(nil), tb.log[event]...)
}

// Reset forgets everything recorded so far.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	clear(tb.log)
	tb.mu.Unlock()
}

// WaitFor reports whether event is recorded before timeout elapses.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		tb.mu.Lock()
		seen := len(tb.log[event]) > 0
		changed := tb.changed
		tb.mu.Unlock()
		if seen {
			return true
		}

		select {
		case <-changed:
		case <-deadline.C:
			return false
		}
	}
}

// AssertPublished fails t unless event shows up within half a second.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	assert.True(t, tb.WaitFor(event, 500*time.Millisecond), "event %q was not published", event)
}

// AssertNotPublished fails t if event shows up within wait.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	assert.False(t, tb.WaitFor(event, wait), "event %q was published", event)
}
