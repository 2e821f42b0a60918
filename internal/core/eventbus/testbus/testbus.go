// Package testbus provides test utilities for the event bus.
// It wraps a real EventBus with event recording and assertion helpers.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redlinehq/redline/internal/core/eventbus"
)

// RecordedEvent holds a captured event name and payload.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus wraps a real EventBus with event recording for tests.
type Bus struct {
	*eventbus.EventBus

	mu     sync.Mutex
	events []RecordedEvent
}

// New creates a test bus, starts it in a background goroutine, and
// subscribes to all event types for recording. The bus is stopped
// when the test completes.
func New(t *testing.T) *Bus {
	t.Helper()

	bus := eventbus.New(256)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	tb := &Bus{EventBus: bus}

	bus.SubscribeParagraphPending(func(p eventbus.ParagraphPendingPayload) {
		tb.record(eventbus.EventParagraphPending, p)
	})
	bus.SubscribeParagraphResolved(func(p eventbus.ParagraphResolvedPayload) {
		tb.record(eventbus.EventParagraphResolved, p)
	})
	bus.SubscribeParagraphErrored(func(p eventbus.ParagraphErroredPayload) {
		tb.record(eventbus.EventParagraphErrored, p)
	})
	bus.SubscribeCorrectionProgress(func(p eventbus.CorrectionProgressPayload) {
		tb.record(eventbus.EventCorrectionProgress, p)
	})
	bus.SubscribeCorrectionUsage(func(p eventbus.CorrectionUsagePayload) {
		tb.record(eventbus.EventCorrectionUsage, p)
	})
	bus.SubscribeSessionCreated(func(p eventbus.SessionCreatedPayload) {
		tb.record(eventbus.EventSessionCreated, p)
	})
	bus.SubscribeSessionClosed(func(p eventbus.SessionClosedPayload) {
		tb.record(eventbus.EventSessionClosed, p)
	})

	go bus.Run(ctx)

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = append(tb.events, RecordedEvent{Event: event, Payload: payload})
}

// Events returns a copy of all recorded events.
func (tb *Bus) Events() []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	out := make([]RecordedEvent, len(tb.events))
	copy(out, tb.events)
	return out
}

// OfType returns the recorded events matching the given type, in order.
func (tb *Bus) OfType(event eventbus.Event) []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	var out []RecordedEvent
	for _, e := range tb.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears all recorded events.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = nil
}

// WaitFor blocks until an event of the given type is recorded or the timeout expires.
// Returns true if the event was found.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.After(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return false
		case <-ticker.C:
			if tb.has(event) {
				return true
			}
		}
	}
}

func (tb *Bus) has(event eventbus.Event) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for _, e := range tb.events {
		if e.Event == event {
			return true
		}
	}
	return false
}

// AssertPublished asserts that an event of the given type was recorded.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if !tb.WaitFor(event, 500*time.Millisecond) {
		t.Errorf("expected event %q to be published, but it was not", event)
	}
}

// AssertNotPublished asserts that an event of the given type was NOT recorded
// within the given wait period.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	time.Sleep(wait)
	if tb.has(event) {
		t.Errorf("expected event %q to NOT be published, but it was", event)
	}
}
