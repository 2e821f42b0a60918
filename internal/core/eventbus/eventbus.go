// Package eventbus provides a typed publish/subscribe event bus carrying
// the correction engine's render and progress events. The engine publishes;
// render sinks subscribe. The engine never depends on a concrete renderer.
package eventbus

import (
	"context"
	"sync"
)

// Event names one event type on the bus.
type Event string

// All event types, sorted A-Z.
const (
	EventCorrectionProgress Event = "correction.progress"
	EventCorrectionUsage    Event = "correction.usage"
	EventParagraphErrored   Event = "paragraph.errored"
	EventParagraphPending   Event = "paragraph.pending"
	EventParagraphResolved  Event = "paragraph.resolved"
	EventSessionClosed      Event = "session.closed"
	EventSessionCreated     Event = "session.created"
)

// envelope pairs an event with its payload for the dispatch channel.
type envelope struct {
	event   Event
	payload any
}

// EventBus is a buffered, typed publish/subscribe bus. Publishing never
// blocks: when the buffer is full the event is dropped and the OnDrop hooks
// fire. Subscribers run sequentially on the Run goroutine, so a subscriber
// observes events in publish order.
type EventBus struct {
	ch    chan envelope
	mu    sync.RWMutex
	subs  map[Event][]func(any)
	hooks hooks
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Run dispatches events to subscribers until ctx is cancelled. Call it in
// its own goroutine.
func (bus *EventBus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

// Drain synchronously dispatches everything currently buffered. Intended
// for single-goroutine callers (CLI, tests) that want deterministic
// delivery without running the bus in the background.
func (bus *EventBus) Drain() {
	for {
		select {
		case env := <-bus.ch:
			bus.dispatch(env)
		default:
			return
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

// send enqueues an event and fires hooks. Used by the typed Publish methods.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		bus.runOnPublish(event, payload)
	default:
		bus.runOnDrop(event, payload)
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
}
