package eventbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_TypedRoundTrip(t *testing.T) {
	bus := New(8)

	var got []ParagraphResolvedPayload
	bus.SubscribeParagraphResolved(func(p ParagraphResolvedPayload) {
		got = append(got, p)
	})

	bus.PublishParagraphResolved(ParagraphResolvedPayload{SessionID: "s1", ParagraphID: "p1"})
	bus.PublishParagraphResolved(ParagraphResolvedPayload{SessionID: "s1", ParagraphID: "p2"})
	bus.Drain()

	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ParagraphID)
	assert.Equal(t, "p2", got[1].ParagraphID, "delivery must preserve publish order")
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := New(1)

	var dropped []Event
	bus.OnDrop(func(e Event, _ any) { dropped = append(dropped, e) })

	bus.PublishCorrectionProgress(CorrectionProgressPayload{Processed: 1})
	bus.PublishCorrectionProgress(CorrectionProgressPayload{Processed: 2})

	require.Len(t, dropped, 1)
	assert.Equal(t, EventCorrectionProgress, dropped[0])
}

func TestEventBus_OnPublishHook(t *testing.T) {
	bus := New(8)

	var mu sync.Mutex
	var fired []Event
	bus.OnPublish(func(e Event, _ any) {
		mu.Lock()
		fired = append(fired, e)
		mu.Unlock()
	})

	bus.PublishSessionCreated(SessionCreatedPayload{SessionID: "s1"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fired, 1)
	assert.Equal(t, EventSessionCreated, fired[0])
}

func TestEventBus_SubscriberPanicIsContained(t *testing.T) {
	bus := New(8)

	var recovered any
	bus.OnPanic(func(_ Event, _ any, r any) { recovered = r })

	bus.SubscribeParagraphErrored(func(ParagraphErroredPayload) {
		panic("render sink exploded")
	})

	var delivered bool
	bus.SubscribeParagraphErrored(func(ParagraphErroredPayload) {
		delivered = true
	})

	bus.PublishParagraphErrored(ParagraphErroredPayload{ParagraphID: "p1"})
	assert.NotPanics(t, bus.Drain)

	assert.Equal(t, "render sink exploded", recovered)
	assert.True(t, delivered, "a panicking subscriber must not starve later subscribers")
}
