package eventbus

import (
	"github.com/redlinehq/redline/internal/core/chardiff"
	"github.com/redlinehq/redline/internal/core/paragraph"
	"github.com/redlinehq/redline/internal/core/textpos"
)

// ParagraphPendingPayload is the diff-render record emitted when a
// paragraph enters the Pending state: the buffer already shows the
// corrected text and the user may accept or reject it. It is a derived
// render record, not authoritative state.
type ParagraphPendingPayload struct {
	SessionID   string
	DocumentID  string
	ParagraphID string
	Range       textpos.Range
	Original    string
	Corrected   string
	Ops         []chardiff.Op
}

// ParagraphResolvedPayload revokes a pending render when a paragraph
// reaches a terminal state (accepted or rejected, including dismissals).
type ParagraphResolvedPayload struct {
	SessionID   string
	DocumentID  string
	ParagraphID string
	Status      paragraph.Status
}

// ParagraphErroredPayload is emitted when the provider call or the buffer
// edit for one paragraph fails. The session continues with the next
// paragraph.
type ParagraphErroredPayload struct {
	SessionID   string
	DocumentID  string
	ParagraphID string
	Err         string
}

// CorrectionProgressPayload reports workflow progress. Cancelled marks the
// final event of a cancelled run.
type CorrectionProgressPayload struct {
	SessionID string
	Processed int
	Total     int
	Cancelled bool
}

// CorrectionUsagePayload forwards one provider call's token usage. Pricing
// interpretation is the subscriber's concern.
type CorrectionUsagePayload struct {
	SessionID    string
	ParagraphID  string
	InputTokens  int
	OutputTokens int
}

// SessionCreatedPayload is emitted when a registry creates a session for a
// document identity.
type SessionCreatedPayload struct {
	SessionID  string
	DocumentID string
}

// SessionClosedPayload is emitted when a document is confirmed closed and
// its session discarded.
type SessionClosedPayload struct {
	SessionID  string
	DocumentID string
}

// PublishParagraphPending publishes a paragraph.pending event.
func (bus *EventBus) PublishParagraphPending(p ParagraphPendingPayload) {
	bus.send(EventParagraphPending, p)
}

// SubscribeParagraphPending registers a handler for paragraph.pending.
func (bus *EventBus) SubscribeParagraphPending(fn func(ParagraphPendingPayload)) {
	bus.subscribe(EventParagraphPending, func(v any) { fn(v.(ParagraphPendingPayload)) })
}

// PublishParagraphResolved publishes a paragraph.resolved event.
func (bus *EventBus) PublishParagraphResolved(p ParagraphResolvedPayload) {
	bus.send(EventParagraphResolved, p)
}

// SubscribeParagraphResolved registers a handler for paragraph.resolved.
func (bus *EventBus) SubscribeParagraphResolved(fn func(ParagraphResolvedPayload)) {
	bus.subscribe(EventParagraphResolved, func(v any) { fn(v.(ParagraphResolvedPayload)) })
}

// PublishParagraphErrored publishes a paragraph.errored event.
func (bus *EventBus) PublishParagraphErrored(p ParagraphErroredPayload) {
	bus.send(EventParagraphErrored, p)
}

// SubscribeParagraphErrored registers a handler for paragraph.errored.
func (bus *EventBus) SubscribeParagraphErrored(fn func(ParagraphErroredPayload)) {
	bus.subscribe(EventParagraphErrored, func(v any) { fn(v.(ParagraphErroredPayload)) })
}

// PublishCorrectionProgress publishes a correction.progress event.
func (bus *EventBus) PublishCorrectionProgress(p CorrectionProgressPayload) {
	bus.send(EventCorrectionProgress, p)
}

// SubscribeCorrectionProgress registers a handler for correction.progress.
func (bus *EventBus) SubscribeCorrectionProgress(fn func(CorrectionProgressPayload)) {
	bus.subscribe(EventCorrectionProgress, func(v any) { fn(v.(CorrectionProgressPayload)) })
}

// PublishCorrectionUsage publishes a correction.usage event.
func (bus *EventBus) PublishCorrectionUsage(p CorrectionUsagePayload) {
	bus.send(EventCorrectionUsage, p)
}

// SubscribeCorrectionUsage registers a handler for correction.usage.
func (bus *EventBus) SubscribeCorrectionUsage(fn func(CorrectionUsagePayload)) {
	bus.subscribe(EventCorrectionUsage, func(v any) { fn(v.(CorrectionUsagePayload)) })
}

// PublishSessionCreated publishes a session.created event.
func (bus *EventBus) PublishSessionCreated(p SessionCreatedPayload) {
	bus.send(EventSessionCreated, p)
}

// SubscribeSessionCreated registers a handler for session.created.
func (bus *EventBus) SubscribeSessionCreated(fn func(SessionCreatedPayload)) {
	bus.subscribe(EventSessionCreated, func(v any) { fn(v.(SessionCreatedPayload)) })
}

// PublishSessionClosed publishes a session.closed event.
func (bus *EventBus) PublishSessionClosed(p SessionClosedPayload) {
	bus.send(EventSessionClosed, p)
}

// SubscribeSessionClosed registers a handler for session.closed.
func (bus *EventBus) SubscribeSessionClosed(fn func(SessionClosedPayload)) {
	bus.subscribe(EventSessionClosed, func(v any) { fn(v.(SessionClosedPayload)) })
}
