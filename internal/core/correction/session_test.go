package correction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redlinehq/redline/internal/core/buffer"
	"github.com/redlinehq/redline/internal/core/eventbus"
	"github.com/redlinehq/redline/internal/core/eventbus/testbus"
	"github.com/redlinehq/redline/internal/core/oplock"
	"github.com/redlinehq/redline/internal/core/paragraph"
	"github.com/redlinehq/redline/internal/core/textpos"
	"github.com/redlinehq/redline/internal/core/track"
	"github.com/redlinehq/redline/internal/provider"
)

// funcProvider adapts a function to the provider interface, so tests can
// fail calls or re-enter the session mid-call.
type funcProvider func(ctx context.Context, text string) (provider.Result, error)

func (f funcProvider) Correct(ctx context.Context, text string) (provider.Result, error) {
	return f(ctx, text)
}

// ruleProvider corrects by lookup and reports fixed usage per call.
func ruleProvider(rules map[string]string) funcProvider {
	return func(_ context.Context, text string) (provider.Result, error) {
		corrected, ok := rules[text]
		if !ok {
			corrected = text
		}
		return provider.Result{
			CorrectedText: corrected,
			Usage:         &provider.Usage{InputTokens: 10, OutputTokens: 7},
		}, nil
	}
}

func newTestSession(t *testing.T, text string, prov provider.Provider) (*Session, *buffer.Buffer, *eventbus.EventBus) {
	t.Helper()
	buf := buffer.New(text)
	bus := eventbus.New(256)
	s := NewSession("doc-1", buf, prov, bus, oplock.New())
	return s, buf, bus
}

func correctAll(t *testing.T, s *Session, text string) {
	t.Helper()
	require.NoError(t, s.CorrectDocument(context.Background(), text, nil))
}

func TestCorrectDocument_AppliesCorrectionsAndShiftsPositions(t *testing.T) {
	text := "hello world\n\nfoo bar"
	s, buf, bus := newTestSession(t, text, ruleProvider(map[string]string{
		"hello world": "hello  world\nextra line",
	}))

	var pending []eventbus.ParagraphPendingPayload
	bus.SubscribeParagraphPending(func(p eventbus.ParagraphPendingPayload) { pending = append(pending, p) })

	correctAll(t, s, text)
	bus.Drain()

	assert.Equal(t, "hello  world\nextra line\n\nfoo bar", buf.Text())

	doc := s.Document()
	require.Equal(t, 2, doc.Len())

	p1 := doc.Paragraphs()[0]
	assert.Equal(t, paragraph.StatusPending, p1.Status)
	assert.Equal(t, 0, p1.StartLine)
	assert.Equal(t, 1, p1.EndLine)

	p2 := doc.Paragraphs()[1]
	assert.Equal(t, paragraph.StatusNoCorrection, p2.Status)
	assert.Equal(t, 3, p2.StartLine, "paragraph 2 must shift down by exactly 1")
	assert.Equal(t, textpos.Position{Line: 3, Column: 7}, p2.Range.End)

	assert.True(t, track.WellOrdered(doc))

	require.Len(t, pending, 1)
	assert.Equal(t, p1.ID, pending[0].ParagraphID)
	assert.Equal(t, "hello world", pending[0].Original)
	assert.NotEmpty(t, pending[0].Ops)
}

func TestCorrectDocument_EmitsProgressAndUsage(t *testing.T) {
	text := "a\n\nb\n\nc"
	s, _, bus := newTestSession(t, text, ruleProvider(map[string]string{"a": "A"}))

	var progress []eventbus.CorrectionProgressPayload
	var usage []eventbus.CorrectionUsagePayload
	bus.SubscribeCorrectionProgress(func(p eventbus.CorrectionProgressPayload) { progress = append(progress, p) })
	bus.SubscribeCorrectionUsage(func(p eventbus.CorrectionUsagePayload) { usage = append(usage, p) })

	correctAll(t, s, text)
	bus.Drain()

	require.Len(t, progress, 3)
	assert.Equal(t, eventbus.CorrectionProgressPayload{SessionID: s.ID(), Processed: 3, Total: 3}, progress[2])

	assert.Len(t, usage, 3)
	assert.Equal(t, Totals{Calls: 3, InputTokens: 30, OutputTokens: 21}, s.Totals())
}

func TestCorrectDocument_ProviderFailureIsNotFatal(t *testing.T) {
	text := "bad\n\ngood"
	s, buf, bus := newTestSession(t, text, funcProvider(func(_ context.Context, text string) (provider.Result, error) {
		if text == "bad" {
			return provider.Result{}, errors.New("network down")
		}
		return provider.Result{CorrectedText: "good!"}, nil
	}))

	var errored []eventbus.ParagraphErroredPayload
	bus.SubscribeParagraphErrored(func(p eventbus.ParagraphErroredPayload) { errored = append(errored, p) })

	correctAll(t, s, text)
	bus.Drain()

	doc := s.Document()
	p1, p2 := doc.Paragraphs()[0], doc.Paragraphs()[1]

	assert.Equal(t, paragraph.StatusError, p1.Status)
	assert.Equal(t, "network down", p1.Err)
	assert.Equal(t, paragraph.StatusPending, p2.Status, "the session must continue past a failed paragraph")
	assert.Equal(t, "bad\n\ngood!", buf.Text(), "a failed paragraph's buffer text is untouched")

	require.Len(t, errored, 1)
	assert.Equal(t, p1.ID, errored[0].ParagraphID)

	// The error stays visible until explicitly dismissed.
	require.NoError(t, s.Dismiss(p1.ID))
	assert.Equal(t, paragraph.StatusRejected, p1.Status)
}

func TestCorrectDocument_Cancellation(t *testing.T) {
	text := "a\n\nb\n\nc"
	calls := 0
	s, buf, bus := newTestSession(t, text, funcProvider(func(_ context.Context, text string) (provider.Result, error) {
		calls++
		return provider.Result{CorrectedText: text + "!"}, nil
	}))

	var progress []eventbus.CorrectionProgressPayload
	bus.SubscribeCorrectionProgress(func(p eventbus.CorrectionProgressPayload) { progress = append(progress, p) })

	// Cancel while the second paragraph's provider call is in flight.
	isCancelled := func() bool { return calls >= 2 }

	require.NoError(t, s.CorrectDocument(context.Background(), text, isCancelled))
	bus.Drain()

	assert.Equal(t, 2, calls, "no further provider calls after cancellation")
	assert.Equal(t, "a!\n\nb\n\nc", buf.Text(),
		"applied paragraphs stay, the result that raced the cancel is discarded")

	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.True(t, last.Cancelled)
	assert.Equal(t, 1, last.Processed)
	assert.Equal(t, 3, last.Total)
}

func TestCorrectDocument_BufferFailureIsParagraphScoped(t *testing.T) {
	text := "first\n\nsecond"
	buf := buffer.New(text)
	failing := &failingApplier{inner: buf, failOn: 0}
	bus := eventbus.New(256)
	s := NewSession("doc-1", failing, ruleProvider(map[string]string{
		"first":  "first fixed",
		"second": "second fixed",
	}), bus, oplock.New())

	require.NoError(t, s.CorrectDocument(context.Background(), text, nil))

	doc := s.Document()
	p1, p2 := doc.Paragraphs()[0], doc.Paragraphs()[1]

	assert.Equal(t, paragraph.StatusError, p1.Status)
	assert.Equal(t, 0, p1.StartLine, "position state for a failed edit is untouched")
	assert.Equal(t, paragraph.StatusPending, p2.Status)
	assert.Equal(t, "first\n\nsecond fixed", buf.Text())
	assert.True(t, track.WellOrdered(doc))
}

// failingApplier fails the Nth Apply call (0-indexed) and delegates the rest.
type failingApplier struct {
	inner  *buffer.Buffer
	failOn int
	calls  int
}

func (f *failingApplier) Apply(r textpos.Range, replacement string) error {
	defer func() { f.calls++ }()
	if f.calls == f.failOn {
		return errors.New("edit rejected")
	}
	return f.inner.Apply(r, replacement)
}

func TestCorrectDocument_BusyWhileRunning(t *testing.T) {
	text := "only paragraph"
	var s *Session
	var reentrant error
	prov := funcProvider(func(ctx context.Context, text string) (provider.Result, error) {
		// Simulate a selection correction racing the full-document
		// workflow at its suspension point.
		_, reentrant = s.CorrectSelection(ctx, "only paragraph", 0, nil)
		return provider.Result{CorrectedText: text}, nil
	})

	buf := buffer.New(text)
	bus := eventbus.New(256)
	s = NewSession("doc-1", buf, prov, bus, oplock.New())

	require.NoError(t, s.CorrectDocument(context.Background(), text, nil))
	assert.ErrorIs(t, reentrant, ErrBusy)
}

func TestCorrectSelection_InsertsInDocumentOrder(t *testing.T) {
	text := "alpha\n\nbeta\ngamma"
	s, buf, _ := newTestSession(t, text, ruleProvider(map[string]string{
		"beta\ngamma": "betta gamma",
	}))

	betaID, err := s.CorrectSelection(context.Background(), "beta\ngamma", 2, nil)
	require.NoError(t, err)
	require.NoError(t, s.Accept(betaID))
	require.Equal(t, "alpha\n\nbetta gamma", buf.Text())

	alphaID, err := s.CorrectSelection(context.Background(), "alpha", 0, nil)
	require.NoError(t, err)

	p, err := s.Document().ByID(alphaID)
	require.NoError(t, err)
	assert.Equal(t, paragraph.StatusNoCorrection, p.Status, "identity result never touches the buffer")

	i, err := s.Document().IndexOf(alphaID)
	require.NoError(t, err)
	assert.Equal(t, 0, i, "a later selection above an earlier one sorts first")
}

func TestCorrectSelection_RejectsOverlapWithActiveParagraph(t *testing.T) {
	text := "hello wrld\n\nother"
	s, _, _ := newTestSession(t, text, ruleProvider(map[string]string{
		"hello wrld": "hello world",
	}))
	correctAll(t, s, text)
	require.Equal(t, paragraph.StatusPending, s.Document().Paragraphs()[0].Status)

	_, err := s.CorrectSelection(context.Background(), "hello", 0, nil)
	assert.ErrorIs(t, err, ErrOverlap)
}

func TestCorrectSelection_AppliesCorrection(t *testing.T) {
	text := "one\n\ntypo here"
	s, buf, _ := newTestSession(t, text, ruleProvider(map[string]string{
		"typo here": "typos here\nand there",
	}))

	id, err := s.CorrectSelection(context.Background(), "typo here", 2, nil)
	require.NoError(t, err)

	assert.Equal(t, "one\n\ntypos here\nand there", buf.Text())

	p, err := s.Document().ByID(id)
	require.NoError(t, err)
	assert.Equal(t, paragraph.StatusPending, p.Status)
	assert.Equal(t, 2, p.StartLine)
	assert.Equal(t, 3, p.EndLine)

	require.NoError(t, s.Reject(id))
	assert.Equal(t, text, buf.Text())
}

func TestAcceptReject_MutualExclusion(t *testing.T) {
	text := "fix me"
	s, _, _ := newTestSession(t, text, ruleProvider(map[string]string{"fix me": "fixed"}))
	correctAll(t, s, text)

	id := s.Document().Paragraphs()[0].ID

	require.NoError(t, s.Accept(id))
	assert.ErrorIs(t, s.Reject(id), paragraph.ErrNotPending, "a second resolution must be a no-op")
	assert.ErrorIs(t, s.Accept(id), paragraph.ErrNotPending)
	assert.Equal(t, paragraph.StatusAccepted, s.Document().Paragraphs()[0].Status)
}

func TestAcceptReject_ConcurrentRace(t *testing.T) {
	for range 50 {
		text := "fix me"
		s, buf, _ := newTestSession(t, text, ruleProvider(map[string]string{"fix me": "fixed"}))
		correctAll(t, s, text)
		id := s.Document().Paragraphs()[0].ID

		var wg sync.WaitGroup
		results := make([]error, 2)
		wg.Add(2)
		go func() { defer wg.Done(); results[0] = s.Accept(id) }()
		go func() { defer wg.Done(); results[1] = s.Reject(id) }()
		wg.Wait()

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
			} else {
				require.True(t,
					errors.Is(err, ErrBusy) || errors.Is(err, paragraph.ErrNotPending),
					"loser must observe the lock or a terminal status, got: %v", err)
			}
		}
		assert.Equal(t, 1, succeeded, "exactly one resolution may win")

		p := s.Document().Paragraphs()[0]
		switch p.Status {
		case paragraph.StatusAccepted:
			assert.Equal(t, "fixed", buf.Text())
		case paragraph.StatusRejected:
			assert.Equal(t, "fix me", buf.Text())
		default:
			t.Fatalf("paragraph left in non-terminal status %s", p.Status)
		}
	}
}

func TestSessionEventsReachRunningBus(t *testing.T) {
	tb := testbus.New(t)
	text := "teh quick fox"
	buf := buffer.New(text)
	s := NewSession("doc-1", buf, ruleProvider(map[string]string{
		"teh quick fox": "the quick fox",
	}), tb.EventBus, oplock.New())

	require.NoError(t, s.CorrectDocument(context.Background(), text, nil))
	tb.AssertPublished(t, eventbus.EventParagraphPending)
	tb.AssertPublished(t, eventbus.EventCorrectionProgress)
	tb.AssertPublished(t, eventbus.EventCorrectionUsage)
	tb.AssertNotPublished(t, eventbus.EventParagraphErrored, 50*time.Millisecond)

	_, err := s.AcceptAll()
	require.NoError(t, err)
	tb.AssertPublished(t, eventbus.EventParagraphResolved)
}

func TestReject_RestoresBufferAndCascade(t *testing.T) {
	text := "grow me\n\nanchor"
	s, buf, bus := newTestSession(t, text, ruleProvider(map[string]string{
		"grow me": "grow me\nand me\nand me",
	}))

	var resolved []eventbus.ParagraphResolvedPayload
	bus.SubscribeParagraphResolved(func(p eventbus.ParagraphResolvedPayload) { resolved = append(resolved, p) })

	correctAll(t, s, text)
	require.Equal(t, 4, s.Document().Paragraphs()[1].StartLine)

	id := s.Document().Paragraphs()[0].ID
	require.NoError(t, s.Reject(id))
	bus.Drain()

	assert.Equal(t, text, buf.Text())
	assert.Equal(t, 2, s.Document().Paragraphs()[1].StartLine)
	assert.True(t, track.WellOrdered(s.Document()))

	require.Len(t, resolved, 1)
	assert.Equal(t, paragraph.StatusRejected, resolved[0].Status)
}
