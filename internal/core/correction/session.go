// Package correction orchestrates the document correction workflows: it
// segments a document, drives the provider paragraph by paragraph, applies
// results to the live buffer, keeps paragraph positions truthful, and owns
// the accept/reject lifecycle.
package correction

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/redlinehq/redline/internal/core/chardiff"
	"github.com/redlinehq/redline/internal/core/eventbus"
	"github.com/redlinehq/redline/internal/core/logging"
	"github.com/redlinehq/redline/internal/core/oplock"
	"github.com/redlinehq/redline/internal/core/paragraph"
	"github.com/redlinehq/redline/internal/core/segment"
	"github.com/redlinehq/redline/internal/core/textpos"
	"github.com/redlinehq/redline/internal/core/track"
	"github.com/redlinehq/redline/internal/provider"
	"github.com/redlinehq/redline/pkg/randid"
)

// Applier is the buffer-apply boundary: the one way the engine mutates the
// live document text. A failed edit is a paragraph-scoped failure; the
// engine must leave position state for other paragraphs intact.
type Applier interface {
	Apply(r textpos.Range, replacement string) error
}

// Session owns one document's correction state: its paragraph arena,
// ranges, usage totals, and event bus. All session logic runs on the
// caller's goroutine; the operation locks reject conflicting concurrent
// actions instead of queueing them.
type Session struct {
	id         string
	documentID string
	doc        *paragraph.Document

	applier  Applier
	provider provider.Provider
	locks    *oplock.Locker
	bus      *eventbus.EventBus
	log      zerolog.Logger

	totals Totals
}

// NewSession creates a session for the given document identity. The bus is
// owned by the session and is torn down with it.
func NewSession(documentID string, applier Applier, prov provider.Provider, bus *eventbus.EventBus, locks *oplock.Locker) *Session {
	return &Session{
		id:         uuid.NewString(),
		documentID: documentID,
		applier:    applier,
		provider:   prov,
		locks:      locks,
		bus:        bus,
		log:        logging.Component("correction").With().Str("document_id", documentID).Logger(),
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// DocumentID returns the document identity this session serves.
func (s *Session) DocumentID() string { return s.documentID }

// Document returns the session's paragraph arena, or nil before the first
// correction workflow runs.
func (s *Session) Document() *paragraph.Document { return s.doc }

// Events returns the session's event bus for render sinks to subscribe to.
func (s *Session) Events() *eventbus.EventBus { return s.bus }

// Totals returns the accumulated provider usage for this session.
func (s *Session) Totals() Totals { return s.totals }

// CorrectDocument runs the full-document workflow: segment text once, then
// visit every paragraph strictly in ascending document order. A paragraph
// failure is recorded and the walk continues. Cancellation is observed at
// three checkpoints per paragraph and stops scheduling further paragraphs
// without rolling back applied ones; it is not an error.
func (s *Session) CorrectDocument(ctx context.Context, text string, isCancelled func() bool) error {
	key := oplock.Key{DocumentID: s.documentID, Kind: oplock.KindCorrect}
	if !s.locks.TryAcquire(key) {
		return ErrBusy
	}
	defer s.locks.Release(key)

	if isCancelled == nil {
		isCancelled = func() bool { return false }
	}
	ctx = logging.WithSessionID(ctx, s.id)
	ctx = logging.WithDocumentID(ctx, s.documentID)

	res := segment.Split(text)
	doc := paragraph.NewDocument(segment.Normalize(text))
	for _, piece := range res.Pieces {
		doc.Append(paragraph.New(randid.Generate(6), piece.Content, piece.StartLine, piece.TrailingEmptyLines))
	}
	doc.TrailingEmptyLines = res.TrailingEmptyLines
	s.doc = doc

	total := doc.Len()
	s.log.Info().Int("paragraphs", total).Msg("document correction started")

	for i, p := range doc.Paragraphs() {
		if stopped := s.correctOne(ctx, i, p, isCancelled); stopped {
			s.log.Info().Int("processed", i).Int("total", total).Msg("document correction cancelled")
			s.publishProgress(i, total, true)
			return nil
		}
		s.publishProgress(i+1, total, false)
	}

	s.log.Info().Int("total", total).Msg("document correction finished")
	return nil
}

// CorrectSelection runs the selection workflow: the selection becomes one
// synthetic paragraph inserted at its document-order position, sharing the
// full-document lifecycle, locks, and position cascade. Selections that
// collide with an active paragraph are rejected.
func (s *Session) CorrectSelection(ctx context.Context, selection string, startLine int, isCancelled func() bool) (string, error) {
	key := oplock.Key{DocumentID: s.documentID, Kind: oplock.KindCorrect}
	if !s.locks.TryAcquire(key) {
		return "", ErrBusy
	}
	defer s.locks.Release(key)

	if isCancelled == nil {
		isCancelled = func() bool { return false }
	}
	ctx = logging.WithSessionID(ctx, s.id)
	ctx = logging.WithDocumentID(ctx, s.documentID)

	if s.doc == nil {
		s.doc = paragraph.NewDocument("")
	}

	endLine := startLine + textpos.LineCount(selection) - 1
	if s.doc.OverlapsActive(startLine, endLine) {
		return "", ErrOverlap
	}

	p := paragraph.New(randid.Generate(6), selection, startLine, 0)
	s.doc.Insert(p)

	index, err := s.doc.IndexOf(p.ID)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("paragraph_id", p.ID).Int("start_line", startLine).Msg("selection correction started")
	stopped := s.correctOne(ctx, index, p, isCancelled)
	s.publishProgress(1, 1, stopped)
	return p.ID, nil
}

// correctOne drives a single paragraph through the provider and, on a
// changed result, into the buffer. It returns true when cancellation was
// observed; the paragraph is then left untouched in the buffer.
func (s *Session) correctOne(ctx context.Context, index int, p *paragraph.Paragraph, isCancelled func() bool) bool {
	// Checkpoint one: before the provider call.
	if isCancelled() {
		return true
	}

	res, err := s.provider.Correct(ctx, p.Original)

	// Checkpoint two: after the provider call returns. A result that
	// arrives after cancellation is discarded, never applied.
	if isCancelled() {
		return true
	}

	if err != nil {
		s.log.Warn().Err(err).Str("paragraph_id", p.ID).Msg("provider call failed")
		s.markErrored(p, err.Error())
		return false
	}

	if res.Usage != nil {
		s.totals.Add(*res.Usage)
		s.bus.PublishCorrectionUsage(eventbus.CorrectionUsagePayload{
			SessionID:    s.id,
			ParagraphID:  p.ID,
			InputTokens:  res.Usage.InputTokens,
			OutputTokens: res.Usage.OutputTokens,
		})
	}

	if res.CorrectedText == p.Original {
		// Guarded transition; a stale duplicate trigger is ignored.
		if err := p.MarkNoCorrection(); err != nil {
			s.log.Debug().Err(err).Str("paragraph_id", p.ID).Msg("stale no-correction transition")
		}
		return false
	}

	// Checkpoint three: immediately before the buffer edit, so a
	// cancelled run can never half-apply a paragraph.
	if isCancelled() {
		return true
	}

	if err := s.applier.Apply(p.Range, res.CorrectedText); err != nil {
		s.log.Warn().Err(err).Str("paragraph_id", p.ID).Msg("buffer edit failed")
		s.markErrored(p, err.Error())
		return false
	}

	oldLines := p.LineCount()
	if err := p.MarkPending(res.CorrectedText); err != nil {
		s.log.Debug().Err(err).Str("paragraph_id", p.ID).Msg("stale pending transition")
		return false
	}
	track.Reflow(s.doc, index, oldLines)

	s.bus.PublishParagraphPending(eventbus.ParagraphPendingPayload{
		SessionID:   s.id,
		DocumentID:  s.documentID,
		ParagraphID: p.ID,
		Range:       p.Range,
		Original:    p.Original,
		Corrected:   p.Corrected,
		Ops:         chardiff.Diff(p.Original, p.Corrected),
	})
	return false
}

func (s *Session) markErrored(p *paragraph.Paragraph, msg string) {
	if err := p.MarkError(msg); err != nil {
		s.log.Debug().Err(err).Str("paragraph_id", p.ID).Msg("stale error transition")
		return
	}
	s.bus.PublishParagraphErrored(eventbus.ParagraphErroredPayload{
		SessionID:   s.id,
		DocumentID:  s.documentID,
		ParagraphID: p.ID,
		Err:         msg,
	})
}

func (s *Session) publishProgress(processed, total int, cancelled bool) {
	s.bus.PublishCorrectionProgress(eventbus.CorrectionProgressPayload{
		SessionID: s.id,
		Processed: processed,
		Total:     total,
		Cancelled: cancelled,
	})
}
