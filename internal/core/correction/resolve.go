package correction

import (
	"fmt"

	"github.com/redlinehq/redline/internal/core/eventbus"
	"github.com/redlinehq/redline/internal/core/oplock"
	"github.com/redlinehq/redline/internal/core/paragraph"
	"github.com/redlinehq/redline/internal/core/track"
)

func (s *Session) resolveKey(paragraphID string) oplock.Key {
	return oplock.Key{DocumentID: s.documentID, Kind: oplock.KindResolve, ParagraphID: paragraphID}
}

func (s *Session) bulkKey() oplock.Key {
	return oplock.Key{DocumentID: s.documentID, Kind: oplock.KindBulkResolve}
}

// Accept finalizes a pending correction: the buffer already shows the
// corrected text, so only the status changes. Returns ErrBusy when the
// paragraph or a bulk operation is mid-flight, and the state-machine guard
// error when the paragraph is not pending (a stale or duplicate trigger).
func (s *Session) Accept(paragraphID string) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	if s.locks.Held(s.bulkKey()) {
		return ErrBusy
	}
	key := s.resolveKey(paragraphID)
	if !s.locks.TryAcquire(key) {
		return ErrBusy
	}
	defer s.locks.Release(key)

	p, err := s.doc.ByID(paragraphID)
	if err != nil {
		return err
	}
	if err := p.MarkAccepted(); err != nil {
		return err
	}

	s.log.Debug().Str("paragraph_id", paragraphID).Msg("correction accepted")
	s.publishResolved(p)
	return nil
}

// Reject restores a pending paragraph's original text in the buffer and
// re-derives every later paragraph's position. A failed buffer edit leaves
// the paragraph pending and all position state untouched.
func (s *Session) Reject(paragraphID string) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	if s.locks.Held(s.bulkKey()) {
		return ErrBusy
	}
	key := s.resolveKey(paragraphID)
	if !s.locks.TryAcquire(key) {
		return ErrBusy
	}
	defer s.locks.Release(key)

	p, err := s.doc.ByID(paragraphID)
	if err != nil {
		return err
	}
	if !p.CanResolve() {
		return fmt.Errorf("%w: %s", paragraph.ErrNotPending, p.Status)
	}
	index, err := s.doc.IndexOf(paragraphID)
	if err != nil {
		return err
	}

	if err := s.applier.Apply(p.Range, p.Original); err != nil {
		return fmt.Errorf("restore original text: %w", err)
	}

	oldLines := p.LineCount()
	if err := p.MarkRejected(); err != nil {
		return err
	}
	track.Reflow(s.doc, index, oldLines)

	s.log.Debug().Str("paragraph_id", paragraphID).Msg("correction rejected")
	s.publishResolved(p)
	return nil
}

// Dismiss absorbs a NoCorrection or Error paragraph into Rejected. No
// buffer mutation happens: neither state ever changed the buffer.
func (s *Session) Dismiss(paragraphID string) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	if s.locks.Held(s.bulkKey()) {
		return ErrBusy
	}
	key := s.resolveKey(paragraphID)
	if !s.locks.TryAcquire(key) {
		return ErrBusy
	}
	defer s.locks.Release(key)

	p, err := s.doc.ByID(paragraphID)
	if err != nil {
		return err
	}
	if err := p.Dismiss(); err != nil {
		return err
	}

	s.publishResolved(p)
	return nil
}

// AcceptAll finalizes every pending paragraph. The buffer already shows
// corrected text everywhere, so no content changes length and no position
// work is needed. Paragraphs with an individual action in flight are
// skipped. Returns the number of paragraphs accepted.
func (s *Session) AcceptAll() (int, error) {
	if s.doc == nil {
		return 0, ErrNoDocument
	}
	key := s.bulkKey()
	if !s.locks.TryAcquire(key) {
		return 0, ErrBusy
	}
	defer s.locks.Release(key)

	count := 0
	for _, p := range s.doc.Paragraphs() {
		if p.Status != paragraph.StatusPending {
			continue
		}
		if s.locks.Held(s.resolveKey(p.ID)) {
			continue
		}
		if err := p.MarkAccepted(); err != nil {
			continue
		}
		s.publishResolved(p)
		count++
	}

	s.log.Info().Int("accepted", count).Msg("accept-all finished")
	return count, nil
}

// RejectAll restores every pending paragraph's original text in one
// left-to-right pass. A running accumulator carries the cumulative
// line-delta: each paragraph's true buffer range is its stored range
// shifted by the deltas of every earlier replacement in this pass. Using
// the stale stored range instead would corrupt every later position.
//
// This is deliberately not a whole-document snapshot revert: paragraphs
// already accepted individually keep their corrected text.
func (s *Session) RejectAll() (int, error) {
	if s.doc == nil {
		return 0, ErrNoDocument
	}
	key := s.bulkKey()
	if !s.locks.TryAcquire(key) {
		return 0, ErrBusy
	}
	defer s.locks.Release(key)

	var acc track.Accumulator
	count := 0
	for _, p := range s.doc.Paragraphs() {
		acc.Shift(p)
		p.Rederive()

		if p.Status != paragraph.StatusPending {
			continue
		}
		if s.locks.Held(s.resolveKey(p.ID)) {
			continue
		}

		if err := s.applier.Apply(p.Range, p.Original); err != nil {
			// Paragraph-scoped failure: it stays pending at its current
			// position and the pass continues.
			s.log.Warn().Err(err).Str("paragraph_id", p.ID).Msg("reject-all buffer edit failed")
			continue
		}

		oldLines := p.LineCount()
		if err := p.MarkRejected(); err != nil {
			continue
		}
		acc.Add(p.LineCount() - oldLines)
		s.publishResolved(p)
		count++
	}

	s.log.Info().Int("rejected", count).Msg("reject-all finished")
	return count, nil
}

func (s *Session) publishResolved(p *paragraph.Paragraph) {
	s.bus.PublishParagraphResolved(eventbus.ParagraphResolvedPayload{
		SessionID:   s.id,
		DocumentID:  s.documentID,
		ParagraphID: p.ID,
		Status:      p.Status,
	})
}
