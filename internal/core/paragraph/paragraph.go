// Package paragraph defines the per-paragraph correction state and the
// per-document paragraph arena.
package paragraph

import (
	"errors"
	"fmt"

	"github.com/redlinehq/redline/internal/core/textpos"
)

// Status is the lifecycle state of a paragraph's correction.
type Status string

const (
	// StatusProcessing means the provider call is in flight (or queued).
	StatusProcessing Status = "processing"
	// StatusPending means the provider returned a different text and the
	// buffer already shows it; the user has not yet accepted or rejected.
	StatusPending Status = "pending"
	// StatusAccepted is terminal: the correction stays in the buffer.
	StatusAccepted Status = "accepted"
	// StatusRejected is terminal: the buffer shows the original text again.
	StatusRejected Status = "rejected"
	// StatusNoCorrection means the provider returned identical text; the
	// buffer was never touched.
	StatusNoCorrection Status = "no-correction"
	// StatusError means the provider call failed; the buffer was never
	// touched for this paragraph.
	StatusError Status = "error"
)

// Transition guard errors. Callers treat these as "stale trigger, ignore".
var (
	ErrNotPending     = errors.New("paragraph is not pending")
	ErrNotDismissible = errors.New("paragraph is not dismissible")
	ErrNotProcessing  = errors.New("paragraph is not processing")
)

// Paragraph is one unit of correction. Original is immutable after
// creation. StartLine/EndLine and Range always describe the content the
// buffer currently shows for this paragraph: Corrected while Pending or
// Accepted, Original otherwise.
type Paragraph struct {
	ID        string
	Original  string
	Corrected string

	StartLine int
	EndLine   int
	Range     textpos.Range

	Status             Status
	TrailingEmptyLines int
	Err                string
}

// New creates a paragraph positioned at startLine with the given content,
// in the Processing state.
func New(id, content string, startLine, trailingEmptyLines int) *Paragraph {
	p := &Paragraph{
		ID:                 id,
		Original:           content,
		Status:             StatusProcessing,
		StartLine:          startLine,
		TrailingEmptyLines: trailingEmptyLines,
	}
	p.Rederive()
	return p
}

// Displayed returns the content the buffer currently shows for this
// paragraph.
func (p *Paragraph) Displayed() string {
	if p.Status == StatusPending || p.Status == StatusAccepted {
		return p.Corrected
	}
	return p.Original
}

// LineCount returns the number of lines the displayed content occupies.
func (p *Paragraph) LineCount() int {
	return textpos.LineCount(p.Displayed())
}

// Rederive recomputes EndLine and Range from StartLine and the displayed
// content. Call after StartLine or the displayed content changes.
func (p *Paragraph) Rederive() {
	content := p.Displayed()
	p.EndLine = p.StartLine + textpos.LineCount(content) - 1
	p.Range = textpos.RangeOf(p.StartLine, content)
}

// ShiftLines moves the paragraph's recorded position by delta lines without
// touching its content.
func (p *Paragraph) ShiftLines(delta int) {
	p.StartLine += delta
	p.EndLine += delta
	p.Range = p.Range.ShiftLines(delta)
}

// CanResolve reports whether the paragraph is eligible for interactive
// accept or reject.
func (p *Paragraph) CanResolve() bool {
	return p.Status == StatusPending
}

// MarkPending records the corrected text the buffer now shows. Valid only
// from Processing.
func (p *Paragraph) MarkPending(corrected string) error {
	if p.Status != StatusProcessing {
		return fmt.Errorf("%w: %s", ErrNotProcessing, p.Status)
	}
	p.Corrected = corrected
	p.Status = StatusPending
	p.Rederive()
	return nil
}

// MarkNoCorrection records that the provider returned identical text.
// Valid only from Processing.
func (p *Paragraph) MarkNoCorrection() error {
	if p.Status != StatusProcessing {
		return fmt.Errorf("%w: %s", ErrNotProcessing, p.Status)
	}
	p.Status = StatusNoCorrection
	return nil
}

// MarkError records a provider or buffer failure. Valid only from
// Processing.
func (p *Paragraph) MarkError(msg string) error {
	if p.Status != StatusProcessing {
		return fmt.Errorf("%w: %s", ErrNotProcessing, p.Status)
	}
	p.Status = StatusError
	p.Err = msg
	return nil
}

// MarkAccepted finalizes the correction. Valid only from Pending. The
// buffer already shows the corrected text, so no content changes.
func (p *Paragraph) MarkAccepted() error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: %s", ErrNotPending, p.Status)
	}
	p.Status = StatusAccepted
	return nil
}

// MarkRejected finalizes the rejection. Valid only from Pending. The caller
// must have already rewritten the buffer back to Original; this clears the
// corrected text and rederives the range from Original.
func (p *Paragraph) MarkRejected() error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: %s", ErrNotPending, p.Status)
	}
	p.Status = StatusRejected
	p.Corrected = ""
	p.Rederive()
	return nil
}

// Dismiss absorbs a NoCorrection or Error paragraph into Rejected. No
// buffer mutation is needed: neither state ever changed the buffer.
func (p *Paragraph) Dismiss() error {
	if p.Status != StatusNoCorrection && p.Status != StatusError {
		return fmt.Errorf("%w: %s", ErrNotDismissible, p.Status)
	}
	p.Status = StatusRejected
	return nil
}
