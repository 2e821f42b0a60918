// Package track keeps every paragraph's recorded position truthful after a
// paragraph's displayed content changes length.
//
// The cascade must visit paragraphs in ascending document order and never
// skip one: each paragraph's position depends on every earlier delta having
// already been applied.
package track

import "github.com/redlinehq/redline/internal/core/paragraph"

// Cascade shifts every paragraph after index by lineDelta and rederives its
// range from its current content. The paragraph at index itself is assumed
// to be rederived already (MarkPending and MarkRejected do this).
func Cascade(doc *paragraph.Document, index, lineDelta int) {
	if lineDelta == 0 {
		return
	}
	ps := doc.Paragraphs()
	for j := index + 1; j < len(ps); j++ {
		ps[j].ShiftLines(lineDelta)
		ps[j].Rederive()
	}
}

// Reflow recomputes positions after the paragraph at index transitioned
// between original and corrected content. oldLineCount is the line count of
// the content the buffer showed before the transition.
func Reflow(doc *paragraph.Document, index, oldLineCount int) {
	p := doc.Paragraphs()[index]
	p.Rederive()
	Cascade(doc, index, p.LineCount()-oldLineCount)
}

// Accumulator carries the running line-delta across a single left-to-right
// bulk pass. Bulk operations must shift each paragraph by the accumulated
// delta rather than re-reading its stale stored range: the stored range of
// a later paragraph does not yet reflect earlier replacements in the pass.
type Accumulator struct {
	delta int
}

// Shift applies the accumulated delta to the paragraph's recorded position.
// Call exactly once per paragraph, in ascending document order, before
// using the paragraph's range.
func (a *Accumulator) Shift(p *paragraph.Paragraph) {
	if a.delta != 0 {
		p.ShiftLines(a.delta)
	}
}

// Add records the line-delta produced by replacing a paragraph's content
// (new line count minus old line count).
func (a *Accumulator) Add(delta int) {
	a.delta += delta
}

// Delta returns the accumulated line-delta.
func (a *Accumulator) Delta() int {
	return a.delta
}

// WellOrdered reports whether the document's paragraph ranges are pairwise
// non-overlapping and monotonically increasing in document order.
func WellOrdered(doc *paragraph.Document) bool {
	ps := doc.Paragraphs()
	for i := 1; i < len(ps); i++ {
		prev, cur := ps[i-1], ps[i]
		if prev.EndLine >= cur.StartLine {
			return false
		}
		if prev.Range.Overlaps(cur.Range) {
			return false
		}
	}
	return true
}
