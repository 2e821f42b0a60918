package paragraph

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a paragraph id is unknown to the document.
var ErrNotFound = errors.New("paragraph not found")

// Document owns a document's paragraphs in ascending line order, plus the
// pre-correction snapshot used for whole-document inspection. Paragraphs
// are stored in an arena slice and addressed by id through an index.
type Document struct {
	// OriginalContent is the document text captured at segmentation time,
	// before any correction touched the buffer.
	OriginalContent string
	// TrailingEmptyLines counts blank lines after the last paragraph.
	TrailingEmptyLines int

	paragraphs []*Paragraph
	index      map[string]int
}

// NewDocument creates an empty document with the given snapshot.
func NewDocument(snapshot string) *Document {
	return &Document{
		OriginalContent: snapshot,
		index:           make(map[string]int),
	}
}

// Append adds a paragraph after all existing ones. The caller guarantees
// ascending StartLine order; Append is used by segmentation, which produces
// pieces in document order.
func (d *Document) Append(p *Paragraph) {
	d.index[p.ID] = len(d.paragraphs)
	d.paragraphs = append(d.paragraphs, p)
}

// Insert places a paragraph at its document-order position by StartLine.
// Used for synthetic selection paragraphs.
func (d *Document) Insert(p *Paragraph) {
	at := len(d.paragraphs)
	for i, existing := range d.paragraphs {
		if existing.StartLine > p.StartLine {
			at = i
			break
		}
	}
	d.paragraphs = append(d.paragraphs, nil)
	copy(d.paragraphs[at+1:], d.paragraphs[at:])
	d.paragraphs[at] = p
	d.reindex()
}

// ByID returns the paragraph with the given id.
func (d *Document) ByID(id string) (*Paragraph, error) {
	i, ok := d.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d.paragraphs[i], nil
}

// IndexOf returns the document-order position of the paragraph.
func (d *Document) IndexOf(id string) (int, error) {
	i, ok := d.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return i, nil
}

// Paragraphs returns the paragraphs in document order. The slice is shared;
// callers must not reorder it.
func (d *Document) Paragraphs() []*Paragraph {
	return d.paragraphs
}

// Len returns the number of paragraphs.
func (d *Document) Len() int {
	return len(d.paragraphs)
}

// Pending returns the paragraphs awaiting accept/reject, in document order.
func (d *Document) Pending() []*Paragraph {
	var out []*Paragraph
	for _, p := range d.paragraphs {
		if p.Status == StatusPending {
			out = append(out, p)
		}
	}
	return out
}

// OverlapsActive reports whether the line span [startLine, endLine]
// intersects a paragraph that is mid-flight or awaiting resolution.
func (d *Document) OverlapsActive(startLine, endLine int) bool {
	for _, p := range d.paragraphs {
		if p.Status != StatusProcessing && p.Status != StatusPending {
			continue
		}
		if startLine <= p.EndLine && p.StartLine <= endLine {
			return true
		}
	}
	return false
}

func (d *Document) reindex() {
	for i, p := range d.paragraphs {
		d.index[p.ID] = i
	}
}
