// Package textpos defines line/column positions and ranges within a text
// buffer, and the line-counting helpers the correction engine uses to keep
// paragraph ranges truthful as content changes length.
package textpos

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position is a location in a buffer. Line is 0-indexed; Column is
// 0-indexed and measured in Unicode code points from the start of the line.
type Position struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Line != other.Line {
		if p.Line < other.Line {
			return -1
		}
		return 1
	}
	if p.Column != other.Column {
		if p.Column < other.Column {
			return -1
		}
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// Range is a span of buffer content. Start is inclusive; End is exclusive,
// pointing one past the last code point of the content on its line.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a Range from start and end positions.
func NewRange(start, end Position) Range {
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s-%s)", r.Start, r.End)
}

// IsValid returns true if Start <= End.
func (r Range) IsValid() bool {
	return r.Start.Compare(r.End) <= 0
}

// Overlaps returns true if the two ranges share any position.
// Touching ranges (one ends exactly where the other starts) do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Compare(other.End) < 0 && other.Start.Compare(r.End) < 0
}

// ShiftLines returns the range moved down (or up, for negative delta)
// by the given number of lines. Columns are unchanged.
func (r Range) ShiftLines(delta int) Range {
	return Range{
		Start: Position{Line: r.Start.Line + delta, Column: r.Start.Column},
		End:   Position{Line: r.End.Line + delta, Column: r.End.Column},
	}
}

// LineCount returns the number of lines content occupies when placed in a
// buffer. The empty string occupies one (empty) line.
func LineCount(content string) int {
	return strings.Count(content, "\n") + 1
}

// RangeOf returns the range content occupies when it starts at column 0 of
// startLine. The end column is the code-point length of the last line.
func RangeOf(startLine int, content string) Range {
	lastStart := strings.LastIndexByte(content, '\n') + 1
	lastLen := utf8.RuneCountInString(content[lastStart:])
	return Range{
		Start: Position{Line: startLine, Column: 0},
		End:   Position{Line: startLine + LineCount(content) - 1, Column: lastLen},
	}
}
