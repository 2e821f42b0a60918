// Package buffer provides an in-memory line buffer used as the live text
// the correction engine edits. It implements the engine's buffer-apply
// contract for the CLI and for tests.
package buffer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/redlinehq/redline/internal/core/segment"
	"github.com/redlinehq/redline/internal/core/textpos"
)

// ErrOutOfBounds is returned when a range does not fit the buffer.
var ErrOutOfBounds = errors.New("range out of buffer bounds")

// Buffer holds document text as a slice of lines. Line endings are
// normalized to LF on load. Not safe for concurrent use; the engine
// serializes buffer access through its locks.
type Buffer struct {
	lines []string
}

// New creates a buffer from raw text.
func New(text string) *Buffer {
	return &Buffer{lines: strings.Split(segment.Normalize(text), "\n")}
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	return strings.Join(b.lines, "\n")
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the content of the 0-indexed line.
func (b *Buffer) Line(i int) (string, error) {
	if i < 0 || i >= len(b.lines) {
		return "", fmt.Errorf("%w: line %d of %d", ErrOutOfBounds, i, len(b.lines))
	}
	return b.lines[i], nil
}

// Slice returns the text of the inclusive line span [startLine, endLine].
func (b *Buffer) Slice(startLine, endLine int) (string, error) {
	if startLine < 0 || endLine >= len(b.lines) || startLine > endLine {
		return "", fmt.Errorf("%w: lines %d-%d of %d", ErrOutOfBounds, startLine, endLine, len(b.lines))
	}
	return strings.Join(b.lines[startLine:endLine+1], "\n"), nil
}

// Apply replaces the content of r with replacement. Columns are measured in
// code points. On error the buffer is unchanged.
func (b *Buffer) Apply(r textpos.Range, replacement string) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: inverted range %s", ErrOutOfBounds, r)
	}
	prefix, err := b.lineHead(r.Start)
	if err != nil {
		return err
	}
	suffix, err := b.lineTail(r.End)
	if err != nil {
		return err
	}

	spliced := strings.Split(prefix+replacement+suffix, "\n")

	out := make([]string, 0, r.Start.Line+len(spliced)+len(b.lines)-r.End.Line-1)
	out = append(out, b.lines[:r.Start.Line]...)
	out = append(out, spliced...)
	out = append(out, b.lines[r.End.Line+1:]...)
	b.lines = out
	return nil
}

// lineHead returns the part of p's line before p.Column.
func (b *Buffer) lineHead(p textpos.Position) (string, error) {
	line, err := b.Line(p.Line)
	if err != nil {
		return "", err
	}
	runes := []rune(line)
	if p.Column < 0 || p.Column > len(runes) {
		return "", fmt.Errorf("%w: column %d on line %d", ErrOutOfBounds, p.Column, p.Line)
	}
	return string(runes[:p.Column]), nil
}

// lineTail returns the part of p's line from p.Column on.
func (b *Buffer) lineTail(p textpos.Position) (string, error) {
	line, err := b.Line(p.Line)
	if err != nil {
		return "", err
	}
	runes := []rune(line)
	if p.Column < 0 || p.Column > len(runes) {
		return "", fmt.Errorf("%w: column %d on line %d", ErrOutOfBounds, p.Column, p.Line)
	}
	return string(runes[p.Column:]), nil
}
