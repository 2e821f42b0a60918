// Package render turns correction events into styled terminal output. The
// engine publishes events and never imports this package; wiring happens at
// the command layer.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/redlinehq/redline/internal/core/chardiff"
	"github.com/redlinehq/redline/internal/core/correction"
	"github.com/redlinehq/redline/internal/core/eventbus"
)

// Renderer writes styled correction output to a terminal. Styles degrade to
// plain text on non-TTY writers.
type Renderer struct {
	w io.Writer

	insert   lipgloss.Style
	delete   lipgloss.Style
	header   lipgloss.Style
	muted    lipgloss.Style
	errStyle lipgloss.Style
}

// New creates a renderer writing to w.
func New(w io.Writer) *Renderer {
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		w:        w,
		insert:   lr.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
		delete:   lr.NewStyle().Foreground(lipgloss.Color("#f7768e")).Strikethrough(true),
		header:   lr.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Bold(true),
		muted:    lr.NewStyle().Foreground(lipgloss.Color("#565f89")),
		errStyle: lr.NewStyle().Foreground(lipgloss.Color("#f7768e")),
	}
}

// DiffLine renders an edit script inline: deleted runs struck through in
// red, inserted runs in green, unchanged runs as-is.
func (r *Renderer) DiffLine(ops []chardiff.Op) string {
	var b strings.Builder
	for _, op := range ops {
		switch op.Kind {
		case chardiff.KindInsert:
			b.WriteString(r.insert.Render(op.Text))
		case chardiff.KindDelete:
			b.WriteString(r.delete.Render(op.Text))
		default:
			b.WriteString(op.Text)
		}
	}
	return b.String()
}

// Paragraph renders one pending correction: a position header followed by
// the inline diff.
func (r *Renderer) Paragraph(p eventbus.ParagraphPendingPayload) string {
	head := fmt.Sprintf("%s %s", p.ParagraphID, lineSpan(p.Range.Start.Line, p.Range.End.Line))
	return r.header.Render(head) + "\n" + r.DiffLine(p.Ops) + "\n"
}

// Progress renders a one-line progress report.
func (r *Renderer) Progress(p eventbus.CorrectionProgressPayload) string {
	if p.Cancelled {
		return r.muted.Render(fmt.Sprintf("cancelled after %d/%d paragraphs", p.Processed, p.Total))
	}
	return r.muted.Render(fmt.Sprintf("corrected %d/%d paragraphs", p.Processed, p.Total))
}

// Error renders a paragraph failure.
func (r *Renderer) Error(p eventbus.ParagraphErroredPayload) string {
	return r.errStyle.Render(fmt.Sprintf("%s failed: %s", p.ParagraphID, p.Err))
}

// Summary renders session token totals with an optional cost line in the
// configured pricing currency. A zero Totals renders nothing: static
// providers report no usage.
func (r *Renderer) Summary(t correction.Totals, cost float64, currency string) string {
	if t.Calls == 0 {
		return ""
	}
	s := fmt.Sprintf("%d calls, %d in / %d out tokens", t.Calls, t.InputTokens, t.OutputTokens)
	if cost > 0 {
		s += fmt.Sprintf(", %.4f %s", cost, currency)
	}
	return r.muted.Render(s)
}

// Attach subscribes the renderer to a session bus. Pending corrections,
// failures, and progress are written as they are dispatched.
func (r *Renderer) Attach(bus *eventbus.EventBus) {
	bus.SubscribeParagraphPending(func(p eventbus.ParagraphPendingPayload) {
		fmt.Fprintln(r.w, r.Paragraph(p))
	})
	bus.SubscribeParagraphErrored(func(p eventbus.ParagraphErroredPayload) {
		fmt.Fprintln(r.w, r.Error(p))
	})
	bus.SubscribeCorrectionProgress(func(p eventbus.CorrectionProgressPayload) {
		fmt.Fprintln(r.w, r.Progress(p))
	})
}

func lineSpan(start, end int) string {
	// 1-indexed for humans.
	if start == end {
		return fmt.Sprintf("line %d", start+1)
	}
	return fmt.Sprintf("lines %d-%d", start+1, end+1)
}
