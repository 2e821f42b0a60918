package correction

import (
	"github.com/redlinehq/redline/internal/core/config"
	"github.com/redlinehq/redline/internal/provider"
)

// Totals accumulates provider token usage across a session.
type Totals struct {
	Calls        int
	InputTokens  int
	OutputTokens int
}

// Add records one provider call's usage.
func (t *Totals) Add(u provider.Usage) {
	t.Calls++
	t.InputTokens += u.InputTokens
	t.OutputTokens += u.OutputTokens
}

// Cost prices the totals with the given per-1K-token rates.
func (t Totals) Cost(p config.PricingConfig) float64 {
	return float64(t.InputTokens)/1000*p.InputPer1K + float64(t.OutputTokens)/1000*p.OutputPer1K
}
