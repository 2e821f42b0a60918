package provider

import "context"

// Static is a deterministic, offline provider. It corrects text by exact
// lookup in a rule table and otherwise returns the input unchanged. Used
// for dry runs and tests.
type Static struct {
	rules map[string]string
}

// NewStatic creates a rule-table provider. A nil table yields the identity
// provider.
func NewStatic(rules map[string]string) *Static {
	return &Static{rules: rules}
}

// Correct returns the rule replacement for text, or text itself when no
// rule matches. It never fails and reports no usage.
func (s *Static) Correct(_ context.Context, text string) (Result, error) {
	if corrected, ok := s.rules[text]; ok {
		return Result{CorrectedText: corrected}, nil
	}
	return Result{CorrectedText: text}, nil
}
