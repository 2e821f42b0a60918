// Package provider defines the correction provider boundary and its
// implementations. The engine only sees the Provider interface; any failure
// from a provider maps to a paragraph-scoped Error state upstream.
package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/redlinehq/redline/internal/core/config"
)

// Usage reports token consumption for one provider call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Result is one correction response. Usage is nil when the provider does
// not report token counts.
type Result struct {
	CorrectedText string
	Usage         *Usage
}

// Provider corrects a single paragraph of text.
type Provider interface {
	Correct(ctx context.Context, text string) (Result, error)
}

// New builds a provider from configuration.
func New(cfg config.ProviderConfig) (Provider, error) {
	switch cfg.Kind {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("environment variable %s is not set", cfg.APIKeyEnv)
		}
		return NewOpenAI(cfg, apiKey), nil
	case config.ProviderStatic:
		return NewStatic(cfg.Rules), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}
