// Package config handles configuration loading and validation for redline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Provider kinds accepted by the `provider.kind` key.
const (
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
)

// Config holds the application configuration.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Engine   EngineConfig   `yaml:"engine"`
}

// ProviderConfig selects and configures the correction provider.
type ProviderConfig struct {
	// Kind is "openai" or "static".
	Kind string `yaml:"kind"`
	// Model is the chat model name, e.g. "gpt-4o-mini".
	Model string `yaml:"model"`
	// BaseURL overrides the API endpoint for OpenAI-compatible servers.
	BaseURL string `yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
	// Temperature for the chat completion call.
	Temperature float32 `yaml:"temperature"`
	// SystemPrompt overrides the built-in correction instruction.
	SystemPrompt string `yaml:"system_prompt"`
	// Rules maps original to corrected text for the static provider.
	Rules map[string]string `yaml:"rules"`
}

// PricingConfig prices provider token usage for the cost summary. Rates are
// per 1,000 tokens. Zero rates disable the summary.
type PricingConfig struct {
	InputPer1K  float64 `yaml:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k"`
	Currency    string  `yaml:"currency"`
}

// EngineConfig tunes the correction engine.
type EngineConfig struct {
	// EventBuffer is the event bus channel capacity.
	EventBuffer int `yaml:"event_buffer"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{
			Kind:      ProviderOpenAI,
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Pricing: PricingConfig{Currency: "USD"},
		Engine:  EngineConfig{EventBuffer: 256},
	}
}

// Load reads the config file at configPath, falling back to defaults when
// the file does not exist. An empty path always yields defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills zero values that Unmarshal may have cleared.
func (c *Config) applyDefaults() {
	if c.Provider.Kind == "" {
		c.Provider.Kind = ProviderOpenAI
	}
	if c.Provider.Model == "" {
		c.Provider.Model = "gpt-4o-mini"
	}
	if c.Provider.APIKeyEnv == "" {
		c.Provider.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Pricing.Currency == "" {
		c.Pricing.Currency = "USD"
	}
	if c.Engine.EventBuffer <= 0 {
		c.Engine.EventBuffer = 256
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderOpenAI, ProviderStatic:
	default:
		return fmt.Errorf("provider.kind must be %q or %q, got %q", ProviderOpenAI, ProviderStatic, c.Provider.Kind)
	}

	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return fmt.Errorf("provider.temperature must be in [0, 2], got %v", c.Provider.Temperature)
	}

	if c.Pricing.InputPer1K < 0 || c.Pricing.OutputPer1K < 0 {
		return fmt.Errorf("pricing rates must not be negative")
	}

	return nil
}
