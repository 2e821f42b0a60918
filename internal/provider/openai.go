package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/redlinehq/redline/internal/core/config"
	"github.com/redlinehq/redline/internal/core/logging"
)

// defaultSystemPrompt instructs the model to return only the corrected
// text. Paragraphs are corrected independently, so no document context is
// sent.
const defaultSystemPrompt = `You are a copy editor. Correct spelling, grammar, and punctuation in the text the user sends. Preserve the author's meaning, tone, formatting, and line breaks. Reply with the corrected text only, no commentary, no quotes, no code fences.`

// OpenAI corrects text through an OpenAI-compatible chat completion API.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	system      string
	log         zerolog.Logger
}

// NewOpenAI creates a client for the configured model. cfg.BaseURL may
// point at any OpenAI-compatible server.
func NewOpenAI(cfg config.ProviderConfig, apiKey string) *OpenAI {
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	system := cfg.SystemPrompt
	if system == "" {
		system = defaultSystemPrompt
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		system:      system,
		log:         logging.Component("provider.openai"),
	}
}

// Correct sends one paragraph for correction and returns the model's text
// with token usage.
func (o *OpenAI) Correct(ctx context.Context, text string) (Result, error) {
	o.log.Debug().Ctx(ctx).Str("model", o.model).Int("chars", len(text)).Msg("correction request")

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("chat completion returned no choices")
	}

	corrected := stripFences(resp.Choices[0].Message.Content)

	return Result{
		CorrectedText: corrected,
		Usage: &Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// stripFences removes a surrounding markdown code fence if the model added
// one despite the instructions.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return s
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
