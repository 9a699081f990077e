package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ClientConfig configures the langchaingo-backed producer. BaseURL lets the
// same client talk to any OpenAI-compatible gateway.
type ClientConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// Client is a Producer backed by an OpenAI-compatible chat endpoint.
type Client struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

// NewClient creates a producer against the configured endpoint.
func NewClient(cfg ClientConfig) (*Client, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &Client{model: model, temperature: cfg.Temperature, maxTokens: maxTokens}, nil
}

// Interpret sends the command (plus selected context) to the model and
// decodes the first JSON object in the completion. The result is untyped by
// design; no validation happens here.
func (c *Client) Interpret(ctx context.Context, command, contextBlock string) (map[string]any, error) {
	prompt := buildPrompt(command, contextBlock)

	completion, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("generating interpretation: %w", err)
	}

	raw, err := extractJSON(completion)
	if err != nil {
		return nil, fmt.Errorf("model returned no JSON object: %w", err)
	}
	return raw, nil
}

func buildPrompt(command, contextBlock string) string {
	var b strings.Builder
	b.WriteString("Interpret the user's music command as a single JSON object with an \"intent\" field, ")
	b.WriteString("a confidence between 0 and 1, and a short reasoning. Respond with JSON only.\n\n")
	if contextBlock != "" {
		b.WriteString(contextBlock)
		b.WriteString("\n")
	}
	b.WriteString("Command: ")
	b.WriteString(command)
	return b.String()
}

// extractJSON pulls the first top-level JSON object out of a completion that
// may be wrapped in code fences or prose.
func extractJSON(s string) (map[string]any, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no object delimiters in %d bytes", len(s))
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &out); err != nil {
		return nil, err
	}
	return out, nil
}
