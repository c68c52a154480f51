package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicCompleter calls the Anthropic Messages API
type AnthropicCompleter struct {
	client *anthropic.Client
	model  string
}

var _ Completer = (*AnthropicCompleter)(nil)

// NewAnthropicCompleter creates a completer backed by the Anthropic SDK.
// SDK-level retries are disabled: every call is attempted exactly once.
func NewAnthropicCompleter(cfg Config) *AnthropicCompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := cfg.Model
	if model == "" {
		model = ModelSonnet
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicCompleter{client: &client, model: model}
}

// Complete sends prompt as a single user message and returns the concatenated text blocks
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	startTime := time.Now()
	if maxTokens == 0 {
		maxTokens = 4096
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	slog.Debug("AI completion",
		"component", "ai",
		"provider", ProviderAnthropic,
		"model", c.model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration", time.Since(startTime))

	return text.String(), nil
}
