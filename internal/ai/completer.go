// Package ai provides language-model completion providers and resilient
// parsing of their replies.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Model constants per provider.
const (
	// ModelSonnet is the default Anthropic model
	ModelSonnet = "claude-sonnet-4-5-20250929"

	// ModelHaiku is the cost-efficient Anthropic model
	ModelHaiku = "claude-3-5-haiku-20241022"

	// ModelGemini is the default Gemini model
	ModelGemini = "gemini-1.5-flash"

	// ModelOpenRouter is the default OpenRouter model
	ModelOpenRouter = "openai/gpt-4o-mini"
)

// Provider names accepted by NewCompleter.
const (
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// ErrNoAPIKey is returned when a provider is configured without credentials
var ErrNoAPIKey = errors.New("AI API key not set")

// Completer produces a text completion for a single prompt.
// Implementations make exactly one request per call: no streaming, no retries.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Config selects and configures a completion provider
type Config struct {
	Provider string        // anthropic (default), gemini or openrouter
	APIKey   string        // required
	Model    string        // provider default when empty
	BaseURL  string        // optional endpoint override
	Timeout  time.Duration // per-request timeout, 0 = provider default
}

// DefaultModel returns the default model for a provider
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return ModelGemini
	case ProviderOpenRouter:
		return ModelOpenRouter
	default:
		return ModelSonnet
	}
}

// NewCompleter creates the completer for cfg.Provider.
// The returned value may implement io.Closer; use Close to release it.
func NewCompleter(ctx context.Context, cfg Config) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderAnthropic
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", provider, ErrNoAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(provider)
	}

	switch provider {
	case ProviderAnthropic:
		return NewAnthropicCompleter(cfg), nil
	case ProviderGemini:
		return NewGeminiCompleter(ctx, cfg)
	case ProviderOpenRouter:
		return NewOpenRouterCompleter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
}

// Close releases c if it holds resources
func Close(c Completer) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
