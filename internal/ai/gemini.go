package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiCompleter calls the Gemini API through the generative-ai-go client
type GeminiCompleter struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

var _ Completer = (*GeminiCompleter)(nil)

// NewGeminiCompleter creates a Gemini-backed completer
func NewGeminiCompleter(ctx context.Context, cfg Config) (*GeminiCompleter, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = ModelGemini
	}

	model := client.GenerativeModel(name)
	model.SetTemperature(0)

	return &GeminiCompleter{client: client, model: model, name: name}, nil
}

// Complete generates content for prompt and returns the text parts of the first candidate
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	startTime := time.Now()
	if maxTokens > 0 {
		g.model.SetMaxOutputTokens(int32(maxTokens))
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no response candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	slog.Debug("AI completion",
		"component", "ai",
		"provider", ProviderGemini,
		"model", g.name,
		"duration", time.Since(startTime))

	return text.String(), nil
}

// Close releases the underlying client
func (g *GeminiCompleter) Close() error {
	return g.client.Close()
}
