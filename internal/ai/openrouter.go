package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultOpenRouterURL is the OpenAI-compatible chat completions base URL
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouterCompleter calls an OpenAI-compatible chat completions endpoint
type OpenRouterCompleter struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

var _ Completer = (*OpenRouterCompleter)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenRouterCompleter creates an OpenRouter completer
func NewOpenRouterCompleter(cfg Config) *OpenRouterCompleter {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}
	model := cfg.Model
	if model == "" {
		model = ModelOpenRouter
	}

	return &OpenRouterCompleter{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
	}
}

// Complete posts a single-message chat completion and returns the first choice
func (c *OpenRouterCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	startTime := time.Now()

	payload, err := json.Marshal(chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter API call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read openrouter response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter API returned status %d: %s", resp.StatusCode, truncate(string(body), 500))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode openrouter response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openrouter error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}

	slog.Debug("AI completion",
		"component", "ai",
		"provider", ProviderOpenRouter,
		"model", c.model,
		"duration", time.Since(startTime))

	return parsed.Choices[0].Message.Content, nil
}
