package ai

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

var (
	// Fences may or may not carry a language tag or surrounding newlines:
	// ```json\n[...]\n```, ```[...]```, ``` json[...]```
	codeFenceWrappedRegex = regexp.MustCompile("(?s)^`{3}(?:json|javascript|js)?\\s*\\n?(.*?)\\n?`{3}\\s*$")
	codeFenceAnyRegex     = regexp.MustCompile("(?s)`{3}(?:json|javascript|js)?\\s*\\n?(.*?)\\n?`{3}")

	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)

	// Greedy so nested structures are captured whole
	objectRegex = regexp.MustCompile(`(?s)\{.*\}`)
	arrayRegex  = regexp.MustCompile(`(?s)\[.*\]`)
)

// ParseResult is the outcome of a Parse call. Parse never panics; failures
// are reported through Success and Error.
type ParseResult[T any] struct {
	Success      bool
	Data         T
	Error        string
	OriginalText string
}

// ParseOptions configures Parse.
type ParseOptions struct {
	Context      string // prefix for error messages and log lines
	LogErrors    bool
	MaxInputSize int // bytes, 0 = default (10MB)
}

const defaultMaxInputSize = 10 * 1024 * 1024

// Parse decodes JSON out of a model reply.
//
// Strategy sequence:
//  1. Direct JSON parse
//  2. Strip code fences and retry
//  3. Remove trailing commas and retry
//  4. Extract the outermost array/object from mixed content and retry
func Parse[T any](text string, opts ...ParseOptions) ParseResult[T] {
	var options ParseOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.MaxInputSize == 0 {
		options.MaxInputSize = defaultMaxInputSize
	}

	if len(text) > options.MaxInputSize {
		return parseError[T](
			fmt.Sprintf("input exceeds size limit (%d > %d bytes)", len(text), options.MaxInputSize),
			truncate(text, 1000),
			options.Context,
		)
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return parseError[T]("empty input", text, options.Context)
	}

	result, err := tryDirectParse[T](trimmed)
	if err == nil {
		return ParseResult[T]{Success: true, Data: result, OriginalText: text}
	}

	if options.LogErrors {
		slog.Debug("direct JSON parse failed, trying cleanup strategies",
			"component", "ai",
			"error", err.Error(),
			"textPreview", truncate(text, 100),
			"context", options.Context)
	}

	withoutFences := StripCodeFences(trimmed)
	if withoutFences != trimmed {
		if result, err := tryDirectParse[T](withoutFences); err == nil {
			return ParseResult[T]{Success: true, Data: result, OriginalText: text}
		}
	}

	cleaned := strings.TrimSpace(trailingCommaRegex.ReplaceAllString(withoutFences, "$1"))
	if result, err := tryDirectParse[T](cleaned); err == nil {
		return ParseResult[T]{Success: true, Data: result, OriginalText: text}
	}

	if extracted := extractJSON(cleaned); extracted != "" {
		if result, err := tryDirectParse[T](extracted); err == nil {
			return ParseResult[T]{Success: true, Data: result, OriginalText: text}
		}
	}

	if options.LogErrors {
		slog.Warn("all JSON parsing strategies failed",
			"component", "ai",
			"textPreview", truncate(text, 200),
			"context", options.Context)
	}
	return parseError[T]("all JSON parsing strategies failed", text, options.Context)
}

// StripCodeFences removes markdown code fences surrounding a model reply.
// Text without fences is returned trimmed but otherwise unchanged.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	cleaned := codeFenceWrappedRegex.ReplaceAllString(trimmed, "$1")
	if cleaned == trimmed {
		cleaned = codeFenceAnyRegex.ReplaceAllString(trimmed, "$1")
	}
	return strings.TrimSpace(cleaned)
}

func tryDirectParse[T any](text string) (T, error) {
	var result T
	err := json.Unmarshal([]byte(text), &result)
	return result, err
}

// extractJSON pulls JSON out of mixed content. The first JSON-like character
// decides the type so [{"a":1},{"a":2}] is not reduced to its first object.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)

	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '[':
			if match := arrayRegex.FindString(trimmed); match != "" {
				return match
			}
		case '{':
			if match := objectRegex.FindString(trimmed); match != "" {
				return match
			}
		}
	}

	arrayIdx := strings.Index(trimmed, "[")
	objectIdx := strings.Index(trimmed, "{")
	if arrayIdx >= 0 && (objectIdx < 0 || arrayIdx < objectIdx) {
		return arrayRegex.FindString(trimmed)
	}
	return objectRegex.FindString(trimmed)
}

func parseError[T any](message, text, context string) ParseResult[T] {
	var zero T
	if context != "" {
		message = context + ": " + message
	}
	return ParseResult[T]{
		Success:      false,
		Data:         zero,
		Error:        message,
		OriginalText: text,
	}
}
