// Package synthesis turns vulnerability records into a single issue draft.
//
// A single finding is rendered with a fixed markdown template. Several findings,
// or an explicit summarization request, go through a language model that answers
// with a TITLE/BODY envelope. Model failures never abort a run: a degraded draft
// listing the findings is produced instead.
package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zapissues/zapissues/internal/ai"
	"github.com/zapissues/zapissues/internal/labels"
	"github.com/zapissues/zapissues/internal/types"
)

// FallbackTitle is used whenever a model reply carries no usable title
const FallbackTitle = "Security Vulnerabilities from ZAP Scan"

// FailureNotice opens the body of a degraded draft
const FailureNotice = "AI analysis failed."

// synthesisMaxTokens bounds the model reply for issue synthesis
const synthesisMaxTokens = 800

// ErrNoRecords is returned when there is nothing to synthesize
var ErrNoRecords = errors.New("no vulnerability records to synthesize")

// Mode selects the synthesis path
type Mode string

const (
	// ModeAuto renders a single record with the template and summarizes several
	ModeAuto Mode = "auto"
	// ModeTemplate always renders with the template, one draft per record
	ModeTemplate Mode = "template"
	// ModeAssisted always asks the model for a summary
	ModeAssisted Mode = "assisted"
)

// IsValid checks if the mode value is valid
func (m Mode) IsValid() bool {
	switch m {
	case ModeAuto, ModeTemplate, ModeAssisted:
		return true
	}
	return false
}

// ParseMode parses a mode name case-insensitively. Empty means ModeAuto.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeAuto, nil
	}
	if !m.IsValid() {
		return "", fmt.Errorf("invalid synthesis mode: %q (want auto, template or assisted)", s)
	}
	return m, nil
}

// Options tunes a synthesis call
type Options struct {
	// Summarize forces the assisted path even for a single record
	Summarize bool
}

// Synthesizer builds issue drafts
type Synthesizer struct {
	completer ai.Completer
}

// New creates a synthesizer. completer may be nil; the assisted path then
// yields a degraded draft.
func New(completer ai.Completer) *Synthesizer {
	return &Synthesizer{completer: completer}
}

// Synthesize returns exactly one draft for records.
// The only error is ErrNoRecords; model failures produce a degraded draft.
func (s *Synthesizer) Synthesize(ctx context.Context, records []types.VulnerabilityRecord, opts Options) (*types.IssueDraft, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	if len(records) == 1 && !opts.Summarize {
		return RenderTemplate(records[0]), nil
	}

	return s.synthesizeAssisted(ctx, records), nil
}

func (s *Synthesizer) synthesizeAssisted(ctx context.Context, records []types.VulnerabilityRecord) *types.IssueDraft {
	if s.completer == nil {
		slog.Warn("issue synthesis degraded: no AI completer configured", "component", "synthesis")
		return DegradedDraft(records)
	}

	prompt, err := buildSynthesisPrompt(records)
	if err != nil {
		slog.Warn("issue synthesis degraded", "component", "synthesis", "error", err)
		return DegradedDraft(records)
	}

	reply, err := s.completer.Complete(ctx, prompt, synthesisMaxTokens)
	if err != nil {
		slog.Warn("issue synthesis degraded", "component", "synthesis", "error", err)
		return DegradedDraft(records)
	}
	if strings.TrimSpace(reply) == "" {
		slog.Warn("issue synthesis degraded: empty model reply", "component", "synthesis")
		return DegradedDraft(records)
	}

	env := ParseEnvelope(reply)
	if !env.HasTitle || !env.HasBody {
		slog.Debug("model reply did not follow the envelope",
			"component", "synthesis",
			"has_title", env.HasTitle,
			"has_body", env.HasBody)
	}

	return &types.IssueDraft{
		Title:  env.Title,
		Body:   env.Body,
		Labels: labels.IssueLabels(),
	}
}

// DegradedDraft is the draft used when the model cannot be reached or used.
// The findings are listed so the issue still carries the scan results.
func DegradedDraft(records []types.VulnerabilityRecord) *types.IssueDraft {
	var body strings.Builder
	body.WriteString(FailureNotice)
	if len(records) > 0 {
		body.WriteString("\n\n### Findings\n\n")
		for _, r := range records {
			fmt.Fprintf(&body, "- **%s**: %s\n", r.Severity, r.Name)
		}
	}

	return &types.IssueDraft{
		Title:  FallbackTitle,
		Body:   strings.TrimRight(body.String(), "\n"),
		Labels: labels.IssueLabels(),
	}
}

func buildSynthesisPrompt(records []types.VulnerabilityRecord) (string, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode records: %w", err)
	}

	return fmt.Sprintf(`You are a security expert. Given the following security vulnerabilities extracted from a ZAP security scan, generate a well-structured GitHub issue with:

- A clear issue title
- A summary of the vulnerabilities found
- A breakdown categorized by severity
- Suggested solutions
- Next steps for the development team

Here is the vulnerability data:

%s

Format your response as follows:

TITLE: <Title of GitHub Issue>

BODY:
---
<Well-structured issue description>
---`, data), nil
}
