package deduplication

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zapissues/zapissues/internal/types"
)

// IssueLister is the tracker capability the detector needs
type IssueLister interface {
	// ListOpenIssues returns up to limit open issues, most recently created first
	ListOpenIssues(ctx context.Context, limit int) ([]types.ExistingIssue, error)
}

// Reasons recorded on a DuplicateDecision
const (
	ReasonTitle     = "title"
	ReasonBody      = "body"
	ReasonNoMatch   = "no match"
	ReasonListError = "tracker unavailable"
)

// DuplicateDecision represents the result of checking a single draft for duplicates
type DuplicateDecision struct {
	// IsDuplicate is true if an existing issue matched by title or body
	IsDuplicate bool `json:"is_duplicate"`

	// Match is the existing issue the draft duplicates
	// Only set when IsDuplicate is true
	Match *types.ExistingIssue `json:"match,omitempty"`

	// Reason names the check that decided the outcome
	Reason string `json:"reason"`

	// Score is the body similarity of the matching issue, or the best score seen
	Score float64 `json:"score"`

	// ComparedCount is the number of existing issues compared against
	ComparedCount int `json:"compared_count"`
}

// Validate checks if the duplicate decision has valid values
func (d *DuplicateDecision) Validate() error {
	if d.Score < 0.0 || d.Score > 1.0 {
		return fmt.Errorf("score must be between 0.0 and 1.0 (got %.2f)", d.Score)
	}
	if d.IsDuplicate && d.Match == nil {
		return fmt.Errorf("match must be set when is_duplicate is true")
	}
	if !d.IsDuplicate && d.Match != nil {
		return fmt.Errorf("match should not be set when is_duplicate is false")
	}
	if d.ComparedCount < 0 {
		return fmt.Errorf("compared_count cannot be negative (got %d)", d.ComparedCount)
	}
	return nil
}

// Detector compares drafts against recent open issues
type Detector struct {
	lister IssueLister
	config Config
	scorer Scorer
}

// Option customizes a Detector
type Option func(*Detector)

// WithScorer replaces the body similarity function
func WithScorer(s Scorer) Option {
	return func(d *Detector) {
		d.scorer = s
	}
}

// NewDetector creates a detector. An invalid config falls back to DefaultConfig.
func NewDetector(lister IssueLister, cfg Config, opts ...Option) *Detector {
	if err := cfg.Validate(); err != nil {
		slog.Warn("invalid dedup config, using defaults", "component", "dedup", "error", err)
		cfg = DefaultConfig()
	}
	d := &Detector{
		lister: lister,
		config: cfg,
		scorer: Similarity,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the detector's configuration
func (d *Detector) Config() Config {
	return d.config
}

// CheckDuplicate reports whether candidate repeats one of the most recently
// created open issues. The error is non-nil only for an invalid candidate; a
// tracker failure yields a non-duplicate decision.
func (d *Detector) CheckDuplicate(ctx context.Context, candidate *types.IssueDraft) (*DuplicateDecision, error) {
	if candidate == nil {
		return nil, fmt.Errorf("candidate draft cannot be nil")
	}
	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("invalid candidate draft: %w", err)
	}

	existing, err := d.lister.ListOpenIssues(ctx, d.config.Window)
	if err != nil {
		slog.Warn("duplicate check failed, treating draft as new",
			"component", "dedup",
			"title", candidate.Title,
			"error", err)
		return &DuplicateDecision{IsDuplicate: false, Reason: ReasonListError}, nil
	}
	if len(existing) > d.config.Window {
		existing = existing[:d.config.Window]
	}

	title := normalize(candidate.Title)
	body := clip(normalize(candidate.Body), d.config.MaxCompareRunes)

	decision := &DuplicateDecision{Reason: ReasonNoMatch}
	for i := range existing {
		issue := existing[i]
		decision.ComparedCount++

		if titleMatches(normalize(issue.Title), title) {
			decision.IsDuplicate = true
			decision.Match = &issue
			decision.Reason = ReasonTitle
			break
		}

		existingBody := clip(normalize(issue.Body), d.config.MaxCompareRunes)
		if body == "" || existingBody == "" {
			continue
		}
		score := d.scorer(body, existingBody)
		if score > decision.Score {
			decision.Score = score
		}
		if score > d.config.Threshold {
			decision.IsDuplicate = true
			decision.Match = &issue
			decision.Reason = ReasonBody
			decision.Score = score
			break
		}
	}

	if decision.IsDuplicate {
		slog.Info("duplicate issue found",
			"component", "dedup",
			"title", candidate.Title,
			"existing", decision.Match.URL,
			"reason", decision.Reason,
			"score", decision.Score)
	} else {
		slog.Debug("no duplicate found",
			"component", "dedup",
			"title", candidate.Title,
			"compared", decision.ComparedCount,
			"best_score", decision.Score)
	}

	return decision, nil
}
