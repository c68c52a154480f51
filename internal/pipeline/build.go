package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zapissues/zapissues/internal/ai"
	"github.com/zapissues/zapissues/internal/config"
	"github.com/zapissues/zapissues/internal/deduplication"
	"github.com/zapissues/zapissues/internal/extract"
	"github.com/zapissues/zapissues/internal/publisher"
	"github.com/zapissues/zapissues/internal/synthesis"
	"github.com/zapissues/zapissues/internal/tracker"
)

// FromConfig builds a pipeline from cfg. The tracker is only constructed when
// withTracker is set; extraction-only runs do not need GitHub credentials.
func FromConfig(ctx context.Context, cfg config.Config, withTracker bool) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var completer ai.Completer
	if cfg.HasAI() {
		c, err := ai.NewCompleter(ctx, cfg.CompleterConfig())
		if err != nil {
			return nil, fmt.Errorf("creating AI completer: %w", err)
		}
		completer = c
	} else {
		slog.Warn("no AI API key configured, multi-finding issues will use the degraded summary",
			"component", "pipeline",
			"provider", cfg.AI.Provider)
	}

	extractor, err := extract.New(cfg.ExtractionMode, completer)
	if err != nil {
		return nil, err
	}

	deps := Deps{
		Extractor:     extractor,
		Synthesizer:   synthesis.New(completer),
		SynthesisMode: cfg.SynthesisMode,
		RecordsPath:   cfg.RecordsPath,
	}

	if withTracker {
		if err := cfg.ValidateTracker(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		gh, err := tracker.NewGitHub(cfg.TrackerConfig())
		if err != nil {
			return nil, err
		}
		detector := deduplication.NewDetector(gh, cfg.Dedup)
		deps.Publisher = publisher.New(detector, gh)
	}

	p := New(deps)
	if completer != nil {
		p.closers = append(p.closers, func() error { return ai.Close(completer) })
	}
	return p, nil
}
