// Package pipeline runs one report through extraction, synthesis, duplicate
// detection and publication.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/zapissues/zapissues/internal/extract"
	"github.com/zapissues/zapissues/internal/publisher"
	"github.com/zapissues/zapissues/internal/records"
	"github.com/zapissues/zapissues/internal/synthesis"
	"github.com/zapissues/zapissues/internal/types"
)

// ErrReportUnreadable is returned when the report cannot be read or is empty
var ErrReportUnreadable = errors.New("report unreadable")

// ErrNoPublisher is returned when publication is requested without a tracker
var ErrNoPublisher = errors.New("no publisher configured")

// ReadReport reads the report at path once. A missing, unreadable or blank
// file is a fatal input error.
func ReadReport(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportUnreadable, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrReportUnreadable, path)
	}
	return data, nil
}

// Pipeline wires the stages of a run together
type Pipeline struct {
	extractor     extract.Extractor
	synthesizer   *synthesis.Synthesizer
	publisher     *publisher.Publisher
	synthesisMode synthesis.Mode
	recordsPath   string
	closers       []func() error
}

// Deps are the stages of a pipeline. Publisher may be nil for extraction-only runs.
type Deps struct {
	Extractor     extract.Extractor
	Synthesizer   *synthesis.Synthesizer
	Publisher     *publisher.Publisher
	SynthesisMode synthesis.Mode

	// RecordsPath, when set, receives the extracted records during Run
	RecordsPath string
}

// New creates a pipeline from its stages
func New(deps Deps) *Pipeline {
	mode := deps.SynthesisMode
	if mode == "" {
		mode = synthesis.ModeAuto
	}
	return &Pipeline{
		extractor:     deps.Extractor,
		synthesizer:   deps.Synthesizer,
		publisher:     deps.Publisher,
		synthesisMode: mode,
		recordsPath:   deps.RecordsPath,
	}
}

// Close releases resources held by the stages
func (p *Pipeline) Close() error {
	var errs []error
	for _, closeFn := range p.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Result summarizes one run
type Result struct {
	RunID    string
	Records  []types.VulnerabilityRecord
	Outcomes []*publisher.Outcome
}

// Count returns the number of outcomes that ended in state
func (r *Result) Count(state publisher.State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

func newRun() (string, *slog.Logger) {
	runID := uuid.NewString()
	return runID, slog.Default().With("component", "pipeline", "run_id", runID)
}

// Extract returns the actionable records of report
func (p *Pipeline) Extract(ctx context.Context, report []byte) ([]types.VulnerabilityRecord, error) {
	recs, err := p.extractor.Extract(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("extracting records: %w", err)
	}
	return recs, nil
}

// Run extracts the records of report, persists them when a records path is set
// and publishes them.
func (p *Pipeline) Run(ctx context.Context, report []byte) (*Result, error) {
	runID, logger := newRun()
	logger.Info("run started", "mode", p.synthesisMode)

	recs, err := p.Extract(ctx, report)
	if err != nil {
		return nil, err
	}
	logger.Info("extracted vulnerabilities", "count", len(recs))

	if p.recordsPath != "" {
		if err := records.Save(p.recordsPath, recs); err != nil {
			return nil, err
		}
		logger.Debug("records saved", "path", p.recordsPath)
	}

	return p.publish(ctx, runID, logger, recs)
}

// Publish synthesizes and publishes previously extracted records
func (p *Pipeline) Publish(ctx context.Context, recs []types.VulnerabilityRecord) (*Result, error) {
	runID, logger := newRun()
	return p.publish(ctx, runID, logger, recs)
}

func (p *Pipeline) publish(ctx context.Context, runID string, logger *slog.Logger, recs []types.VulnerabilityRecord) (*Result, error) {
	result := &Result{RunID: runID, Records: recs}

	actionable := types.FilterActionable(recs)
	if len(actionable) == 0 {
		logger.Info("no high or medium severity vulnerabilities found")
		return result, nil
	}
	if p.publisher == nil {
		return nil, ErrNoPublisher
	}

	drafts, err := p.drafts(ctx, actionable)
	if err != nil {
		return nil, err
	}

	for _, draft := range drafts {
		outcome, err := p.publisher.Publish(ctx, draft)
		if outcome == nil {
			return result, err
		}
		// a failed create is terminal for that draft only
		result.Outcomes = append(result.Outcomes, outcome)
	}

	logger.Info("run complete",
		"records", len(actionable),
		"drafts", len(drafts),
		"published", result.Count(publisher.StatePublished),
		"duplicates", result.Count(publisher.StateDuplicateSkipped),
		"failed", result.Count(publisher.StatePublishFailed))

	return result, nil
}

// drafts synthesizes the drafts for actionable records according to the mode
func (p *Pipeline) drafts(ctx context.Context, recs []types.VulnerabilityRecord) ([]*types.IssueDraft, error) {
	switch p.synthesisMode {
	case synthesis.ModeTemplate:
		drafts := make([]*types.IssueDraft, 0, len(recs))
		for _, r := range recs {
			draft, err := p.synthesizer.Synthesize(ctx, []types.VulnerabilityRecord{r}, synthesis.Options{})
			if err != nil {
				return nil, err
			}
			drafts = append(drafts, draft)
		}
		return drafts, nil
	default:
		opts := synthesis.Options{Summarize: p.synthesisMode == synthesis.ModeAssisted}
		draft, err := p.synthesizer.Synthesize(ctx, recs, opts)
		if err != nil {
			return nil, err
		}
		return []*types.IssueDraft{draft}, nil
	}
}
