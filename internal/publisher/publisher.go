// Package publisher files issue drafts in the tracker unless they duplicate an
// open issue.
//
// Each Publish call walks a small state machine:
//
//	Drafted -> DuplicateSkipped
//	Drafted -> PublishAttempted -> Published | PublishFailed
//
// There is no retry: a failed create is terminal for that draft.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zapissues/zapissues/internal/deduplication"
	"github.com/zapissues/zapissues/internal/labels"
	"github.com/zapissues/zapissues/internal/tracker"
	"github.com/zapissues/zapissues/internal/types"
)

// State is a step of the publication state machine
type State string

const (
	StateDrafted          State = "drafted"
	StateDuplicateSkipped State = "duplicate_skipped"
	StatePublishAttempted State = "publish_attempted"
	StatePublished        State = "published"
	StatePublishFailed    State = "publish_failed"
)

// IsTerminal reports whether no transition leaves the state
func (s State) IsTerminal() bool {
	switch s {
	case StateDuplicateSkipped, StatePublished, StatePublishFailed:
		return true
	}
	return false
}

// validTransitions lists the allowed next states
var validTransitions = map[State][]State{
	StateDrafted:          {StateDuplicateSkipped, StatePublishAttempted},
	StatePublishAttempted: {StatePublished, StatePublishFailed},
}

// CanTransition checks if moving from one state to another is allowed
func CanTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DuplicateChecker decides whether a draft repeats an open issue
type DuplicateChecker interface {
	CheckDuplicate(ctx context.Context, candidate *types.IssueDraft) (*deduplication.DuplicateDecision, error)
}

// IssueCreator files a draft
type IssueCreator interface {
	CreateIssue(ctx context.Context, draft *types.IssueDraft) (*tracker.CreatedIssue, error)
}

// Outcome is the result of publishing one draft
type Outcome struct {
	Draft *types.IssueDraft
	State State

	// History lists every state visited, starting with StateDrafted
	History []State

	// Created is set when State is StatePublished
	Created *tracker.CreatedIssue

	// Decision is the duplicate check that gated publication
	Decision *deduplication.DuplicateDecision

	// Err is set when State is StatePublishFailed
	Err error
}

func (o *Outcome) transition(to State) {
	if !CanTransition(o.State, to) {
		panic(fmt.Sprintf("invalid publication transition %s -> %s", o.State, to))
	}
	o.State = to
	o.History = append(o.History, to)
}

// Publisher gates drafts through the duplicate detector before creating them
type Publisher struct {
	checker DuplicateChecker
	creator IssueCreator
}

// New creates a publisher
func New(checker DuplicateChecker, creator IssueCreator) *Publisher {
	return &Publisher{checker: checker, creator: creator}
}

// Publish files draft unless it duplicates an open issue.
// The returned Outcome is always non-nil for a valid draft. The error is non-nil
// only for an invalid draft or when the create call fails; a failed create also
// sets Outcome.Err and StatePublishFailed.
func (p *Publisher) Publish(ctx context.Context, draft *types.IssueDraft) (*Outcome, error) {
	if draft == nil {
		return nil, fmt.Errorf("draft cannot be nil")
	}
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("invalid draft: %w", err)
	}

	outcome := &Outcome{
		Draft:   draft,
		State:   StateDrafted,
		History: []State{StateDrafted},
	}

	decision, err := p.checker.CheckDuplicate(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("duplicate check rejected draft: %w", err)
	}
	if decision == nil {
		return nil, fmt.Errorf("duplicate check returned no decision")
	}
	if err := decision.Validate(); err != nil {
		return nil, fmt.Errorf("invalid duplicate decision: %w", err)
	}
	outcome.Decision = decision

	if decision.IsDuplicate {
		outcome.transition(StateDuplicateSkipped)
		existing := ""
		if decision.Match != nil {
			existing = decision.Match.URL
		}
		slog.Info("issue not created because it is a duplicate",
			"component", "publisher",
			"title", draft.Title,
			"existing", existing,
			"reason", decision.Reason)
		return outcome, nil
	}

	if !labels.SameSet(draft.Labels, labels.IssueLabels()) {
		slog.Warn("draft labels replaced with the issue label set",
			"component", "publisher",
			"title", draft.Title,
			"labels", draft.Labels)
		labeled := *draft
		labeled.Labels = labels.IssueLabels()
		draft = &labeled
		outcome.Draft = draft
	}

	outcome.transition(StatePublishAttempted)
	created, err := p.creator.CreateIssue(ctx, draft)
	if err != nil {
		outcome.transition(StatePublishFailed)
		outcome.Err = err
		attrs := []any{
			"component", "publisher",
			"title", draft.Title,
			"error", err,
		}
		var apiErr *tracker.APIError
		if errors.As(err, &apiErr) {
			attrs = append(attrs, "status", apiErr.StatusCode, "payload", apiErr.Body)
		}
		slog.Error("failed to create issue", attrs...)
		return outcome, fmt.Errorf("publishing %q: %w", draft.Title, err)
	}

	outcome.transition(StatePublished)
	outcome.Created = created
	slog.Info("issue created",
		"component", "publisher",
		"title", draft.Title,
		"number", created.Number,
		"url", created.URL)
	return outcome, nil
}
