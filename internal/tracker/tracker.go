// Package tracker is the client side of the external issue tracker.
package tracker

import (
	"context"
	"fmt"

	"github.com/zapissues/zapissues/internal/types"
)

// Tracker lists and creates issues in a remote tracker
type Tracker interface {
	// ListOpenIssues returns up to limit open issues, most recently created first
	ListOpenIssues(ctx context.Context, limit int) ([]types.ExistingIssue, error)

	// CreateIssue files draft and returns the created issue
	CreateIssue(ctx context.Context, draft *types.IssueDraft) (*CreatedIssue, error)
}

// CreatedIssue identifies a newly filed issue
type CreatedIssue struct {
	Number int    `json:"number"`
	URL    string `json:"html_url"`
}

// APIError is a non-2xx response from the tracker API.
// Body holds the raw diagnostic payload.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tracker API returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tracker API returned status %d", e.StatusCode)
}
