package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/zapissues/zapissues/internal/types"
)

// DefaultGitHubAPIURL is the public GitHub REST endpoint
const DefaultGitHubAPIURL = "https://api.github.com"

// maxPerPage is the GitHub page size limit
const maxPerPage = 100

// GitHubConfig locates a repository and its credentials
type GitHubConfig struct {
	Owner   string
	Repo    string
	Token   string
	BaseURL string        // DefaultGitHubAPIURL when empty
	Timeout time.Duration // 1 minute when zero
}

// Validate checks if the configuration has valid values
func (c GitHubConfig) Validate() error {
	if strings.TrimSpace(c.Owner) == "" {
		return fmt.Errorf("github owner is required")
	}
	if strings.TrimSpace(c.Repo) == "" {
		return fmt.Errorf("github repo is required")
	}
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("github token is required")
	}
	return nil
}

// GitHub is a Tracker backed by the GitHub issues REST API
type GitHub struct {
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	baseURL *url.URL
	owner   string
	repo    string
	token   string
}

var _ Tracker = (*GitHub)(nil)

// githubIssue is the subset of the GitHub issue payload in use
type githubIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	URL    string `json:"html_url"`
}

type createIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// NewGitHub creates a GitHub tracker client
func NewGitHub(cfg GitHubConfig) (*GitHub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rawURL := cfg.BaseURL
	if rawURL == "" {
		rawURL = DefaultGitHubAPIURL
	}
	baseURL, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("error parsing github api url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 1 * time.Minute
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "github-issues",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// A client error says nothing about the API's health
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"component", "tracker",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return &GitHub{
		client:  &http.Client{Timeout: timeout},
		cb:      cb,
		baseURL: baseURL,
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		token:   cfg.Token,
	}, nil
}

func (g *GitHub) issuesURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/issues", g.baseURL, url.PathEscape(g.owner), url.PathEscape(g.repo))
}

// ListOpenIssues returns the newest open issues of the repository.
// GitHub includes pull requests in this listing; they are kept.
func (g *GitHub) ListOpenIssues(ctx context.Context, limit int) ([]types.ExistingIssue, error) {
	if limit <= 0 {
		return []types.ExistingIssue{}, nil
	}
	perPage := limit
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	query := url.Values{}
	query.Set("state", "open")
	query.Set("sort", "created")
	query.Set("direction", "desc")
	query.Set("per_page", strconv.Itoa(perPage))

	result, err := g.cb.Execute(func() (interface{}, error) {
		var issues []githubIssue
		if err := g.do(ctx, http.MethodGet, g.issuesURL()+"?"+query.Encode(), nil, http.StatusOK, &issues); err != nil {
			return nil, err
		}
		return issues, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list open issues: %w", err)
	}

	issues, ok := result.([]githubIssue)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when listing issues")
	}

	existing := make([]types.ExistingIssue, 0, len(issues))
	for _, issue := range issues {
		existing = append(existing, types.ExistingIssue(issue))
	}
	if len(existing) > limit {
		existing = existing[:limit]
	}

	slog.Debug("listed open issues", "component", "tracker", "count", len(existing))
	return existing, nil
}

// CreateIssue files draft in the repository
func (g *GitHub) CreateIssue(ctx context.Context, draft *types.IssueDraft) (*CreatedIssue, error) {
	if draft == nil {
		return nil, fmt.Errorf("draft cannot be nil")
	}
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("invalid draft: %w", err)
	}

	payload, err := json.Marshal(createIssueRequest{
		Title:  draft.Title,
		Body:   draft.Body,
		Labels: draft.Labels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue: %w", err)
	}

	result, err := g.cb.Execute(func() (interface{}, error) {
		var created CreatedIssue
		if err := g.do(ctx, http.MethodPost, g.issuesURL(), payload, http.StatusCreated, &created); err != nil {
			return nil, err
		}
		return &created, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	created, ok := result.(*CreatedIssue)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when creating issue")
	}
	return created, nil
}

// do sends one request and decodes a response with the wanted status into out
func (g *GitHub) do(ctx context.Context, method, target string, payload []byte, want int, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("client response error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return newAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(raw)}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
