package deduplication

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapissues/zapissues/internal/types"
)

// fakeLister serves a fixed issue list and records the requested limit
type fakeLister struct {
	issues []types.ExistingIssue
	err    error
	limit  int
	calls  int
}

func (f *fakeLister) ListOpenIssues(ctx context.Context, limit int) ([]types.ExistingIssue, error) {
	f.calls++
	f.limit = limit
	return f.issues, f.err
}

func draft(title, body string) *types.IssueDraft {
	return &types.IssueDraft{Title: title, Body: body}
}

func TestCheckDuplicate_TitleContainment(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		title    string
		want     bool
	}{
		{"exact", "SQL Injection", "SQL Injection", true},
		{"case and whitespace", "  sql injection ", "SQL INJECTION", true},
		{"existing contains candidate", "[Security] SQL Injection (auto)", "SQL Injection", true},
		{"candidate contains existing", "SQL Injection", "[Security] SQL Injection (auto)", false},
		{"unrelated", "Update README", "SQL Injection", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{issues: []types.ExistingIssue{{Number: 1, Title: tt.existing, URL: "https://github.com/o/r/issues/1"}}}
			d := NewDetector(lister, DefaultConfig())

			decision, err := d.CheckDuplicate(context.Background(), draft(tt.title, "unrelated body text"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.IsDuplicate)
			if tt.want {
				assert.Equal(t, ReasonTitle, decision.Reason)
				require.NotNil(t, decision.Match)
				assert.Equal(t, 1, decision.Match.Number)
			}
			require.NoError(t, decision.Validate())
		})
	}
}

func TestCheckDuplicate_ThresholdIsExclusive(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  bool
	}{
		{"below", 0.79, false},
		{"at threshold", 0.80, false},
		{"above", 0.81, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{issues: []types.ExistingIssue{{Title: "Other", Body: "some body"}}}
			d := NewDetector(lister, DefaultConfig(), WithScorer(func(a, b string) float64 { return tt.score }))

			decision, err := d.CheckDuplicate(context.Background(), draft("New title", "new body"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.IsDuplicate)
			assert.Equal(t, tt.score, decision.Score)
		})
	}
}

func TestCheckDuplicate_BodySimilarity(t *testing.T) {
	base := strings.Repeat("a", 100)

	t.Run("score of exactly 0.8 is not a duplicate", func(t *testing.T) {
		lister := &fakeLister{issues: []types.ExistingIssue{{Title: "Other", Body: "abcdf"}}}
		decision, err := NewDetector(lister, DefaultConfig()).CheckDuplicate(context.Background(), draft("New", "ABCDE"))
		require.NoError(t, err)
		assert.False(t, decision.IsDuplicate)
		assert.Equal(t, 0.8, decision.Score)
	})

	t.Run("score of 0.81 is a duplicate", func(t *testing.T) {
		existing := strings.Repeat("b", 19) + base[19:]
		lister := &fakeLister{issues: []types.ExistingIssue{{Title: "Other", Body: existing}}}
		decision, err := NewDetector(lister, DefaultConfig()).CheckDuplicate(context.Background(), draft("New", base))
		require.NoError(t, err)
		assert.True(t, decision.IsDuplicate)
		assert.Equal(t, ReasonBody, decision.Reason)
		assert.InDelta(t, 0.81, decision.Score, 1e-9)
	})

	t.Run("empty existing body is skipped", func(t *testing.T) {
		lister := &fakeLister{issues: []types.ExistingIssue{{Title: "Other", Body: ""}}}
		decision, err := NewDetector(lister, DefaultConfig()).CheckDuplicate(context.Background(), draft("New", "body"))
		require.NoError(t, err)
		assert.False(t, decision.IsDuplicate)
		assert.Equal(t, 1, decision.ComparedCount)
	})
}

func TestCheckDuplicate_ShortCircuits(t *testing.T) {
	lister := &fakeLister{issues: []types.ExistingIssue{
		{Number: 1, Title: "Unrelated"},
		{Number: 2, Title: "XSS in login form"},
		{Number: 3, Title: "XSS in login form"},
	}}
	scored := 0
	d := NewDetector(lister, DefaultConfig(), WithScorer(func(a, b string) float64 {
		scored++
		return 0
	}))

	decision, err := d.CheckDuplicate(context.Background(), draft("xss in login", "body"))
	require.NoError(t, err)
	assert.True(t, decision.IsDuplicate)
	assert.Equal(t, 2, decision.Match.Number)
	assert.Equal(t, 2, decision.ComparedCount)
	assert.Equal(t, 0, scored) // first issue has no body
}

func TestCheckDuplicate_RequestsWindow(t *testing.T) {
	lister := &fakeLister{}
	cfg := DefaultConfig()
	cfg.Window = 5

	decision, err := NewDetector(lister, cfg).CheckDuplicate(context.Background(), draft("Title", "Body"))
	require.NoError(t, err)
	assert.Equal(t, 5, lister.limit)
	assert.False(t, decision.IsDuplicate)
	assert.Equal(t, ReasonNoMatch, decision.Reason)
}

func TestCheckDuplicate_TruncatesOversizedList(t *testing.T) {
	var issues []types.ExistingIssue
	for i := 0; i < 15; i++ {
		issues = append(issues, types.ExistingIssue{Number: i, Title: "Other"})
	}
	issues[12].Title = "Match me"

	cfg := DefaultConfig()
	decision, err := NewDetector(&fakeLister{issues: issues}, cfg).CheckDuplicate(context.Background(), draft("Match me", "Body"))
	require.NoError(t, err)
	assert.False(t, decision.IsDuplicate)
	assert.Equal(t, cfg.Window, decision.ComparedCount)
}

func TestCheckDuplicate_FailsOpen(t *testing.T) {
	lister := &fakeLister{err: errors.New("GitHub API returned 500")}

	decision, err := NewDetector(lister, DefaultConfig()).CheckDuplicate(context.Background(), draft("Title", "Body"))
	require.NoError(t, err)
	assert.False(t, decision.IsDuplicate)
	assert.Equal(t, ReasonListError, decision.Reason)
	assert.Nil(t, decision.Match)
}

func TestCheckDuplicate_InvalidCandidate(t *testing.T) {
	lister := &fakeLister{}
	d := NewDetector(lister, DefaultConfig())

	_, err := d.CheckDuplicate(context.Background(), nil)
	assert.Error(t, err)

	_, err = d.CheckDuplicate(context.Background(), draft("  ", "body"))
	assert.Error(t, err)
	assert.Equal(t, 0, lister.calls)
}

func TestNewDetector_InvalidConfigFallsBack(t *testing.T) {
	d := NewDetector(&fakeLister{}, Config{Window: 0, Threshold: 2})
	assert.Equal(t, DefaultConfig(), d.Config())
}

func TestCheckDuplicate_LargeBodiesStayBounded(t *testing.T) {
	candidate := strings.Repeat("Reflected XSS on /search with payload <script>. ", 420)
	issues := make([]types.ExistingIssue, 10)
	for i := range issues {
		issues[i] = types.ExistingIssue{
			Number: i + 1,
			Title:  "Scan log dump",
			Body:   strings.Repeat("2024-05-01T10:00:00Z worker started job queue flushed ", 380),
		}
	}

	start := time.Now()
	decision, err := NewDetector(&fakeLister{issues: issues}, DefaultConfig()).
		CheckDuplicate(context.Background(), draft("High Vulnerability: XSS", candidate))
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, decision.IsDuplicate)
	assert.Equal(t, 10, decision.ComparedCount)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestCheckDuplicate_ScoresOnlyLeadingRunes(t *testing.T) {
	shared := strings.Repeat("a", 100)
	issues := []types.ExistingIssue{{
		Number: 3,
		Title:  "Older report",
		Body:   shared + strings.Repeat("x", 400),
	}}

	cfg := DefaultConfig()
	cfg.MaxCompareRunes = 100
	decision, err := NewDetector(&fakeLister{issues: issues}, cfg).
		CheckDuplicate(context.Background(), draft("New report", shared+strings.Repeat("y", 400)))
	require.NoError(t, err)
	assert.True(t, decision.IsDuplicate)
	assert.Equal(t, ReasonBody, decision.Reason)
	assert.InDelta(t, 1.0, decision.Score, 1e-9)

	cfg.MaxCompareRunes = 2000
	decision, err = NewDetector(&fakeLister{issues: issues}, cfg).
		CheckDuplicate(context.Background(), draft("New report", shared+strings.Repeat("y", 400)))
	require.NoError(t, err)
	assert.False(t, decision.IsDuplicate)
}
