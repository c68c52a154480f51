package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/zapissues/zapissues/internal/deduplication"
	"github.com/zapissues/zapissues/internal/pipeline"
	"github.com/zapissues/zapissues/internal/publisher"
	"github.com/zapissues/zapissues/internal/tracker"
	"github.com/zapissues/zapissues/internal/types"
)

func TestPrintResult(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := &pipeline.Result{
		RunID:   "run-1",
		Records: []types.VulnerabilityRecord{{Name: "XSS"}, {Name: "CSRF"}, {Name: "SQLi"}},
		Outcomes: []*publisher.Outcome{
			{
				Draft:   &types.IssueDraft{Title: "High Vulnerability: XSS"},
				State:   publisher.StatePublished,
				Created: &tracker.CreatedIssue{Number: 5, URL: "https://github.com/acme/shop/issues/5"},
			},
			{
				Draft: &types.IssueDraft{Title: "Medium Vulnerability: CSRF"},
				State: publisher.StateDuplicateSkipped,
				Decision: &deduplication.DuplicateDecision{
					IsDuplicate: true,
					Match:       &types.ExistingIssue{URL: "https://github.com/acme/shop/issues/2"},
				},
			},
			{
				Draft: &types.IssueDraft{Title: "High Vulnerability: SQLi"},
				State: publisher.StatePublishFailed,
				Err:   errors.New("tracker API returned status 422: Validation Failed"),
			},
		},
	}

	var buf bytes.Buffer
	printResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Run run-1: 3 findings, 3 drafts")
	assert.Contains(t, out, "Created High Vulnerability: XSS")
	assert.Contains(t, out, "https://github.com/acme/shop/issues/5")
	assert.Contains(t, out, "matches https://github.com/acme/shop/issues/2")
	assert.Contains(t, out, "Validation Failed")
	assert.Contains(t, out, "Created: 1  Duplicates: 1  Failed: 1")
}

func TestPrintResult_NoFindings(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	printResult(&buf, &pipeline.Result{RunID: "run-2"})
	assert.Contains(t, buf.String(), "No high or medium severity vulnerabilities found")
}
