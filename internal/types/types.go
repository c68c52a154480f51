package types

import (
	"fmt"
	"strings"
)

// VulnerabilityRecord is one normalized finding extracted from a scan report.
// Records are values: stages copy and aggregate them but never mutate one in place.
type VulnerabilityRecord struct {
	Name          string   `json:"name"`
	Severity      Severity `json:"severity"`
	URLs          []string `json:"urls"`
	Solution      string   `json:"solution"`
	InstanceCount *int     `json:"instanceCount,omitempty"` // structural extraction only
}

// Validate checks if the record has valid field values
func (r *VulnerabilityRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !r.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %q", r.Severity)
	}
	if r.InstanceCount != nil && *r.InstanceCount < 0 {
		return fmt.Errorf("instance_count cannot be negative (got %d)", *r.InstanceCount)
	}
	return nil
}

// Severity is the qualitative risk level of a finding
type Severity string

const (
	SeverityHigh          Severity = "High"
	SeverityMedium        Severity = "Medium"
	SeverityLow           Severity = "Low"
	SeverityInformational Severity = "Informational"
)

// IsValid checks if the severity value is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow, SeverityInformational:
		return true
	}
	return false
}

// IsActionable reports whether findings of this severity are published.
// Only High and Medium are.
func (s Severity) IsActionable() bool {
	return s == SeverityHigh || s == SeverityMedium
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a severity string case-insensitively.
// Accepts "info" as Informational.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	case "informational", "info":
		return SeverityInformational, nil
	default:
		return "", fmt.Errorf("invalid severity: %q", s)
	}
}

// FromRiskLevel maps a ZAP risk level (3..0) to a severity.
func FromRiskLevel(level int) (Severity, error) {
	switch level {
	case 3:
		return SeverityHigh, nil
	case 2:
		return SeverityMedium, nil
	case 1:
		return SeverityLow, nil
	case 0:
		return SeverityInformational, nil
	default:
		return "", fmt.Errorf("invalid risk level: %d", level)
	}
}

// FilterActionable returns the High and Medium records in their original order.
func FilterActionable(records []VulnerabilityRecord) []VulnerabilityRecord {
	out := make([]VulnerabilityRecord, 0, len(records))
	for _, r := range records {
		if r.Severity.IsActionable() {
			out = append(out, r)
		}
	}
	return out
}

// IssueDraft is the synthesized payload submitted to the tracker
type IssueDraft struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// Validate checks if the draft can be submitted
func (d *IssueDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// ExistingIssue is an open issue as returned by the tracker.
// Body may be empty; URL is only used for diagnostics.
type ExistingIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	URL    string `json:"html_url"`
}
