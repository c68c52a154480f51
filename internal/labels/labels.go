// Package labels defines the classification tags attached to every issue
// this tool files.
package labels

const (
	// LabelSecurity marks the issue as security related
	LabelSecurity = "security"
	// LabelScanner identifies the scanner that produced the findings
	LabelScanner = "zap"
	// LabelVulnerability marks the issue as a vulnerability report
	LabelVulnerability = "vulnerability"
)

// IssueLabels returns the constant label set for a draft.
// A fresh slice is returned so callers cannot alter the shared set.
func IssueLabels() []string {
	return []string{LabelSecurity, LabelScanner, LabelVulnerability}
}

// HasLabel checks if labels contains label.
func HasLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// SameSet reports whether a and b hold the same labels, ignoring order.
func SameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, l := range a {
		if !HasLabel(b, l) {
			return false
		}
	}
	return true
}
