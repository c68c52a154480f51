package synthesis

import (
	"fmt"
	"strings"

	"github.com/zapissues/zapissues/internal/labels"
	"github.com/zapissues/zapissues/internal/types"
)

// ProvenanceFooter closes every templated issue body
const ProvenanceFooter = "*Generated by automated ZAP scan reporting.*"

// TemplateTitle returns the deterministic title for a single finding
func TemplateTitle(r types.VulnerabilityRecord) string {
	return fmt.Sprintf("%s Vulnerability: %s", r.Severity, r.Name)
}

// RenderTemplate renders one finding without consulting a model
func RenderTemplate(r types.VulnerabilityRecord) *types.IssueDraft {
	var b strings.Builder

	b.WriteString("### Vulnerability Details:\n")
	fmt.Fprintf(&b, "- **Name:** %s\n", r.Name)
	fmt.Fprintf(&b, "- **Severity:** %s\n", r.Severity)
	if r.InstanceCount != nil {
		fmt.Fprintf(&b, "- **Instances:** %d\n", *r.InstanceCount)
	}

	b.WriteString("\n### Affected URLs:\n")
	for _, u := range r.URLs {
		fmt.Fprintf(&b, "- %s\n", u)
	}

	b.WriteString("\n### Recommended Action:\n")
	b.WriteString(r.Solution)
	b.WriteString("\n\n---\n\n")
	b.WriteString(ProvenanceFooter)

	return &types.IssueDraft{
		Title:  TemplateTitle(r),
		Body:   b.String(),
		Labels: labels.IssueLabels(),
	}
}
