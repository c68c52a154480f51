package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zapissues/zapissues/internal/ai"
	"github.com/zapissues/zapissues/internal/types"
)

// assistedMaxTokens bounds the model reply for report extraction
const assistedMaxTokens = 1500

// AssistedExtractor delegates extraction to a language model
type AssistedExtractor struct {
	completer ai.Completer
}

var _ Extractor = (*AssistedExtractor)(nil)

// NewAssistedExtractor creates an assisted extractor. A nil completer is allowed;
// extraction then yields no records.
func NewAssistedExtractor(completer ai.Completer) *AssistedExtractor {
	return &AssistedExtractor{completer: completer}
}

// assistedEntry is one element of the model's JSON reply. Severity is kept as a
// string so unexpected values can be rejected per entry instead of failing the array.
type assistedEntry struct {
	Name     string   `json:"name"`
	Severity string   `json:"severity"`
	URLs     []string `json:"urls"`
	Solution string   `json:"solution"`
}

// Extract sends the raw report to the model and decodes its reply.
// Completion and parse failures are logged and yield an empty slice.
func (e *AssistedExtractor) Extract(ctx context.Context, report []byte) ([]types.VulnerabilityRecord, error) {
	if isBlank(report) {
		return nil, ErrEmptyReport
	}

	records := []types.VulnerabilityRecord{}
	if e.completer == nil {
		slog.Warn("assisted extraction skipped: no AI completer configured", "component", "extract")
		return records, nil
	}

	reply, err := e.completer.Complete(ctx, buildExtractionPrompt(string(report)), assistedMaxTokens)
	if err != nil {
		slog.Warn("assisted extraction failed", "component", "extract", "error", err)
		return records, nil
	}

	parseResult := ai.Parse[[]assistedEntry](reply, ai.ParseOptions{
		Context:   "assisted extraction",
		LogErrors: true,
	})
	if !parseResult.Success {
		slog.Warn("assisted extraction reply was not a JSON array",
			"component", "extract",
			"error", parseResult.Error)
		return records, nil
	}

	for i, entry := range parseResult.Data {
		severity, err := types.ParseSeverity(entry.Severity)
		if err != nil {
			slog.Debug("skipping extracted entry", "component", "extract", "index", i, "error", err)
			continue
		}
		record := types.VulnerabilityRecord{
			Name:     strings.TrimSpace(entry.Name),
			Severity: severity,
			URLs:     nonEmpty(entry.URLs),
			Solution: strings.TrimSpace(entry.Solution),
		}
		if err := record.Validate(); err != nil {
			slog.Debug("skipping extracted entry", "component", "extract", "index", i, "error", err)
			continue
		}
		records = append(records, record)
	}

	actionable := types.FilterActionable(records)
	slog.Debug("assisted extraction complete",
		"component", "extract",
		"entries", len(parseResult.Data),
		"actionable", len(actionable))

	return actionable, nil
}

func buildExtractionPrompt(report string) string {
	return fmt.Sprintf(`You are a security expert. Below is the content of a ZAP security scan report in HTML format. Please extract the following information for all vulnerabilities with severity High or Medium:

- Name of the vulnerability
- Severity
- URL(s) affected
- Suggested solution

Here is the HTML content of the report:

%s

Please respond with a structured JSON array like this:
[
    {
        "name": "<Vulnerability Name>",
        "severity": "<Severity Level>",
        "urls": ["<URL1>", "<URL2>"],
        "solution": "<Suggested Solution>"
    },
    ...
]`, report)
}
