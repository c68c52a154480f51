package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/zapissues/zapissues/internal/types"
)

// Table classes of the ZAP traditional HTML report
const (
	alertsTableClass  = "alerts"
	resultsTableClass = "results"
)

// riskClassRegex matches the ZAP risk class ("risk-3" .. "risk-0")
var riskClassRegex = regexp.MustCompile(`\brisk-(\d)\b`)

// StructuralExtractor parses the tables of a ZAP HTML report
type StructuralExtractor struct{}

var _ Extractor = (*StructuralExtractor)(nil)

// NewStructuralExtractor creates a structural extractor
func NewStructuralExtractor() *StructuralExtractor {
	return &StructuralExtractor{}
}

// alertRow is one row of the alerts summary table
type alertRow struct {
	name      string
	severity  types.Severity
	instances *int
}

// alertDetail is one grouped results table
type alertDetail struct {
	name      string
	severity  types.Severity
	urls      []string
	solution  string
	instances *int
}

// Extract parses report and returns its High/Medium findings.
//
// Rows of the alerts table define the findings and their order; each row is
// enriched with the results table of the same name and severity. A report
// without an alerts table is read from its results tables alone.
func (e *StructuralExtractor) Extract(ctx context.Context, report []byte) ([]types.VulnerabilityRecord, error) {
	if isBlank(report) {
		return nil, ErrEmptyReport
	}

	doc, err := html.Parse(bytes.NewReader(report))
	if err != nil {
		return nil, fmt.Errorf("failed to parse report markup: %w", err)
	}

	rows := parseAlertRows(doc)
	details := parseAlertDetails(doc)

	var records []types.VulnerabilityRecord
	if len(rows) == 0 {
		for _, d := range details {
			records = append(records, d.record())
		}
	} else {
		pending := make(map[string][]alertDetail)
		for _, d := range details {
			key := detailKey(d.name, d.severity)
			pending[key] = append(pending[key], d)
		}

		for _, row := range rows {
			record := types.VulnerabilityRecord{
				Name:          row.name,
				Severity:      row.severity,
				URLs:          []string{},
				InstanceCount: row.instances,
			}
			key := detailKey(row.name, row.severity)
			if queue := pending[key]; len(queue) > 0 {
				d := queue[0]
				pending[key] = queue[1:]
				record.URLs = d.urls
				record.Solution = d.solution
				if record.InstanceCount == nil {
					record.InstanceCount = d.instances
				}
			}
			records = append(records, record)
		}
	}

	actionable := types.FilterActionable(records)
	slog.Debug("structural extraction complete",
		"component", "extract",
		"alerts", len(rows),
		"details", len(details),
		"records", len(records),
		"actionable", len(actionable))

	return actionable, nil
}

func (d alertDetail) record() types.VulnerabilityRecord {
	return types.VulnerabilityRecord{
		Name:          d.name,
		Severity:      d.severity,
		URLs:          d.urls,
		Solution:      d.solution,
		InstanceCount: d.instances,
	}
}

func detailKey(name string, severity types.Severity) string {
	return strings.ToLower(name) + "|" + string(severity)
}

// parseAlertRows reads the alerts summary table. Header rows and rows without a
// name or a recognizable risk level are skipped.
func parseAlertRows(doc *html.Node) []alertRow {
	var rows []alertRow
	for _, table := range findTables(doc, alertsTableClass) {
		for i, tr := range tableRows(table) {
			cells := rowCells(tr)
			if len(cells) < 2 || cells[0].DataAtom == atom.Th {
				continue
			}

			name := textOf(cells[0])
			if a := findFirst(cells[0], atom.A); a != nil && textOf(a) != "" {
				name = textOf(a)
			}
			severity, ok := severityOf(cells[1])
			if name == "" || !ok {
				slog.Debug("skipping malformed alert row",
					"component", "extract",
					"row", i,
					"name", name)
				continue
			}

			row := alertRow{name: name, severity: severity}
			if len(cells) > 2 {
				row.instances = parseCount(textOf(cells[2]))
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// parseAlertDetails reads every results table. The first row holds the risk and
// the alert name in header cells; the remaining rows are label/value pairs.
func parseAlertDetails(doc *html.Node) []alertDetail {
	var details []alertDetail
	for _, table := range findTables(doc, resultsTableClass) {
		trs := tableRows(table)
		if len(trs) == 0 {
			continue
		}

		header := rowCells(trs[0])
		if len(header) < 2 {
			slog.Debug("skipping results table without header", "component", "extract")
			continue
		}
		severity, ok := severityOf(header[0])
		if !ok {
			severity, ok = severityOf(header[1])
		}
		name := textOf(header[1])
		if name == "" || !ok {
			slog.Debug("skipping malformed results table", "component", "extract", "name", name)
			continue
		}

		fields := make([][]string, 0, len(trs)-1)
		for _, tr := range trs[1:] {
			var texts []string
			for _, cell := range rowCells(tr) {
				texts = append(texts, textOf(cell))
			}
			fields = append(fields, texts)
		}

		detail := alertDetail{
			name:     name,
			severity: severity,
			urls:     nonEmpty(URLLookup.FindAll(fields)),
		}
		if solution, found := SolutionLookup.Find(fields); found {
			detail.solution = solution
		}
		if count, found := InstancesLookup.Find(fields); found {
			detail.instances = parseCount(count)
		}
		details = append(details, detail)
	}
	return details
}

// severityOf resolves a cell's severity from its risk class, falling back to its text
func severityOf(cell *html.Node) (types.Severity, bool) {
	if m := riskClassRegex.FindStringSubmatch(attr(cell, "class")); m != nil {
		level, _ := strconv.Atoi(m[1])
		if severity, err := types.FromRiskLevel(level); err == nil {
			return severity, true
		}
	}
	if severity, err := types.ParseSeverity(textOf(cell)); err == nil {
		return severity, true
	}
	return "", false
}

func parseCount(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// findTables returns every <table> whose class list contains class, in document order
func findTables(n *html.Node, class string) []*html.Node {
	var tables []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table && hasClass(n, class) {
			tables = append(tables, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return tables
}

// tableRows returns the rows of table without descending into nested tables
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func rowCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, c)
		}
	}
	return cells
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// textOf returns the text content of n with whitespace collapsed
func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Br, atom.Div, atom.P, atom.Li:
				sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
