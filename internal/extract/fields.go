package extract

import "strings"

// TieBreak decides which match wins when a label occurs more than once
type TieBreak int

const (
	// TieBreakLastMatch keeps the value of the last matching label cell.
	// ZAP reports sometimes repeat a label inside "Other information"; the later
	// occurrence is the real field.
	TieBreakLastMatch TieBreak = iota
	// TieBreakFirstMatch keeps the value of the first matching label cell
	TieBreakFirstMatch
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakLastMatch:
		return "last-match"
	case TieBreakFirstMatch:
		return "first-match"
	default:
		return "unknown"
	}
}

// FieldLookup locates a labelled field by the label's text rather than its position.
// A cell matches when its trimmed text equals Label (case-insensitive); the value is
// the cell that follows it in the same row.
type FieldLookup struct {
	Label    string
	TieBreak TieBreak
}

var (
	// SolutionLookup finds the remediation text of a detail table
	SolutionLookup = FieldLookup{Label: "Solution", TieBreak: TieBreakLastMatch}
	// InstancesLookup finds the instance count of a detail table
	InstancesLookup = FieldLookup{Label: "Instances", TieBreak: TieBreakFirstMatch}
	// URLLookup finds affected URLs; use FindAll
	URLLookup = FieldLookup{Label: "URL", TieBreak: TieBreakFirstMatch}
)

// Find returns the value selected by the tie-break policy.
// rows holds the text of each row's cells in document order.
func (l FieldLookup) Find(rows [][]string) (string, bool) {
	values := l.FindAll(rows)
	if len(values) == 0 {
		return "", false
	}
	if l.TieBreak == TieBreakFirstMatch {
		return values[0], true
	}
	return values[len(values)-1], true
}

// FindAll returns every value whose label matches, in document order.
// A label in the last cell of a row has no value and is ignored.
func (l FieldLookup) FindAll(rows [][]string) []string {
	var values []string
	for _, row := range rows {
		for i := 0; i < len(row)-1; i++ {
			if strings.EqualFold(strings.TrimSpace(row[i]), l.Label) {
				values = append(values, row[i+1])
			}
		}
	}
	return values
}
