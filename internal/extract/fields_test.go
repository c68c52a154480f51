package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldLookup_Find(t *testing.T) {
	rows := [][]string{
		{"Description", "Some text"},
		{"Solution", "first"},
		{"Other information", "Solution", "second"},
		{"Reference", "https://example.com"},
	}

	tests := []struct {
		name   string
		lookup FieldLookup
		want   string
		found  bool
	}{
		{"last match wins", FieldLookup{Label: "Solution", TieBreak: TieBreakLastMatch}, "second", true},
		{"first match wins", FieldLookup{Label: "Solution", TieBreak: TieBreakFirstMatch}, "first", true},
		{"label is case-insensitive", FieldLookup{Label: "reference"}, "https://example.com", true},
		{"missing label", FieldLookup{Label: "Instances"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := tt.lookup.Find(rows)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldLookup_DefaultPolicies(t *testing.T) {
	assert.Equal(t, TieBreakLastMatch, SolutionLookup.TieBreak)
	assert.Equal(t, TieBreakFirstMatch, InstancesLookup.TieBreak)
	assert.Equal(t, "last-match", TieBreakLastMatch.String())
	assert.Equal(t, "first-match", TieBreakFirstMatch.String())
}

func TestFieldLookup_FindAll(t *testing.T) {
	rows := [][]string{
		{"URL", "https://a.example.com/"},
		{"Method", "GET"},
		{"URL", "https://b.example.com/"},
		{"URL"}, // label without a value cell
	}

	assert.Equal(t, []string{"https://a.example.com/", "https://b.example.com/"}, URLLookup.FindAll(rows))
	assert.Empty(t, URLLookup.FindAll(nil))
}
