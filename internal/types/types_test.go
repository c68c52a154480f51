package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestVulnerabilityRecordValidate(t *testing.T) {
	tests := []struct {
		name     string
		record   VulnerabilityRecord
		errorMsg string
	}{
		{
			name:   "valid record",
			record: VulnerabilityRecord{Name: "Missing CSP Header", Severity: SeverityHigh},
		},
		{
			name:     "empty name",
			record:   VulnerabilityRecord{Name: "  ", Severity: SeverityHigh},
			errorMsg: "name is required",
		},
		{
			name:     "unknown severity",
			record:   VulnerabilityRecord{Name: "X", Severity: "Critical"},
			errorMsg: "invalid severity",
		},
		{
			name:     "negative instance count",
			record:   VulnerabilityRecord{Name: "X", Severity: SeverityLow, InstanceCount: intPtr(-1)},
			errorMsg: "instance_count cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"High", SeverityHigh, false},
		{"MEDIUM", SeverityMedium, false},
		{" low ", SeverityLow, false},
		{"info", SeverityInformational, false},
		{"Informational", SeverityInformational, false},
		{"critical", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeverity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromRiskLevel(t *testing.T) {
	for level, want := range map[int]Severity{
		3: SeverityHigh,
		2: SeverityMedium,
		1: SeverityLow,
		0: SeverityInformational,
	} {
		got, err := FromRiskLevel(level)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := FromRiskLevel(-1)
	assert.Error(t, err)
}

func TestFilterActionable(t *testing.T) {
	records := []VulnerabilityRecord{
		{Name: "a", Severity: SeverityLow},
		{Name: "b", Severity: SeverityHigh},
		{Name: "c", Severity: SeverityInformational},
		{Name: "d", Severity: SeverityMedium},
	}

	got := FilterActionable(records)

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "d", got[1].Name)
	for _, r := range got {
		assert.True(t, r.Severity.IsActionable())
	}
}

func TestVulnerabilityRecordJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(VulnerabilityRecord{
		Name:     "X",
		Severity: SeverityMedium,
		URLs:     []string{"https://example.com"},
		Solution: "fix it",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"X","severity":"Medium","urls":["https://example.com"],"solution":"fix it"}`, string(data))

	data, err = json.Marshal(VulnerabilityRecord{Name: "Y", Severity: SeverityHigh, InstanceCount: intPtr(3)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"instanceCount":3`)
}

func TestIssueDraftValidate(t *testing.T) {
	assert.NoError(t, (&IssueDraft{Title: "t"}).Validate())
	assert.Error(t, (&IssueDraft{Title: " "}).Validate())
}
