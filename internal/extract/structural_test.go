package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapissues/zapissues/internal/types"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestStructuralExtractor_Report(t *testing.T) {
	records, err := NewStructuralExtractor().Extract(context.Background(), readFixture(t, "zap-report.html"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	xss := records[0]
	assert.Equal(t, "Cross Site Scripting (Reflected)", xss.Name)
	assert.Equal(t, types.SeverityHigh, xss.Severity)
	assert.Equal(t, []string{
		"https://shop.example.com/search?q=test",
		"https://shop.example.com/login",
	}, xss.URLs)
	assert.Equal(t, "Phase: Architecture and Design Use a vetted library or framework that does not allow this weakness to occur.", xss.Solution)
	require.NotNil(t, xss.InstanceCount)
	assert.Equal(t, 2, *xss.InstanceCount)

	csp := records[1]
	assert.Equal(t, "Content Security Policy (CSP) Header Not Set", csp.Name)
	assert.Equal(t, types.SeverityMedium, csp.Severity)
	assert.Len(t, csp.URLs, 3)
	require.NotNil(t, csp.InstanceCount)
	assert.Equal(t, 3, *csp.InstanceCount)
}

func TestStructuralExtractor_SolutionUsesLastLabel(t *testing.T) {
	records, err := NewStructuralExtractor().Extract(context.Background(), readFixture(t, "zap-report.html"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t,
		"Ensure that your web server, application server, load balancer, etc. is configured to set the Content-Security-Policy header.",
		records[1].Solution)
}

func TestStructuralExtractor_SeverityFilter(t *testing.T) {
	records, err := NewStructuralExtractor().Extract(context.Background(), readFixture(t, "zap-report.html"))
	require.NoError(t, err)

	for _, r := range records {
		assert.True(t, r.Severity.IsActionable(), "record %q has severity %s", r.Name, r.Severity)
		assert.NotEqual(t, "Unclassified Finding", r.Name)
		assert.NotEmpty(t, r.Name)
	}
}

func TestStructuralExtractor_Idempotent(t *testing.T) {
	report := readFixture(t, "zap-report.html")
	e := NewStructuralExtractor()

	first, err := e.Extract(context.Background(), report)
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), report)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStructuralExtractor_DetailsOnly(t *testing.T) {
	records, err := NewStructuralExtractor().Extract(context.Background(), readFixture(t, "zap-details-only.html"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Missing CSP Header", records[0].Name)
	assert.Equal(t, types.SeverityHigh, records[0].Severity)
	assert.Equal(t, []string{"https://app.example.com/"}, records[0].URLs)
	assert.Equal(t, "Set a Content-Security-Policy header.", records[0].Solution)
	assert.Nil(t, records[0].InstanceCount)

	assert.Equal(t, "Absence of Anti-CSRF Tokens", records[1].Name)
	assert.Equal(t, types.SeverityMedium, records[1].Severity)
	assert.Empty(t, records[1].Solution)
	require.NotNil(t, records[1].InstanceCount)
	assert.Equal(t, 1, *records[1].InstanceCount)
}

func TestStructuralExtractor_AlertWithoutDetail(t *testing.T) {
	report := []byte(`<html><body><table class="alerts">
<tr><th>Name</th><th>Risk Level</th><th>Number of Instances</th></tr>
<tr><td><a href="#1">SQL Injection</a></td><td class="risk-3">High</td><td>n/a</td></tr>
<tr><td>Path Traversal</td><td>medium</td><td>4</td></tr>
</table></body></html>`)

	records, err := NewStructuralExtractor().Extract(context.Background(), report)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "SQL Injection", records[0].Name)
	assert.NotNil(t, records[0].URLs)
	assert.Empty(t, records[0].URLs)
	assert.Nil(t, records[0].InstanceCount)

	assert.Equal(t, "Path Traversal", records[1].Name)
	assert.Equal(t, types.SeverityMedium, records[1].Severity)
	require.NotNil(t, records[1].InstanceCount)
	assert.Equal(t, 4, *records[1].InstanceCount)
}

func TestStructuralExtractor_NoFindings(t *testing.T) {
	records, err := NewStructuralExtractor().Extract(context.Background(), []byte("<html><body><p>clean</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStructuralExtractor_EmptyReport(t *testing.T) {
	_, err := NewStructuralExtractor().Extract(context.Background(), []byte("  \n"))
	assert.ErrorIs(t, err, ErrEmptyReport)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Structural ")
	require.NoError(t, err)
	assert.Equal(t, ModeStructural, m)

	m, err = ParseMode("assisted")
	require.NoError(t, err)
	assert.Equal(t, ModeAssisted, m)

	_, err = ParseMode("regex")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	e, err := New(ModeStructural, nil)
	require.NoError(t, err)
	assert.IsType(t, &StructuralExtractor{}, e)

	e, err = New(ModeAssisted, nil)
	require.NoError(t, err)
	assert.IsType(t, &AssistedExtractor{}, e)

	_, err = New(Mode("bogus"), nil)
	assert.Error(t, err)
}
