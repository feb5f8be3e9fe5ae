package reporting

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/microsoft/toolcheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJUnitReport_Valid(t *testing.T) {
	r := NewJUnitReport(sampleOutcome(models.VerdictValid))

	assert.Equal(t, 1, r.Tests)
	assert.Zero(t, r.Failures)
	assert.Equal(t, "toolcheck", r.Suite.Name)
	assert.Equal(t, "2025-08-06T14:03:09Z", r.Suite.Timestamp)
	assert.Contains(t, r.Suite.Properties, JUnitProperty{Name: "verdict", Value: "Valid"})
	assert.Contains(t, r.Suite.Properties, JUnitProperty{Name: "model", Value: "gpt-4.1"})

	c := r.Suite.Case
	assert.Equal(t, "tool.json", c.Name)
	assert.Equal(t, "requests/weather", c.Classname)
	assert.InDelta(t, 1.234567, c.Time, 1e-9)
	assert.Nil(t, c.Failure)
}

func TestNewJUnitReport_Invalid(t *testing.T) {
	r := NewJUnitReport(sampleOutcome(models.VerdictInvalid, "city is missing", "units must be metric"))

	assert.Equal(t, 1, r.Failures)
	assert.Equal(t, 1, r.Suite.Failures)
	require.NotNil(t, r.Suite.Case.Failure)
	assert.Equal(t, "InvalidToolRequest", r.Suite.Case.Failure.Type)
	assert.Equal(t,
		"[ISSUE] city is missing\n[ISSUE] units must be metric\nFull response: requests/weather/validation-report.txt\n",
		r.Suite.Case.Failure.Text)
}

func TestWriteJUnit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, WriteJUnit(sampleOutcome(models.VerdictInvalid), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), len(xml.Header))
	assert.Equal(t, xml.Header, string(data[:len(xml.Header)]))
	assert.Contains(t, string(data), `<testcase name="tool.json" classname="requests/weather"`)
	assert.NotContains(t, string(data), "stale")

	var parsed JUnitReport
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, 1, parsed.Failures)
	assert.Equal(t, "tool.json", parsed.Suite.Case.Name)
	require.NotNil(t, parsed.Suite.Case.Failure)
}

func TestWriteJUnit_MissingDirectory(t *testing.T) {
	err := WriteJUnit(sampleOutcome(models.VerdictValid), filepath.Join(t.TempDir(), "no", "junit.xml"))

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "writing JUnit report", pe.Op)
}
