package reporting

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/microsoft/toolcheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 8, 6, 14, 3, 9, 0, time.UTC)

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()

	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, DefaultAggregateName), "")
	w.Now = func() time.Time { return fixedNow }
	return w, dir
}

func writeToolRequest(t *testing.T, dir string) string {
	t.Helper()

	reqDir := filepath.Join(dir, "requests")
	require.NoError(t, os.MkdirAll(reqDir, 0755))
	path := filepath.Join(reqDir, "tool.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"get_weather"}`), 0644))
	return path
}

func TestNewWriter_Defaults(t *testing.T) {
	w := NewWriter("", "")
	assert.Equal(t, "validation-report.html", w.AggregatePath)
	assert.Equal(t, "validation-report.txt", w.PerRequestName)
	assert.NotNil(t, w.Now)
}

func TestWritePerRequestReport_Overwrites(t *testing.T) {
	w, dir := newTestWriter(t)
	req := writeToolRequest(t, dir)

	path, err := w.WritePerRequestReport(req, "a much longer first response\nTOOL REQUEST INVALID")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "requests", "validation-report.txt"), path)

	_, err = w.WritePerRequestReport(req, "TOOL REQUEST VALID")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "TOOL REQUEST VALID", string(data))
}

func TestWritePerRequestReport_MissingDir(t *testing.T) {
	w, dir := newTestWriter(t)

	_, err := w.WritePerRequestReport(filepath.Join(dir, "nope", "tool.json"), "x")

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, filepath.Join(dir, "nope", "validation-report.txt"), pe.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestEnsureAggregateReportExists_Idempotent(t *testing.T) {
	w, _ := newTestWriter(t)

	require.NoError(t, w.EnsureAggregateReportExists())
	require.NoError(t, w.EnsureAggregateReportExists())

	data, err := os.ReadFile(w.AggregatePath)
	require.NoError(t, err)
	assert.Equal(t, AggregateHeader, string(data))
	assert.Equal(t, 1, strings.Count(string(data), "<th>Date</th>"))
}

func TestEnsureAggregateReportExists_LeavesExistingFile(t *testing.T) {
	w, _ := newTestWriter(t)

	existing := "hand edited, not even html\n"
	require.NoError(t, os.WriteFile(w.AggregatePath, []byte(existing), 0644))

	require.NoError(t, w.EnsureAggregateReportExists())

	data, err := os.ReadFile(w.AggregatePath)
	require.NoError(t, err)
	assert.Equal(t, existing, string(data))
}

func TestEnsureAggregateReportExists_Error(t *testing.T) {
	w, dir := newTestWriter(t)
	w.AggregatePath = filepath.Join(dir, "missing", "report.html")

	err := w.EnsureAggregateReportExists()

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "creating aggregate report", pe.Op)
}

func TestAppendAggregateRow_AppendOnly(t *testing.T) {
	w, _ := newTestWriter(t)
	require.NoError(t, w.EnsureAggregateReportExists())

	const n = 5
	var snapshots []string

	for i := 0; i < n; i++ {
		verdict := models.VerdictValid
		if i%2 == 1 {
			verdict = models.VerdictInvalid
		}

		require.NoError(t, w.AppendAggregateRow(models.ReportRecord{
			Timestamp:       fixedNow.Add(time.Duration(i) * time.Second),
			ToolRequestPath: filepath.Join("requests", "tool"+string(rune('a'+i))+".json"),
			Verdict:         verdict,
			ReportFilePath:  filepath.Join("requests", "validation-report.txt"),
		}))

		data, err := os.ReadFile(w.AggregatePath)
		require.NoError(t, err)
		snapshots = append(snapshots, string(data))
	}

	for i := 1; i < n; i++ {
		assert.True(t, strings.HasPrefix(snapshots[i], snapshots[i-1]), "row %d rewrote earlier content", i)
	}

	final := snapshots[n-1]
	assert.True(t, strings.HasPrefix(final, AggregateHeader))
	assert.Equal(t, n, strings.Count(final, "<tr><td>"))

	rows := strings.Split(strings.TrimSuffix(strings.TrimPrefix(final, AggregateHeader), "\n"), "\n")
	require.Len(t, rows, n)
	assert.Contains(t, rows[0], "2025-08-06 14:03:09")
	assert.Contains(t, rows[0], ">toola.json</a>")
	assert.Contains(t, rows[1], ">Invalid</a>")
	assert.Contains(t, rows[4], "2025-08-06 14:03:13")
}

func TestAppendAggregateRow_RequiresExistingReport(t *testing.T) {
	w, _ := newTestWriter(t)

	err := w.AppendAggregateRow(models.ReportRecord{Timestamp: fixedNow})

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, statErr := os.Stat(w.AggregatePath)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "append never creates the file")
}

func TestFormatRow(t *testing.T) {
	row := FormatRow(models.ReportRecord{
		Timestamp:       time.Date(2025, 8, 6, 16, 3, 9, 0, time.FixedZone("CEST", 2*60*60)),
		ToolRequestPath: "requests/tool.json",
		Verdict:         models.VerdictValid,
		ReportFilePath:  "requests/validation-report.txt",
	})

	assert.Equal(t, `<tr><td>2025-08-06 14:03:09</td><td><a href="requests/tool.json">tool.json</a></td><td><a href="requests/validation-report.txt">Valid</a></td></tr>`+"\n", row)
}

func TestFormatRow_EscapesPaths(t *testing.T) {
	row := FormatRow(models.ReportRecord{
		Timestamp:       fixedNow,
		ToolRequestPath: `odd/"<b>&.json`,
		Verdict:         models.VerdictInvalid,
		ReportFilePath:  `odd/validation-report.txt`,
	})

	assert.Contains(t, row, `href="odd/&#34;&lt;b&gt;&amp;.json"`)
	assert.Contains(t, row, `>&#34;&lt;b&gt;&amp;.json</a>`)
	assert.NotContains(t, row, "<b>")
}

func TestRecord_ValidScenario(t *testing.T) {
	w, dir := newTestWriter(t)
	req := writeToolRequest(t, dir)
	response := "All required fields are present.\nTOOL REQUEST VALID"

	rec, err := w.Record(req, response)
	require.NoError(t, err)

	assert.Equal(t, models.VerdictValid, rec.Verdict)
	assert.Equal(t, fixedNow, rec.Timestamp)
	assert.Equal(t, req, rec.ToolRequestPath)

	report, err := os.ReadFile(rec.ReportFilePath)
	require.NoError(t, err)
	assert.Equal(t, response, string(report))

	agg, err := os.ReadFile(w.AggregatePath)
	require.NoError(t, err)
	assert.Equal(t, AggregateHeader+FormatRow(*rec), string(agg))
	assert.Contains(t, string(agg), `<a href="`+rec.ReportFilePath+`">Valid</a>`)
	assert.Contains(t, string(agg), `<a href="`+req+`">tool.json</a>`)
}

func TestRecord_NoMarkerIsInvalid(t *testing.T) {
	w, dir := newTestWriter(t)
	req := writeToolRequest(t, dir)

	rec, err := w.Record(req, "The request looks odd but I won't say.")
	require.NoError(t, err)
	assert.Equal(t, models.VerdictInvalid, rec.Verdict)

	agg, err := os.ReadFile(w.AggregatePath)
	require.NoError(t, err)
	assert.Contains(t, string(agg), ">Invalid</a>")
}

func TestRecord_AppendsAcrossRuns(t *testing.T) {
	w, dir := newTestWriter(t)
	req := writeToolRequest(t, dir)

	for i := 0; i < 3; i++ {
		_, err := w.Record(req, "TOOL REQUEST VALID")
		require.NoError(t, err)
	}

	agg, err := os.ReadFile(w.AggregatePath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(agg), "<h1>Validation Report</h1>"))
	assert.Equal(t, 3, strings.Count(string(agg), "<tr><td>"))
}

func TestRecord_PerRequestFailureSkipsAggregate(t *testing.T) {
	w, dir := newTestWriter(t)

	_, err := w.Record(filepath.Join(dir, "missing", "tool.json"), "TOOL REQUEST VALID")

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "writing report", pe.Op)

	agg, readErr := os.ReadFile(w.AggregatePath)
	require.NoError(t, readErr)
	assert.Equal(t, AggregateHeader, string(agg), "no row without a report")
}

func TestRecord_AggregateFailureLeavesNoReport(t *testing.T) {
	t.Run("aggregate cannot be created", func(t *testing.T) {
		dir := t.TempDir()
		toolRequest := writeToolRequest(t, dir)
		w := NewWriter(filepath.Join(dir, "nodir", "agg.html"), "")

		rec, err := w.Record(toolRequest, "TOOL REQUEST VALID")
		require.Nil(t, rec)

		var pe *PersistenceError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "creating aggregate report", pe.Op)

		_, statErr := os.Stat(w.PerRequestReportPath(toolRequest))
		assert.True(t, errors.Is(statErr, fs.ErrNotExist))
	})

	t.Run("row cannot be appended", func(t *testing.T) {
		dir := t.TempDir()
		toolRequest := writeToolRequest(t, dir)

		// A directory at the aggregate path counts as existing but can't be
		// opened for writing.
		aggPath := filepath.Join(dir, "agg.html")
		require.NoError(t, os.Mkdir(aggPath, 0o755))
		w := NewWriter(aggPath, "")

		rec, err := w.Record(toolRequest, "TOOL REQUEST INVALID")
		require.Nil(t, rec)

		var pe *PersistenceError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "opening aggregate report", pe.Op)

		_, statErr := os.Stat(w.PerRequestReportPath(toolRequest))
		assert.True(t, errors.Is(statErr, fs.ErrNotExist))
	})
}
