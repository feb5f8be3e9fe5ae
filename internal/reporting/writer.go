// Package reporting classifies validation responses and persists them as a
// per-request text report plus a shared, append-only HTML report.
package reporting

import (
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/microsoft/toolcheck/internal/models"
)

const (
	// DefaultAggregateName is the aggregate report created in the working
	// directory.
	DefaultAggregateName = "validation-report.html"

	// DefaultPerRequestName is the report written next to each tool request.
	DefaultPerRequestName = "validation-report.txt"

	// TimestampLayout is used for the Date column of the aggregate report.
	TimestampLayout = "2006-01-02 15:04:05"
)

// AggregateHeader is written once, when the aggregate report is created.
const AggregateHeader = "<html><head><title>Validation Report</title></head><body>" +
	"<h1>Validation Report</h1><table border='1'>" +
	"<tr><th>Date</th><th>Tool Request</th><th>Status</th></tr>\n"

// PersistenceError is returned when a report file can't be written.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Writer persists validation outcomes. There is no locking across
// processes; concurrent runs against the same aggregate report are not
// supported.
type Writer struct {
	// AggregatePath is the shared HTML report.
	AggregatePath string

	// PerRequestName is the file name of the report written next to each
	// tool request.
	PerRequestName string

	// Now returns the current time. Tests replace it.
	Now func() time.Time
}

// NewWriter creates a Writer. Empty arguments select the defaults.
func NewWriter(aggregatePath, perRequestName string) *Writer {
	if aggregatePath == "" {
		aggregatePath = DefaultAggregateName
	}
	if perRequestName == "" {
		perRequestName = DefaultPerRequestName
	}

	return &Writer{
		AggregatePath:  aggregatePath,
		PerRequestName: perRequestName,
		Now:            time.Now,
	}
}

// PerRequestReportPath returns where the report for toolRequestPath goes.
func (w *Writer) PerRequestReportPath(toolRequestPath string) string {
	return filepath.Join(filepath.Dir(toolRequestPath), w.PerRequestName)
}

// WritePerRequestReport writes response verbatim next to the tool request,
// replacing any previous report, and returns the report's path.
func (w *Writer) WritePerRequestReport(toolRequestPath, response string) (string, error) {
	path := w.PerRequestReportPath(toolRequestPath)

	if err := os.WriteFile(path, []byte(response), 0644); err != nil {
		return "", &PersistenceError{Op: "writing report", Path: path, Err: err}
	}

	return path, nil
}

// EnsureAggregateReportExists creates the aggregate report with its header
// if it doesn't exist yet. An existing file is never modified.
func (w *Writer) EnsureAggregateReportExists() error {
	f, err := os.OpenFile(w.AggregatePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)

	if errors.Is(err, fs.ErrExist) {
		return nil
	}

	if err != nil {
		return &PersistenceError{Op: "creating aggregate report", Path: w.AggregatePath, Err: err}
	}

	if _, err := f.WriteString(AggregateHeader); err != nil {
		f.Close() //nolint:errcheck
		return &PersistenceError{Op: "writing aggregate header", Path: w.AggregatePath, Err: err}
	}

	if err := f.Close(); err != nil {
		return &PersistenceError{Op: "closing aggregate report", Path: w.AggregatePath, Err: err}
	}

	return nil
}

// AppendAggregateRow adds one row for rec to the end of the aggregate
// report, which must already exist.
func (w *Writer) AppendAggregateRow(rec models.ReportRecord) error {
	f, err := os.OpenFile(w.AggregatePath, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return &PersistenceError{Op: "opening aggregate report", Path: w.AggregatePath, Err: err}
	}

	if _, err := f.WriteString(FormatRow(rec)); err != nil {
		f.Close() //nolint:errcheck
		return &PersistenceError{Op: "appending aggregate row", Path: w.AggregatePath, Err: err}
	}

	if err := f.Close(); err != nil {
		return &PersistenceError{Op: "closing aggregate report", Path: w.AggregatePath, Err: err}
	}

	return nil
}

// Record classifies response and persists it as a per-request report plus
// one aggregate row. Either both are written or neither: the aggregate file
// is made ready before the report is written, and the report is removed
// again if the row can't be appended.
func (w *Writer) Record(toolRequestPath, response string) (*models.ReportRecord, error) {
	verdict := Classify(response)

	if err := w.EnsureAggregateReportExists(); err != nil {
		return nil, err
	}

	reportPath, err := w.WritePerRequestReport(toolRequestPath, response)
	if err != nil {
		return nil, err
	}

	rec := &models.ReportRecord{
		Timestamp:       w.now().UTC(),
		ToolRequestPath: toolRequestPath,
		Verdict:         verdict,
		ReportFilePath:  reportPath,
	}

	if err := w.AppendAggregateRow(*rec); err != nil {
		if rmErr := os.Remove(reportPath); rmErr != nil {
			slog.Warn("Failed to remove report after aggregate failure", "path", reportPath, "error", rmErr)
		}
		return nil, err
	}

	return rec, nil
}

func (w *Writer) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

// FormatRow renders rec as one aggregate report row, newline terminated.
// Paths are HTML-escaped in both the link target and the link text.
func FormatRow(rec models.ReportRecord) string {
	return fmt.Sprintf("<tr><td>%s</td><td><a href=\"%s\">%s</a></td><td><a href=\"%s\">%s</a></td></tr>\n",
		rec.Timestamp.UTC().Format(TimestampLayout),
		html.EscapeString(rec.ToolRequestPath),
		html.EscapeString(filepath.Base(rec.ToolRequestPath)),
		html.EscapeString(rec.ReportFilePath),
		rec.Verdict,
	)
}
