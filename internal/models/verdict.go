package models

import "time"

// Marker strings the model is asked to end its response with.
const (
	ValidMarker   = "TOOL REQUEST VALID"
	InvalidMarker = "TOOL REQUEST INVALID"
)

// Verdict is the pass/fail outcome derived from a model response.
type Verdict int

const (
	VerdictInvalid Verdict = iota
	VerdictValid
)

// String returns the label used in reports ("Valid" or "Invalid").
func (v Verdict) String() string {
	if v == VerdictValid {
		return "Valid"
	}
	return "Invalid"
}

// ReportRecord is one row of the aggregate report.
type ReportRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	ToolRequestPath string    `json:"tool_request_path"`
	Verdict         Verdict   `json:"verdict"`
	ReportFilePath  string    `json:"report_file_path"`
}
