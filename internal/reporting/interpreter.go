package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/microsoft/toolcheck/internal/models"
)

// Outcome is everything known about one finished batch validation.
type Outcome struct {
	Record        models.ReportRecord
	Provider      string
	Model         string
	Duration      time.Duration
	Issues        []string
	AggregatePath string
}

// NewOutcome builds an Outcome for rec, extracting issues from response.
func NewOutcome(rec models.ReportRecord, response, provider, model, aggregatePath string, duration time.Duration) *Outcome {
	return &Outcome{
		Record:        rec,
		Provider:      provider,
		Model:         model,
		Duration:      duration,
		Issues:        Issues(response),
		AggregatePath: aggregatePath,
	}
}

// InterpretVerdict returns a plain-language explanation of a verdict.
func InterpretVerdict(v models.Verdict, issueCount int) string {
	switch {
	case v == models.VerdictValid && issueCount == 0:
		return "The model found no problems with the tool request."
	case v == models.VerdictValid:
		return "The model accepted the tool request but noted some points to review."
	case issueCount == 0:
		return "The model rejected the tool request. See the report for its reasoning."
	default:
		return "The model rejected the tool request."
	}
}

// FormatSummaryReport produces a plain-language summary of an Outcome.
func FormatSummaryReport(o *Outcome) string {
	var b strings.Builder

	b.WriteString("=== Validation Summary ===\n\n")

	b.WriteString(fmt.Sprintf("Tool request: %s\n", o.Record.ToolRequestPath))
	b.WriteString(fmt.Sprintf("Verdict:      %s (%s)\n", o.Record.Verdict, InterpretVerdict(o.Record.Verdict, len(o.Issues))))
	b.WriteString(fmt.Sprintf("Model:        %s/%s\n", o.Provider, o.Model))
	b.WriteString(fmt.Sprintf("Duration:     %v\n", o.Duration.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf("Report:       %s\n", o.Record.ReportFilePath))
	if o.AggregatePath != "" {
		b.WriteString(fmt.Sprintf("Aggregate:    %s\n", o.AggregatePath))
	}

	if len(o.Issues) > 0 {
		b.WriteString("\nIssues:\n")
		for _, issue := range o.Issues {
			b.WriteString(fmt.Sprintf("  • %s\n", issue))
		}
	}

	return b.String()
}
