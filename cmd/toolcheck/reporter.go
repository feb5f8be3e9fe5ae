package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/microsoft/toolcheck/internal/publish"
	"github.com/microsoft/toolcheck/internal/reporting"
	"github.com/microsoft/toolcheck/internal/session"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func printValidating(w io.Writer, toolRequestPath, model string) {
	fmt.Fprintf(w, "Validating tool request: %s using %s\n", toolRequestPath, model) //nolint:errcheck
}

func printSummary(w io.Writer, o *reporting.Outcome, responseLength int) {
	fmt.Fprintln(w)                                                                                      //nolint:errcheck
	fmt.Fprint(w, reporting.FormatSummaryReport(o))                                                      //nolint:errcheck
	printer.Fprintf(w, "\nResponse: %d characters, %d issue(s) listed\n", responseLength, len(o.Issues)) //nolint:errcheck
}

func printUploads(w io.Writer, uploads []publish.Uploaded, elapsed time.Duration) {
	if len(uploads) == 0 {
		fmt.Fprintln(w, "Nothing uploaded.") //nolint:errcheck
		return
	}

	width := runewidth.StringWidth("File")
	for _, u := range uploads {
		width = max(width, runewidth.StringWidth(u.Path))
	}

	fmt.Fprintf(w, "%s  %s\n", padRight("File", width), "URL") //nolint:errcheck
	fmt.Fprintln(w, strings.Repeat("─", width+2+len("URL")))   //nolint:errcheck
	for _, u := range uploads {
		fmt.Fprintf(w, "%s  %s\n", padRight(u.Path, width), u.URL) //nolint:errcheck
	}
	printer.Fprintf(w, "\n%d file(s) uploaded in %s\n", len(uploads), formatDuration(elapsed)) //nolint:errcheck
}

func printSessions(w io.Writer, files []session.LogFile) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No session logs found.") //nolint:errcheck
		return
	}

	const nameWidth = 40
	fmt.Fprintf(w, "%s %-8s %-8s %s\n", padRight("File", nameWidth), "Events", "Verdict", "Modified") //nolint:errcheck
	fmt.Fprintln(w, strings.Repeat("─", nameWidth+38))                                                //nolint:errcheck
	for _, f := range files {
		verdict := f.Verdict
		if verdict == "" {
			verdict = "-"
		}
		printer.Fprintf(w, "%s %-8d %-8s %s\n", //nolint:errcheck
			padRight(truncateName(f.Name, nameWidth), nameWidth), f.Events, verdict, f.ModTime.Format("2006-01-02 15:04:05"))
	}
}

// formatDuration formats a duration in a consistent, human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Millisecond).String()
}

// truncateName shortens a name to maxLen runes, replacing the last rune with "…" if needed.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
