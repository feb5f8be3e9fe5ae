package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/microsoft/toolcheck/internal/models"
)

// JUnitReport is a <testsuites> document holding one suite with one case:
// the validated tool request. CI systems show an Invalid verdict as a failed
// test.
type JUnitReport struct {
	XMLName  xml.Name   `xml:"testsuites"`
	Tests    int        `xml:"tests,attr"`
	Failures int        `xml:"failures,attr"`
	Time     float64    `xml:"time,attr"`
	Suite    JUnitSuite `xml:"testsuite"`
}

type JUnitSuite struct {
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property"`
	Case       JUnitCase       `xml:"testcase"`
}

type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// JUnitCase is named after the tool request file; its directory is the
// classname so requests in different folders stay distinct.
type JUnitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

// NewJUnitReport builds the JUnit view of o.
func NewJUnitReport(o *Outcome) *JUnitReport {
	secs := o.Duration.Seconds()
	rec := o.Record

	c := JUnitCase{
		Name:      filepath.Base(rec.ToolRequestPath),
		Classname: filepath.ToSlash(filepath.Dir(rec.ToolRequestPath)),
		Time:      secs,
	}
	if rec.Verdict != models.VerdictValid {
		var text strings.Builder
		for _, issue := range o.Issues {
			text.WriteString("[ISSUE] " + issue + "\n")
		}
		text.WriteString("Full response: " + rec.ReportFilePath + "\n")

		c.Failure = &JUnitFailure{
			Message: "tool request is invalid",
			Type:    "InvalidToolRequest",
			Text:    text.String(),
		}
	}

	failures := 0
	if c.Failure != nil {
		failures = 1
	}

	return &JUnitReport{
		Tests:    1,
		Failures: failures,
		Time:     secs,
		Suite: JUnitSuite{
			Name:      "toolcheck",
			Tests:     1,
			Failures:  failures,
			Time:      secs,
			Timestamp: rec.Timestamp.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{"provider", o.Provider},
				{"model", o.Model},
				{"verdict", rec.Verdict.String()},
				{"report", rec.ReportFilePath},
			},
			Case: c,
		},
	}
}

// WriteJUnit writes o as a JUnit XML file, replacing any existing one.
func WriteJUnit(o *Outcome, path string) error {
	body, err := xml.MarshalIndent(NewJUnitReport(o), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JUnit report: %w", err)
	}
	if err := os.WriteFile(path, []byte(xml.Header+string(body)+"\n"), 0o644); err != nil {
		return &PersistenceError{Op: "writing JUnit report", Path: path, Err: err}
	}
	return nil
}
