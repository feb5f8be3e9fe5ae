// Package template renders evaluation prompt templates.
package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Context holds all variables available to a prompt template.
type Context struct {
	// Evaluation inputs, embedded verbatim
	SystemPrompt string
	UserPrompt   string
	ToolRequest  string
	Schema       string

	// Run variables
	Date  string
	Model string

	// Verdict markers the model must end its response with
	ValidMarker   string
	InvalidMarker string
}

// Template is a parsed prompt template.
type Template struct {
	raw    string
	parsed *template.Template
}

// Parse compiles tmpl using Go's text/template syntax: {{.ToolRequest}},
// {{.Date}}. Unknown fields are reported when the template is executed.
func Parse(name, tmpl string) (*Template, error) {
	t := &Template{raw: tmpl}

	// Fast path: no template delimiters means no work to do.
	if !strings.Contains(tmpl, "{{") {
		return t, nil
	}

	parsed, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("template: parse %s: %w", name, err)
	}
	t.parsed = parsed
	return t, nil
}

// Execute resolves the template against ctx.
func (t *Template) Execute(ctx *Context) (string, error) {
	if t.parsed == nil {
		return t.raw, nil
	}

	var buf bytes.Buffer
	if err := t.parsed.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}

	return buf.String(), nil
}

// Render parses and executes tmpl in one step.
func Render(tmpl string, ctx *Context) (string, error) {
	t, err := Parse("prompt", tmpl)
	if err != nil {
		return "", err
	}
	return t.Execute(ctx)
}
