// Package prompt composes the evaluation prompt sent to the model as the
// system message of a validation session.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/microsoft/toolcheck/internal/models"
	"github.com/microsoft/toolcheck/internal/template"
)

//go:embed evaluation.tmpl
var defaultTemplate string

// ErrMissingMarker is returned by NewComposer when a template does not
// instruct the model to emit both verdict markers.
var ErrMissingMarker = errors.New("prompt template must reference both {{.ValidMarker}} and {{.InvalidMarker}}")

// DefaultTemplate returns the built-in evaluation template text.
func DefaultTemplate() string {
	return defaultTemplate
}

// Composer renders evaluation prompts from a parsed template.
type Composer struct {
	tmpl *template.Template
}

var builtin = mustComposer(defaultTemplate)

func mustComposer(text string) *Composer {
	c, err := NewComposer(text)
	if err != nil {
		panic(fmt.Sprintf("built-in prompt template: %v", err))
	}
	return c
}

// NewComposer parses templateText and renders it once with placeholder
// markers; both must appear in the rendered output.
func NewComposer(templateText string) (*Composer, error) {
	tmpl, err := template.Parse("evaluation", templateText)
	if err != nil {
		return nil, err
	}

	sample := &template.Context{
		ValidMarker:   "\x00valid\x00",
		InvalidMarker: "\x00invalid\x00",
	}
	out, err := tmpl.Execute(sample)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(out, sample.ValidMarker) || !strings.Contains(out, sample.InvalidMarker) {
		return nil, ErrMissingMarker
	}

	return &Composer{tmpl: tmpl}, nil
}

// Compose renders the prompt for ec.
func (c *Composer) Compose(ec *models.EvaluationContext) (string, error) {
	return c.tmpl.Execute(contextFor(ec))
}

// Default returns the Composer for the built-in template.
func Default() *Composer {
	return builtin
}

// Compose renders ec with the built-in template.
func Compose(ec *models.EvaluationContext) string {
	out, err := builtin.Compose(ec)
	if err != nil {
		// The built-in template only references Context fields.
		panic(fmt.Sprintf("built-in prompt template: %v", err))
	}
	return out
}

func contextFor(ec *models.EvaluationContext) *template.Context {
	return &template.Context{
		Date:          ec.Date(),
		SystemPrompt:  ec.SystemPrompt(),
		UserPrompt:    ec.UserPrompt(),
		ToolRequest:   ec.ToolRequest(),
		Schema:        ec.Schema(),
		Model:         ec.ModelName(),
		ValidMarker:   models.ValidMarker,
		InvalidMarker: models.InvalidMarker,
	}
}
