// Package inputs reads the texts that make up an evaluation.
package inputs

import (
	"fmt"
	"os"

	"github.com/microsoft/toolcheck/internal/models"
)

// InputNotFoundError is returned when an input file is not configured or
// can't be read.
type InputNotFoundError struct {
	Name string
	Path string
	Err  error
}

func (e *InputNotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s path is not configured", e.Name)
	}
	return fmt.Sprintf("reading %s %q: %v", e.Name, e.Path, e.Err)
}

func (e *InputNotFoundError) Unwrap() error {
	return e.Err
}

// Paths locates the four evaluation inputs.
type Paths struct {
	Schema       string
	SystemPrompt string
	UserPrompt   string
	ToolRequest  string
}

// ReadText returns the content of the file at path verbatim.
func ReadText(name, path string) (string, error) {
	if path == "" {
		return "", &InputNotFoundError{Name: name}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &InputNotFoundError{Name: name, Path: path, Err: err}
	}
	return string(data), nil
}

// Load reads all four inputs. It stops at the first file that can't be read.
func Load(p Paths) (models.EvaluationInputs, error) {
	var in models.EvaluationInputs

	files := []struct {
		name string
		path string
		dst  *string
	}{
		{"schema", p.Schema, &in.Schema},
		{"system prompt", p.SystemPrompt, &in.SystemPrompt},
		{"user prompt", p.UserPrompt, &in.UserPrompt},
		{"tool request", p.ToolRequest, &in.ToolRequest},
	}

	for _, f := range files {
		text, err := ReadText(f.name, f.path)
		if err != nil {
			return models.EvaluationInputs{}, err
		}
		*f.dst = text
	}

	return in, nil
}
