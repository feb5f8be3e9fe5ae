package execution

//go:generate go tool mockgen -destination=mocks/engine.go -package=mocks . ChatEngine,Stream

import (
	"context"
	"fmt"

	"github.com/microsoft/toolcheck/internal/models"
)

// ChatEngine is the LLM chat capability used by a validation session.
type ChatEngine interface {
	// Name is the provider name, e.g. "openai".
	Name() string

	// Model is the model identifier sent with every request.
	Model() string

	// Stream sends the whole conversation and returns the reply as a stream of
	// text fragments. The returned Stream must be closed by the caller.
	Stream(ctx context.Context, messages []models.Message) (Stream, error)

	// Close releases any resources held by the engine.
	Close() error
}

// Stream is a finite sequence of response fragments. It is consumed exactly
// once; after Next returns false, Err reports why.
type Stream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// ModelInvocationError is returned when a call to the model fails, either
// when starting the request or while reading the stream.
type ModelInvocationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("%s model %q failed: %v", e.Provider, e.Model, e.Err)
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Err
}

// NewModelInvocationError wraps err with the engine's identity. An err that
// is already a *ModelInvocationError is returned unchanged.
func NewModelInvocationError(engine ChatEngine, err error) error {
	if err == nil {
		return nil
	}
	if mie, ok := err.(*ModelInvocationError); ok {
		return mie
	}
	return &ModelInvocationError{Provider: engine.Name(), Model: engine.Model(), Err: err}
}
