package execution

import (
	"context"
	"strings"
	"sync"

	"github.com/microsoft/toolcheck/internal/models"
)

// MockOptions are the provider options accepted under llm.options for the
// mock provider.
type MockOptions struct {
	// Response is returned for every call. Defaults to [models.ValidMarker].
	Response string `mapstructure:"response"`
}

// MockEngine replies with a canned response, streamed one word at a time.
// It's used for dry runs and tests.
type MockEngine struct {
	model    string
	response string

	mu    sync.Mutex
	calls [][]models.Message
}

// NewMockEngine creates a new mock engine
func NewMockEngine(model string, options MockOptions) *MockEngine {
	if options.Response == "" {
		options.Response = models.ValidMarker
	}

	return &MockEngine{
		model:    model,
		response: options.Response,
	}
}

func (m *MockEngine) Name() string  { return ProviderMock }
func (m *MockEngine) Model() string { return m.model }
func (m *MockEngine) Close() error  { return nil }

func (m *MockEngine) Stream(ctx context.Context, messages []models.Message) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, append([]models.Message(nil), messages...))
	m.mu.Unlock()

	return NewSliceStream(splitWords(m.response), nil), nil
}

// Calls returns a copy of the conversations passed to Stream, in call order.
func (m *MockEngine) Calls() [][]models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([][]models.Message(nil), m.calls...)
}

// splitWords cuts s after each run of whitespace, so the fragments
// concatenate back to s exactly.
func splitWords(s string) []string {
	var parts []string
	for len(s) > 0 {
		i := strings.IndexAny(s, " \t\n")
		if i < 0 {
			parts = append(parts, s)
			break
		}
		j := i
		for j < len(s) && strings.ContainsRune(" \t\n", rune(s[j])) {
			j++
		}
		parts = append(parts, s[:j])
		s = s[j:]
	}
	return parts
}
