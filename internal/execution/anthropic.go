package execution

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/microsoft/toolcheck/internal/models"
)

const defaultAnthropicMaxTokens = 4096

// AnthropicOptions are the provider options accepted under llm.options for
// the anthropic provider.
type AnthropicOptions struct {
	BaseURL     string   `mapstructure:"base_url"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   int64    `mapstructure:"max_tokens"`
}

// AnthropicEngine streams messages from the Anthropic API.
type AnthropicEngine struct {
	model    string
	options  AnthropicOptions
	messages anthropicMessages
}

// anthropicMessages is the subset of [anthropic.MessageService] we use.
type anthropicMessages interface {
	NewStreaming(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

// NewAnthropicEngine creates an engine for model with client retries disabled.
func NewAnthropicEngine(model, apiKey string, options AnthropicOptions) *AnthropicEngine {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if options.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(options.BaseURL))
	}
	if options.MaxTokens <= 0 {
		options.MaxTokens = defaultAnthropicMaxTokens
	}

	client := anthropic.NewClient(opts...)

	return &AnthropicEngine{
		model:    model,
		options:  options,
		messages: &client.Messages,
	}
}

func (e *AnthropicEngine) Name() string  { return ProviderAnthropic }
func (e *AnthropicEngine) Model() string { return e.model }
func (e *AnthropicEngine) Close() error  { return nil }

// Stream implements [ChatEngine]. System entries are sent as the request's
// system blocks; the rest become the message list.
func (e *AnthropicEngine) Stream(ctx context.Context, messages []models.Message) (Stream, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: e.options.MaxTokens,
	}
	if e.options.Temperature != nil {
		params.Temperature = anthropic.Float(*e.options.Temperature)
	}

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: msg.Content})
		case models.RoleUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userText(msg.Content))))
		case models.RoleAssistant:
			if len(params.Messages) == 0 {
				params.Messages = append(params.Messages, placeholderUserMessage())
			}
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	// The conversation must open with a user turn; a validation session
	// starts from the system prompt alone.
	if len(params.Messages) == 0 {
		params.Messages = append(params.Messages, placeholderUserMessage())
	}

	stream := e.messages.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, err
	}

	return &anthropicStream{inner: stream}, nil
}

// userText substitutes a placeholder for empty user input, which the API
// rejects as an empty text block.
func userText(s string) string {
	if s == "" {
		return "."
	}
	return s
}

func placeholderUserMessage() anthropic.MessageParam {
	return anthropic.NewUserMessage(anthropic.NewTextBlock("."))
}

type anthropicStream struct {
	inner *ssestream.Stream[anthropic.MessageStreamEventUnion]
	curr  string
}

func (s *anthropicStream) Next() bool {
	for s.inner.Next() {
		switch ev := s.inner.Current().AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			text := ev.Delta.AsTextDelta().Text
			if text == "" {
				continue
			}
			s.curr = text
			return true
		}
	}
	return false
}

func (s *anthropicStream) Current() string { return s.curr }
func (s *anthropicStream) Err() error      { return s.inner.Err() }
func (s *anthropicStream) Close() error    { return s.inner.Close() }
