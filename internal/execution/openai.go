package execution

import (
	"context"
	"fmt"
	"strings"

	"github.com/microsoft/toolcheck/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

// OpenAIOptions are the provider options accepted under llm.options for the
// openai provider.
type OpenAIOptions struct {
	BaseURL     string   `mapstructure:"base_url"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   int64    `mapstructure:"max_tokens"`
}

// OpenAIEngine streams chat completions from the OpenAI API.
type OpenAIEngine struct {
	model       string
	options     OpenAIOptions
	completions openAICompletions
}

// openAICompletions is the subset of [openai.ChatCompletionService] we use.
type openAICompletions interface {
	NewStreaming(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) *ssestream.Stream[openai.ChatCompletionChunk]
}

// NewOpenAIEngine creates an engine for model. Client retries are disabled;
// a failed call is reported to the caller as-is.
func NewOpenAIEngine(model, apiKey string, options OpenAIOptions) *OpenAIEngine {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if options.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(options.BaseURL))
	}

	client := openai.NewClient(opts...)

	return &OpenAIEngine{
		model:       model,
		options:     options,
		completions: &client.Chat.Completions,
	}
}

func (e *OpenAIEngine) Name() string  { return ProviderOpenAI }
func (e *OpenAIEngine) Model() string { return e.model }
func (e *OpenAIEngine) Close() error  { return nil }

// Stream implements [ChatEngine].
func (e *OpenAIEngine) Stream(ctx context.Context, messages []models.Message) (Stream, error) {
	params := openai.ChatCompletionNewParams{
		Model:    e.model,
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	if e.options.Temperature != nil {
		params.Temperature = openai.Float(*e.options.Temperature)
	}
	if e.options.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(e.options.MaxTokens)
	}

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case models.RoleUser:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		case models.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	stream := e.completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, err
	}

	return &openAIStream{inner: stream}, nil
}

type openAIStream struct {
	inner *ssestream.Stream[openai.ChatCompletionChunk]
	curr  string
}

func (s *openAIStream) Next() bool {
	for s.inner.Next() {
		chunk := s.inner.Current()

		var sb strings.Builder
		for _, choice := range chunk.Choices {
			sb.WriteString(choice.Delta.Content)
		}

		// role-only and usage chunks carry no text
		if sb.Len() == 0 {
			continue
		}

		s.curr = sb.String()
		return true
	}
	return false
}

func (s *openAIStream) Current() string { return s.curr }
func (s *openAIStream) Err() error      { return s.inner.Err() }
func (s *openAIStream) Close() error    { return s.inner.Close() }
