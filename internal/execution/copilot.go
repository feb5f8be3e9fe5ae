package execution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/microsoft/toolcheck/internal/models"
	"github.com/microsoft/toolcheck/internal/utils"
	"golang.org/x/sync/errgroup"
)

// CopilotOptions are the provider options accepted under llm.options for the
// copilot provider.
type CopilotOptions struct {
	LogLevel string `mapstructure:"log_level"`
}

// CopilotEngine talks to GitHub Copilot as the logged in user. Copilot
// sessions are stateful, so every call creates a fresh session and sends it
// the whole transcript as one prompt.
type CopilotEngine struct {
	model  string
	client copilotClient

	startOnce sync.Once
	startErr  error
	started   bool
}

// NewCopilotEngine creates an engine for model. A blank model lets the
// copilot CLI choose its own default.
func NewCopilotEngine(model string, options CopilotOptions) *CopilotEngine {
	logLevel := options.LogLevel
	if logLevel == "" {
		logLevel = "error"
	}

	return &CopilotEngine{
		model: model,
		client: newCopilotClient(&copilot.ClientOptions{
			LogLevel:        logLevel,
			AutoStart:       copilot.Bool(false),
			UseLoggedInUser: utils.Ptr(true),
		}),
	}
}

func (e *CopilotEngine) Name() string  { return ProviderCopilot }
func (e *CopilotEngine) Model() string { return e.model }

// Stream implements [ChatEngine]. The session's SendAndWait runs on its own
// goroutine and text deltas are handed to the returned Stream as they arrive.
func (e *CopilotEngine) Stream(ctx context.Context, messages []models.Message) (Stream, error) {
	e.startOnce.Do(func() {
		e.startErr = e.client.Start(ctx)
		e.started = e.startErr == nil
	})

	if e.startErr != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", e.startErr)
	}

	session, err := e.client.CreateSession(ctx, &copilot.SessionConfig{
		Model:               e.model,
		Streaming:           true,
		OnPermissionRequest: denyAllTools,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Debug("Copilot session created", "session_id", session.SessionID(), "model", e.model)

	ctx, cancel := context.WithCancel(ctx)

	out := make(chan fragment)
	coll := newResponseCollector(out, ctx.Done())

	unsubscribe := session.On(coll.On)
	unsubscribeLog := session.On(utils.SessionToSlog)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := session.SendAndWait(gctx, copilot.MessageOptions{
			Prompt: renderTranscript(messages),
			Mode:   "enqueue",
		})
		coll.finish(err)
		return err
	})

	return newChanStream(out, func() error {
		cancel()
		// the send error has already been delivered through the stream
		_ = g.Wait()
		unsubscribe()
		unsubscribeLog()
		return nil
	}), nil
}

// Close stops the copilot client if it was started.
func (e *CopilotEngine) Close() error {
	if !e.started {
		return nil
	}

	if err := e.client.Stop(); err != nil {
		return fmt.Errorf("failed to stop copilot client: %w", err)
	}
	return nil
}

// renderTranscript flattens messages into a single prompt. A transcript with
// only the system entry is sent unchanged.
func renderTranscript(messages []models.Message) string {
	if len(messages) == 1 {
		return messages[0].Content
	}

	var sb strings.Builder
	for i, msg := range messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if msg.Role != models.RoleSystem {
			fmt.Fprintf(&sb, "### %s\n", msg.Role)
		}
		sb.WriteString(msg.Content)
	}
	return sb.String()
}

// denyAllTools refuses every tool permission request; validation only needs
// the model's text.
func denyAllTools(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	return copilot.PermissionRequestResult{Kind: "denied-interactively-by-user"}, nil
}
