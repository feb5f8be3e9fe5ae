// Package session drives a validation conversation with a chat engine and
// records what happened in an NDJSON session log.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/microsoft/toolcheck/internal/execution"
	"github.com/microsoft/toolcheck/internal/transcript"
)

// Mode selects how many turns a session runs.
type Mode int

const (
	// ModeBatch runs exactly one turn and is the only mode that produces reports.
	ModeBatch Mode = iota
	// ModeInteractive keeps asking the operator for follow-ups until they exit.
	ModeInteractive
)

// InteractiveArg is the positional argument that selects ModeInteractive.
const InteractiveArg = "interactive"

// ParseMode maps the optional second positional argument to a Mode.
// Anything other than "interactive" selects ModeBatch.
func ParseMode(arg string) Mode {
	if arg == InteractiveArg {
		return ModeInteractive
	}
	return ModeBatch
}

func (m Mode) String() string {
	if m == ModeInteractive {
		return "interactive"
	}
	return "batch"
}

// State is the orchestrator's position in a run.
type State int

const (
	StateAwaitingTurn State = iota
	StateStreaming
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingTurn:
		return "AwaitingTurn"
	case StateStreaming:
		return "Streaming"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	// ExitCommand ends an interactive session (case-insensitive, surrounding
	// whitespace ignored).
	ExitCommand = "exit"

	ContinuePrompt = "Press Enter to continue or type 'exit' to quit."
	ResponseHeader = "AI Response:"
)

// Result is the outcome of a completed run.
type Result struct {
	// Response is the text of the last assistant turn.
	Response string

	// Turns is the number of model calls made.
	Turns int

	TranscriptID string
}

// Orchestrator runs one validation conversation. It is not safe for
// concurrent use.
type Orchestrator struct {
	engine      execution.ChatEngine
	mode        Mode
	in          LineReader
	out         io.Writer
	logger      Logger
	callTimeout time.Duration

	state      State
	turns      int
	transcript *transcript.Transcript
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMode sets the session mode. The default is ModeBatch.
func WithMode(mode Mode) Option {
	return func(o *Orchestrator) { o.mode = mode }
}

// WithInput sets where interactive follow-ups are read from.
func WithInput(in LineReader) Option {
	return func(o *Orchestrator) { o.in = in }
}

// WithOutput sets the sink for interactive prompts and echoed responses.
func WithOutput(out io.Writer) Option {
	return func(o *Orchestrator) { o.out = out }
}

// WithLogger sets the session event logger.
func WithLogger(logger Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithCallTimeout bounds each model call. Zero means no limit.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.callTimeout = d }
}

// New creates an Orchestrator for engine.
func New(engine execution.ChatEngine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine: engine,
		mode:   ModeBatch,
		out:    io.Discard,
		logger: discard{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return o.state
}

// Transcript returns the conversation of the current or last run.
func (o *Orchestrator) Transcript() *transcript.Transcript {
	return o.transcript
}

// Run seeds a new transcript with systemPrompt and drives it to completion.
// Any engine or stream failure is returned as a
// *execution.ModelInvocationError and the partial response is discarded.
func (o *Orchestrator) Run(ctx context.Context, systemPrompt string) (*Result, error) {
	if o.mode == ModeInteractive && o.in == nil {
		return nil, fmt.Errorf("interactive mode requires an input reader")
	}

	o.transcript = transcript.New(systemPrompt)
	o.state = StateAwaitingTurn
	o.turns = 0

	start := time.Now()
	o.log(StartEvent(o.transcript.ID(), o.engine.Name(), o.engine.Model(), o.mode, len(systemPrompt)))

	var err error
	if o.mode == ModeInteractive {
		err = o.runInteractive(ctx)
	} else {
		err = o.runBatch(ctx)
	}

	if err != nil {
		o.log(ErrorEvent(err, o.turns))
		return nil, err
	}

	o.log(EndEvent(o.turns, time.Since(start)))

	response, _ := o.transcript.LastAssistant()
	return &Result{
		Response:     response,
		Turns:        o.turns,
		TranscriptID: o.transcript.ID(),
	}, nil
}

// runBatch is the one-turn path: the system prompt alone elicits the reply.
func (o *Orchestrator) runBatch(ctx context.Context) error {
	if err := o.turn(ctx); err != nil {
		return err
	}
	o.state = StateDone
	return nil
}

// runInteractive takes the seed turn, then one turn per operator line until
// the operator exits or input ends.
//
//nolint:errcheck // display-only writes
func (o *Orchestrator) runInteractive(ctx context.Context) error {
	for first := true; ; first = false {
		if !first {
			if err := ctx.Err(); err != nil {
				return err
			}

			fmt.Fprintln(o.out, ContinuePrompt)

			line, err := o.in.ReadLine()
			if err == io.EOF || (err == nil && isExit(line)) {
				slog.Debug("Interactive session ended by operator", "turns", o.turns)
				o.state = StateDone
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading operator input: %w", err)
			}

			o.transcript.AddUser(line)
		}

		fmt.Fprintln(o.out, ResponseHeader)
		if err := o.turn(ctx); err != nil {
			return err
		}
		fmt.Fprintln(o.out)
	}
}

// turn makes one model call with the full transcript and appends the reply.
func (o *Orchestrator) turn(ctx context.Context) error {
	o.state = StateStreaming
	o.turns++
	turn := o.turns

	o.log(TurnStartEvent(turn, o.transcript.Len()))
	slog.Debug("Calling model", "provider", o.engine.Name(), "model", o.engine.Model(), "turn", turn, "session_id", o.transcript.ID())

	if o.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
	}

	start := time.Now()

	stream, err := o.engine.Stream(ctx, o.transcript.Messages())
	if err != nil {
		return execution.NewModelInvocationError(o.engine, err)
	}
	defer stream.Close() //nolint:errcheck

	var sb strings.Builder
	fragments := 0

	for stream.Next() {
		fragment := stream.Current()
		sb.WriteString(fragment)
		fragments++

		if o.mode == ModeInteractive {
			io.WriteString(o.out, fragment) //nolint:errcheck
		}
	}

	if err := stream.Err(); err != nil {
		return execution.NewModelInvocationError(o.engine, err)
	}

	response := sb.String()
	o.transcript.AddAssistant(response)
	o.state = StateAwaitingTurn

	o.log(TurnCompleteEvent(turn, fragments, len(response), time.Since(start)))
	return nil
}

func (o *Orchestrator) log(ev Event) {
	if err := o.logger.Log(ev); err != nil {
		slog.Warn("Failed to write session event", "type", ev.Type, "error", err)
	}
}

func isExit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), ExitCommand)
}
