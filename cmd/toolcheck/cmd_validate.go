package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/microsoft/toolcheck/internal/execution"
	"github.com/microsoft/toolcheck/internal/inputs"
	"github.com/microsoft/toolcheck/internal/models"
	"github.com/microsoft/toolcheck/internal/projectconfig"
	"github.com/microsoft/toolcheck/internal/prompt"
	"github.com/microsoft/toolcheck/internal/reporting"
	"github.com/microsoft/toolcheck/internal/secrets"
	"github.com/microsoft/toolcheck/internal/session"
	"github.com/microsoft/toolcheck/internal/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type validateOptions struct {
	interactive   bool
	schema        string
	systemPrompt  string
	userPrompt    string
	template      string
	provider      string
	model         string
	keyFile       string
	timeout       int
	aggregate     string
	sessionLogDir string
	junitPath     string
	failOnInvalid bool
}

// now is replaced in tests.
var now = time.Now

// Tests replace these.
var (
	loadKey   execution.KeyLoader = secrets.LoadProviderKey
	newEngine                     = execution.NewEngine
)

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <tool-request> [interactive]",
		Short: "Validate a tool request",
		Long: `Validate a tool request against the tool schema, the agent's system prompt
and the user prompt that led to it.

In batch mode (the default) the model is asked once, its response is written
to validation-report.txt next to the tool request and a row is appended to
the aggregate HTML report.

Pass "interactive" as the second argument (or --interactive) to keep talking
to the model after its first answer. Type 'exit' to stop. Interactive
sessions write no reports.

Input paths default to the values in .toolcheck.yaml.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Keep the conversation going after the first response")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "Tool schema file (JSON)")
	cmd.Flags().StringVar(&opts.systemPrompt, "system-prompt", "", "The agent's system prompt file")
	cmd.Flags().StringVar(&opts.userPrompt, "user-prompt", "", "The user prompt file")
	cmd.Flags().StringVar(&opts.template, "template", "", "Custom evaluation prompt template (Go text/template)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider: openai, anthropic, copilot, mock")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Model to use (default depends on the provider, e.g. gpt-4.1 for openai)")
	cmd.Flags().StringVar(&opts.keyFile, "key-file", "", "API key file (default: ~/.openai/key or ~/.anthropic/key)")
	cmd.Flags().IntVar(&opts.timeout, "timeout", 0, "Per model call timeout in seconds (default: 300)")
	cmd.Flags().StringVar(&opts.aggregate, "aggregate-report", "", "Aggregate HTML report (default: validation-report.html)")
	cmd.Flags().StringVar(&opts.sessionLogDir, "session-log", "", "Directory for NDJSON session event logs")
	cmd.Flags().StringVar(&opts.junitPath, "junit", "", "Also write the verdict as JUnit XML to this file")
	cmd.Flags().BoolVar(&opts.failOnInvalid, "fail-on-invalid", false, "Exit with code 1 when the tool request is invalid")

	return cmd
}

// applyTo overlays the flags that were set onto cfg.
func (o *validateOptions) applyTo(cfg *projectconfig.ProjectConfig) {
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	override(&cfg.Inputs.Schema, o.schema)
	override(&cfg.Inputs.SystemPrompt, o.systemPrompt)
	override(&cfg.Inputs.UserPrompt, o.userPrompt)
	override(&cfg.Inputs.PromptTemplate, o.template)
	override(&cfg.LLM.Provider, o.provider)
	override(&cfg.LLM.Model, o.model)
	override(&cfg.LLM.KeyFile, o.keyFile)
	override(&cfg.Reports.Aggregate, o.aggregate)
	override(&cfg.Reports.SessionLogDir, o.sessionLogDir)

	if o.timeout > 0 {
		cfg.LLM.Timeout = o.timeout
	}
}

func runValidate(cmd *cobra.Command, args []string, opts *validateOptions) error {
	toolRequestPath := args[0]

	mode := session.ModeBatch
	if len(args) == 2 {
		mode = session.ParseMode(args[1])
	}
	if opts.interactive {
		mode = session.ModeInteractive
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := projectconfig.Load(wd)
	if err != nil {
		return err
	}
	opts.applyTo(cfg)

	if cfg.Path != "" {
		slog.Debug("Loaded project config", "path", cfg.Path)
	}

	in, err := inputs.Load(inputs.Paths{
		Schema:       cfg.Inputs.Schema,
		SystemPrompt: cfg.Inputs.SystemPrompt,
		UserPrompt:   cfg.Inputs.UserPrompt,
		ToolRequest:  toolRequestPath,
	})
	if err != nil {
		return err
	}

	composer, err := loadComposer(cfg.Inputs.PromptTemplate)
	if err != nil {
		return err
	}

	engine, err := newEngine(execution.EngineConfig{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		KeyFile:  cfg.LLM.KeyFile,
		Options:  cfg.LLM.OptionsFor(cfg.LLM.Provider),
	}, loadKey)
	if err != nil {
		return err
	}
	engine = execution.Traced(engine)
	defer func() {
		if err := engine.Close(); err != nil {
			slog.Warn("Closing LLM engine failed", "provider", engine.Name(), "error", err)
		}
	}()

	ec := models.NewEvaluationContext(in, engine.Model(), now())

	systemPrompt, err := composer.Compose(ec)
	if err != nil {
		return err
	}

	logger, err := session.OpenLogger(cfg.Reports.SessionLogDir)
	if err != nil {
		return err
	}
	defer logger.Close() //nolint:errcheck

	out := cmd.OutOrStdout()
	printValidating(out, toolRequestPath, displayModel(engine))

	orchOpts := []session.Option{
		session.WithMode(mode),
		session.WithOutput(out),
		session.WithLogger(logger),
		session.WithCallTimeout(time.Duration(cfg.LLM.Timeout) * time.Second),
	}
	if mode == session.ModeInteractive {
		orchOpts = append(orchOpts, session.WithInput(session.NewLineReader(cmd.InOrStdin(), out)))
	}

	start := time.Now()
	result, err := runSession(cmd.Context(), session.New(engine, orchOpts...), systemPrompt, mode, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	slog.Debug("Session finished", "provider", engine.Name(), "model", engine.Model(), "turns", result.Turns, "session_id", result.TranscriptID)

	if mode == session.ModeInteractive {
		return nil
	}

	writer := reporting.NewWriter(cfg.Reports.Aggregate, cfg.Reports.PerRequestName)
	rec, err := writer.Record(toolRequestPath, result.Response)
	if err != nil {
		_ = logger.Log(session.ErrorEvent(err, 0))
		return err
	}

	_ = logger.Log(session.VerdictEvent(rec.ToolRequestPath, rec.Verdict.String(), rec.ReportFilePath))
	slog.Debug("Recorded verdict", "path", rec.ToolRequestPath, "verdict", rec.Verdict.String())

	outcome := reporting.NewOutcome(*rec, result.Response, engine.Name(), displayModel(engine), writer.AggregatePath, elapsed)
	printSummary(out, outcome, len(result.Response))

	if opts.junitPath != "" {
		if err := reporting.WriteJUnit(outcome, opts.junitPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "JUnit report: %s\n", opts.junitPath) //nolint:errcheck
	}

	if opts.failOnInvalid && rec.Verdict == models.VerdictInvalid {
		return &InvalidToolRequestError{Path: toolRequestPath}
	}
	return nil
}

// runSession runs the orchestrator, showing a spinner on a terminal while
// a batch turn streams.
func runSession(ctx context.Context, orch *session.Orchestrator, systemPrompt string, mode session.Mode, status io.Writer) (*session.Result, error) {
	if mode == session.ModeBatch && isTerminal(status) {
		stop := spinner.Start(status, "Waiting for the model")
		defer stop()
	}
	return orch.Run(ctx, systemPrompt)
}

func loadComposer(templatePath string) (*prompt.Composer, error) {
	if templatePath == "" {
		return prompt.Default(), nil
	}

	text, err := inputs.ReadText("prompt template", templatePath)
	if err != nil {
		return nil, err
	}

	composer, err := prompt.NewComposer(text)
	if err != nil {
		return nil, fmt.Errorf("prompt template %s: %w", templatePath, err)
	}
	return composer, nil
}

func displayModel(engine execution.ChatEngine) string {
	if engine.Model() == "" {
		return engine.Name() + " default model"
	}
	return engine.Model()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
