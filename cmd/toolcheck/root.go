package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	var shutdownTracing func(context.Context) error

	cmd := &cobra.Command{
		Use:   "toolcheck",
		Short: "toolcheck - validate LLM tool requests with an LLM",
		Long: `toolcheck asks a language model whether a tool request produced by an
agent is consistent with the tool schema and the conversation that led to it.

Each run writes the model's response next to the tool request and appends a
row to an HTML report in the working directory.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}

		if err := loadDotEnv(".env"); err != nil {
			return err
		}

		shutdown, err := setupTracing(cmd.Context())
		if err != nil {
			return err
		}
		shutdownTracing = shutdown
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if shutdownTracing == nil {
			return nil
		}
		return shutdownTracing(context.WithoutCancel(cmd.Context()))
	}

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newPublishCommand())
	cmd.AddCommand(newSessionCommand())

	return cmd
}

// loadDotEnv loads path into the environment. Variables that are already
// set win, and a missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		slog.Debug("Loaded environment file", "path", path)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
