package main

import (
	"fmt"
	"os"

	"github.com/microsoft/toolcheck/internal/projectconfig"
	"github.com/microsoft/toolcheck/internal/session"
	"github.com/spf13/cobra"
)

func newSessionCommand() *cobra.Command {
	var dir string

	list := &cobra.Command{
		Use:   "list",
		Short: "List session logs, newest first",
		Long: `List session logs, newest first.

The directory defaults to reports.session_log_dir from .toolcheck.yaml, or
the current directory when that is unset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				d, err := configuredLogDir()
				if err != nil {
					return err
				}
				dir = d
			}

			logs, err := session.ListSessions(dir)
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
			printSessions(cmd.OutOrStdout(), logs)
			return nil
		},
	}
	list.Flags().StringVar(&dir, "dir", "", "Directory holding session logs")

	view := &cobra.Command{
		Use:   "view <log-file>",
		Short: "Print the timeline of one session log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := session.ReadEvents(args[0])
			if err != nil {
				return fmt.Errorf("reading session: %w", err)
			}
			session.RenderTimeline(cmd.OutOrStdout(), events)
			return nil
		},
	}

	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Inspect session logs written by validate --session-log",
	}
	cmd.AddCommand(list, view)
	return cmd
}

func configuredLogDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	cfg, err := projectconfig.Load(wd)
	if err != nil {
		return "", err
	}
	if cfg.Reports.SessionLogDir != "" {
		return cfg.Reports.SessionLogDir, nil
	}
	return wd, nil
}
