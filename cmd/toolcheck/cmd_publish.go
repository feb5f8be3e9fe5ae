package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/microsoft/toolcheck/internal/projectconfig"
	"github.com/microsoft/toolcheck/internal/publish"
	"github.com/spf13/cobra"
)

// newPublisher is replaced in tests.
var newPublisher = func(accountURL, container string) (uploader, error) {
	return publish.New(accountURL, container)
}

type uploader interface {
	Publish(ctx context.Context, paths []string) ([]publish.Uploaded, error)
}

func newPublishCommand() *cobra.Command {
	var accountURL, container string

	cmd := &cobra.Command{
		Use:   "publish [report-file...]",
		Short: "Upload validation reports to Azure Blob Storage",
		Long: `Upload validation reports to an Azure Blob Storage container.

Without arguments the aggregate HTML report is uploaded. Per-request reports
can be listed explicitly. Credentials come from the default Azure credential
chain (environment, managed identity, Azure CLI login).

The account URL and container default to the publish section of
.toolcheck.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}

			cfg, err := projectconfig.Load(wd)
			if err != nil {
				return err
			}
			if accountURL != "" {
				cfg.Publish.AccountURL = accountURL
			}
			if container != "" {
				cfg.Publish.Container = container
			}

			files := args
			if len(files) == 0 {
				files = []string{cfg.Reports.Aggregate}
			}

			p, err := newPublisher(cfg.Publish.AccountURL, cfg.Publish.Container)
			if err != nil {
				return err
			}

			start := time.Now()
			uploaded, err := p.Publish(cmd.Context(), files)
			printUploads(cmd.OutOrStdout(), uploaded, time.Since(start))
			if err != nil {
				return fmt.Errorf("publishing reports: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountURL, "account-url", "", "Storage account URL, e.g. https://<account>.blob.core.windows.net")
	cmd.Flags().StringVar(&container, "container", "", "Blob container name")

	return cmd
}
