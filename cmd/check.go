package cmd

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/helmup/application"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Detect available chart updates without changing anything",
	Long: `Scan the configured manifests and report which charts have newer
versions available under the configured update strategy. No files
are rewritten, no branches created, no PRs opened.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := injectUpdateService(cfg)
	if err != nil {
		return fmt.Errorf("failed to assemble services: %w", err)
	}

	logger.Info("Checking for chart updates...")

	// check is a forced dry run: detection only.
	return svc.Run(ctx, cfg, application.RunOptions{
		DryRun:  true,
		Verbose: verbose,
	})
}
