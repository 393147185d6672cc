package cmd

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/helmup/application"
	"github.com/rios0rios0/helmup/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Detect chart updates, rewrite manifests, and open a PR",
	Long: `Scan the configured manifests, detect available chart updates,
rewrite the version fields, commit the changes to a branch, and
open a pull request.

This is the main command intended to be used in a cronjob. With
--dry-run it only reports the updates it would apply.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runUpdate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := injectUpdateService(cfg)
	if err != nil {
		return fmt.Errorf("failed to assemble services: %w", err)
	}

	logger.Info("Starting helmup run...")

	return svc.Run(ctx, cfg, application.RunOptions{
		DryRun:  dryRun,
		Verbose: verbose,
	})
}

// loadConfig resolves the config file path and loads it.
func loadConfig() (*config.Config, error) {
	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf(
				"no config file found: %w\nSpecify one with --config or create helmup.yaml",
				err,
			)
		}
	}

	logger.Infof("Using config file: %s", cfgPath)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
