package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	dryRun     bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "helmup",
	Short: "Helm chart update detection for GitOps repositories",
	Long: `A CLI tool that scans GitOps manifests for Helm chart references,
detects newer chart versions in their repositories, and creates Pull
Requests to upgrade them automatically.

This tool helps keep declarative deployments current by:
- Scanning Argo CD Application manifests and Chart.yaml dependency lists
- Querying Helm index repositories and OCI registries for newer versions
- Applying your update strategy and ignore rules
- Rewriting manifests and opening PRs with the changes`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
