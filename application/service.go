package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/helmup/config"
	"github.com/rios0rios0/helmup/domain"
	"github.com/rios0rios0/helmup/infrastructure/resolver"
)

// UpdateService orchestrates the full chart update flow:
// scan manifests -> detect updates -> rewrite -> commit/push -> open PR.
// The committer, publisher, and changelog finder are optional; a nil
// collaborator disables its step.
type UpdateService struct {
	scanner   domain.Scanner
	engine    *resolver.Engine
	writer    domain.ManifestWriter
	committer domain.GitCommitter
	publisher domain.PullRequestPublisher
	changelog domain.ChangelogFinder
}

// NewUpdateService creates a new service with the given collaborators.
func NewUpdateService(
	scanner domain.Scanner,
	engine *resolver.Engine,
	writer domain.ManifestWriter,
	committer domain.GitCommitter,
	publisher domain.PullRequestPublisher,
	changelog domain.ChangelogFinder,
) *UpdateService {
	return &UpdateService{
		scanner:   scanner,
		engine:    engine,
		writer:    writer,
		committer: committer,
		publisher: publisher,
		changelog: changelog,
	}
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	DryRun  bool
	Verbose bool
}

// Run executes the full update cycle using the provided configuration.
func (s *UpdateService) Run(
	ctx context.Context,
	cfg *config.Config,
	runOpts RunOptions,
) error {
	if runOpts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	deps, err := s.scanner.Scan(cfg.Manifests)
	if err != nil {
		return fmt.Errorf("failed to scan manifests: %w", err)
	}

	logger.Infof("Found %d chart reference(s) across manifests", len(deps))
	if len(deps) == 0 {
		return nil
	}

	updates, err := s.engine.CheckForUpdates(ctx, deps, cfg.Policy())
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		logger.Info("All charts are up to date")
		return nil
	}

	logger.Infof("Found %d chart update(s)", len(updates))

	if runOpts.DryRun {
		for _, up := range updates {
			logger.Infof(
				"[DRY RUN] Would update %s: %s -> %s (%s)",
				up.Dependency.Name, up.CurrentVersion, up.NewVersion,
				up.Dependency.ManifestPath,
			)
		}
		return nil
	}

	branchName := generateBranchName(cfg.Git.BranchPrefix, updates)

	// Check before touching the working tree.
	if s.publisher != nil {
		exists, prCheckErr := s.publisher.PullRequestExists(ctx, branchName)
		if prCheckErr != nil {
			logger.Warnf("Failed to check existing PRs: %v", prCheckErr)
		}
		if exists {
			logger.Infof("PR already exists for branch %q, skipping", branchName)
			return nil
		}
	}

	applied, files, errorCount := s.applyUpdates(updates)
	if len(applied) == 0 {
		return errors.New("no updates could be applied")
	}

	if s.committer != nil {
		commitErr := s.committer.CommitAndPush(ctx, domain.CommitInput{
			BranchName: branchName,
			Files:      files,
			Message:    generateCommitMessage(applied),
		})
		if commitErr != nil {
			return fmt.Errorf("failed to commit updates: %w", commitErr)
		}

		if s.publisher != nil {
			if publishErr := s.publish(ctx, cfg, branchName, applied); publishErr != nil {
				return publishErr
			}
		}
	}

	logger.Infof(
		"Run complete: %d chart reference(s) scanned, %d update(s) applied, %d error(s)",
		len(deps), len(applied), errorCount,
	)
	return nil
}

// applyUpdates rewrites the manifests and returns the updates that
// succeeded plus the distinct files touched. A single failing rewrite is
// logged and counted, never fatal for the rest.
func (s *UpdateService) applyUpdates(
	updates []domain.VersionUpdate,
) ([]domain.VersionUpdate, []string, int) {
	var applied []domain.VersionUpdate
	var files []string
	seen := make(map[string]bool)
	errorCount := 0

	for _, up := range updates {
		if applyErr := s.writer.Apply(up); applyErr != nil {
			logger.Errorf(
				"Failed to update %s in %s: %v",
				up.Dependency.Name, up.Dependency.ManifestPath, applyErr,
			)
			errorCount++
			continue
		}

		applied = append(applied, up)
		if !seen[up.Dependency.ManifestPath] {
			seen[up.Dependency.ManifestPath] = true
			files = append(files, up.Dependency.ManifestPath)
		}
	}
	return applied, files, errorCount
}

func (s *UpdateService) publish(
	ctx context.Context,
	cfg *config.Config,
	branchName string,
	applied []domain.VersionUpdate,
) error {
	pr, createErr := s.publisher.CreatePullRequest(ctx, domain.PullRequestInput{
		SourceBranch: branchName,
		TargetBranch: cfg.Git.BaseBranch,
		Title:        generatePRTitle(applied),
		Description:  s.generatePRDescription(ctx, applied),
	})
	if createErr != nil {
		return fmt.Errorf("failed to create PR: %w", createErr)
	}

	logger.Infof("Created PR #%d: %s (%s)", pr.ID, pr.Title, pr.URL)
	return nil
}

// --- branch/PR text generation ---

func generateBranchName(prefix string, updates []domain.VersionUpdate) string {
	if len(updates) == 1 {
		return fmt.Sprintf(
			"%s%s-%s", prefix, updates[0].Dependency.Name, updates[0].NewVersion,
		)
	}
	return fmt.Sprintf("%supdate-%d-charts", prefix, len(updates))
}

func generateCommitMessage(updates []domain.VersionUpdate) string {
	if len(updates) == 1 {
		return fmt.Sprintf(
			"chore(deps): upgrade %s from %s to %s",
			updates[0].Dependency.Name,
			updates[0].CurrentVersion,
			updates[0].NewVersion,
		)
	}
	return fmt.Sprintf("chore(deps): upgrade %d chart dependencies", len(updates))
}

func generatePRTitle(updates []domain.VersionUpdate) string {
	if len(updates) == 1 {
		return fmt.Sprintf(
			"chore(deps): upgrade %s to %s",
			updates[0].Dependency.Name,
			updates[0].NewVersion,
		)
	}
	return fmt.Sprintf("chore(deps): upgrade %d chart dependencies", len(updates))
}

func (s *UpdateService) generatePRDescription(
	ctx context.Context,
	updates []domain.VersionUpdate,
) string {
	var sb strings.Builder
	sb.WriteString("## Summary\n\n")
	sb.WriteString("This PR upgrades the following Helm chart dependencies:\n\n")
	sb.WriteString("| Chart | Current Version | New Version | Manifest |\n")
	sb.WriteString("|-------|-----------------|-------------|----------|\n")
	for _, up := range updates {
		sb.WriteString(fmt.Sprintf(
			"| %s | %s | %s | %s |\n",
			up.Dependency.Name,
			up.CurrentVersion,
			up.NewVersion,
			up.Dependency.ManifestPath,
		))
	}

	if s.changelog != nil {
		if notes := s.collectChangelogs(ctx, updates); notes != "" {
			sb.WriteString("\n## Release Notes\n\n")
			sb.WriteString(notes)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n---\n")
	sb.WriteString("*This PR was automatically created by [helmup](https://github.com/rios0rios0/helmup)*\n")
	return sb.String()
}

func (s *UpdateService) collectChangelogs(
	ctx context.Context,
	updates []domain.VersionUpdate,
) string {
	var sb strings.Builder
	for _, up := range updates {
		notes, err := s.changelog.FindChangelog(
			ctx, up.Dependency.Name, up.CurrentVersion, up.NewVersion,
		)
		if err != nil {
			logger.Warnf(
				"Failed to find changelog for %s: %v", up.Dependency.Name, err,
			)
			continue
		}
		if notes != "" {
			sb.WriteString(notes)
			sb.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(sb.String())
}
