package domain

import "context"

// Scanner discovers chart dependencies in manifest files matching the
// given glob patterns.
type Scanner interface {
	Scan(patterns []string) ([]Dependency, error)
}

// ManifestWriter rewrites the version field of a dependency's manifest to
// the selected new version. The resolution engine never calls this; only
// the application service does, after detection.
type ManifestWriter interface {
	Apply(update VersionUpdate) error
}

// CommitInput describes one branch to create with the rewritten manifests.
type CommitInput struct {
	BranchName string
	Files      []string
	Message    string
}

// GitCommitter stages rewritten manifests on a new branch and pushes it.
type GitCommitter interface {
	CommitAndPush(ctx context.Context, input CommitInput) error
}

// PullRequestInput contains the data needed to create a pull request.
type PullRequestInput struct {
	SourceBranch string
	TargetBranch string
	Title        string
	Description  string
}

// PullRequest represents a pull request returned by the hosting service.
type PullRequest struct {
	ID    int
	Title string
	URL   string
}

// PullRequestPublisher opens pull requests on the hosting service.
type PullRequestPublisher interface {
	// PullRequestExists checks if an open PR already exists for the branch.
	PullRequestExists(ctx context.Context, sourceBranch string) (bool, error)

	// CreatePullRequest opens a pull request for the pushed branch.
	CreatePullRequest(ctx context.Context, input PullRequestInput) (*PullRequest, error)
}

// ChangelogFinder looks up release notes for a chart between two versions.
// It is an independent enrichment step: failures degrade to empty notes.
type ChangelogFinder interface {
	FindChangelog(ctx context.Context, chartName, currentVersion, newVersion string) (string, error)
}
