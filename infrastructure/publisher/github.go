// Package publisher opens pull requests for pushed update branches.
package publisher

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/helmup/domain"
)

// GitHubPublisher implements domain.PullRequestPublisher for GitHub.
type GitHubPublisher struct {
	client *gh.Client
	owner  string
	repo   string
}

// NewGitHubPublisher creates a publisher for one repository.
func NewGitHubPublisher(token, owner, repo string) *GitHubPublisher {
	return &GitHubPublisher{
		client: gh.NewClient(nil).WithAuthToken(token),
		owner:  owner,
		repo:   repo,
	}
}

// PullRequestExists checks whether an open PR already exists for the branch.
func (p *GitHubPublisher) PullRequestExists(
	ctx context.Context,
	sourceBranch string,
) (bool, error) {
	prs, _, err := p.client.PullRequests.List(ctx, p.owner, p.repo, &gh.PullRequestListOptions{
		State: "open",
		Head:  p.owner + ":" + sourceBranch,
	})
	if err != nil {
		return false, fmt.Errorf("failed to list pull requests: %w", err)
	}
	return len(prs) > 0, nil
}

// CreatePullRequest opens a pull request for the pushed branch.
func (p *GitHubPublisher) CreatePullRequest(
	ctx context.Context,
	input domain.PullRequestInput,
) (*domain.PullRequest, error) {
	pr, _, err := p.client.PullRequests.Create(ctx, p.owner, p.repo, &gh.NewPullRequest{
		Title: gh.String(input.Title),
		Head:  gh.String(input.SourceBranch),
		Base:  gh.String(input.TargetBranch),
		Body:  gh.String(input.Description),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	return &domain.PullRequest{
		ID:    pr.GetNumber(),
		Title: pr.GetTitle(),
		URL:   pr.GetHTMLURL(),
	}, nil
}
