// Package gitops stages rewritten manifests on a branch of the local
// GitOps checkout and pushes it, leaving pull-request creation to the
// publisher.
package gitops

import (
	"context"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/helmup/domain"
)

// Options configures the committer.
type Options struct {
	RepoDir     string // path to the local repository checkout
	Remote      string // remote name to push to
	AuthorName  string
	AuthorEmail string
	Token       string // auth token for the push; empty pushes unauthenticated
}

// Committer implements domain.GitCommitter on a local checkout.
type Committer struct {
	opts Options
}

// NewCommitter creates a committer for the given checkout.
func NewCommitter(opts Options) *Committer {
	return &Committer{opts: opts}
}

// CommitAndPush creates the branch from the current HEAD, stages the given
// files, commits, pushes the branch, and checks the original branch back
// out so the working tree is left where it started.
func (c *Committer) CommitAndPush(ctx context.Context, input domain.CommitInput) error {
	repo, err := git.PlainOpen(c.opts.RepoDir)
	if err != nil {
		return fmt.Errorf("failed to open repository at %q: %w", c.opts.RepoDir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to read HEAD: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	branchRef := plumbing.NewBranchReferenceName(input.BranchName)
	checkoutErr := worktree.Checkout(&git.CheckoutOptions{
		Hash:   head.Hash(),
		Branch: branchRef,
		Create: true,
	})
	if checkoutErr != nil {
		return fmt.Errorf("failed to create branch %q: %w", input.BranchName, checkoutErr)
	}

	for _, file := range input.Files {
		if _, addErr := worktree.Add(file); addErr != nil {
			return fmt.Errorf("failed to stage %q: %w", file, addErr)
		}
	}

	_, commitErr := worktree.Commit(input.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.opts.AuthorName,
			Email: c.opts.AuthorEmail,
			When:  time.Now(),
		},
	})
	if commitErr != nil {
		return fmt.Errorf("failed to commit: %w", commitErr)
	}

	pushErr := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: c.opts.Remote,
		RefSpecs: []gitcfg.RefSpec{
			gitcfg.RefSpec(branchRef + ":" + branchRef),
		},
		Auth: c.pushAuth(),
	})
	if pushErr != nil {
		return fmt.Errorf("failed to push branch %q: %w", input.BranchName, pushErr)
	}

	logger.Infof("Pushed branch %q with %d file(s)", input.BranchName, len(input.Files))

	// Leave the working tree on the branch it started from.
	restoreErr := worktree.Checkout(&git.CheckoutOptions{Branch: head.Name()})
	if restoreErr != nil {
		logger.Warnf("Failed to restore branch %q: %v", head.Name().Short(), restoreErr)
	}
	return nil
}

func (c *Committer) pushAuth() *githttp.BasicAuth {
	if c.opts.Token == "" {
		return nil
	}
	// For token-based HTTPS pushes the username is ignored by the server
	// but must be non-empty.
	return &githttp.BasicAuth{Username: "helmup", Password: c.opts.Token}
}
