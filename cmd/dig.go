package cmd

import (
	"net/http"

	"github.com/spf13/afero"
	"go.uber.org/dig"

	"github.com/rios0rios0/helmup/application"
	"github.com/rios0rios0/helmup/config"
	"github.com/rios0rios0/helmup/domain"
	"github.com/rios0rios0/helmup/infrastructure/changelog"
	"github.com/rios0rios0/helmup/infrastructure/fetcher"
	"github.com/rios0rios0/helmup/infrastructure/gitops"
	"github.com/rios0rios0/helmup/infrastructure/publisher"
	"github.com/rios0rios0/helmup/infrastructure/resolver"
	"github.com/rios0rios0/helmup/infrastructure/scanner"
	"github.com/rios0rios0/helmup/infrastructure/writer"
)

// injectUpdateService assembles the application service via DIG.
func injectUpdateService(cfg *config.Config) (*application.UpdateService, error) {
	container := dig.New()

	constructors := []interface{}{
		func() *config.Config { return cfg },
		func() afero.Fs { return afero.NewOsFs() },
		fetcher.NewHTTPClient,
		newFetcherRegistry,
		resolver.NewEngine,
		newScanner,
		newWriter,
		newCommitter,
		newPublisher,
		newChangelogFinder,
		application.NewUpdateService,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return nil, err
		}
	}

	var svc *application.UpdateService
	if err := container.Invoke(func(s *application.UpdateService) {
		svc = s
	}); err != nil {
		return nil, err
	}
	return svc, nil
}

func newFetcherRegistry(client *http.Client, cfg *config.Config) *fetcher.Registry {
	creds := cfg.Credentials()
	reg := fetcher.NewRegistry()
	reg.Register(fetcher.NewIndexFetcher(client, creds))
	reg.Register(fetcher.NewRegistryFetcher(client, creds))
	return reg
}

func newScanner(fs afero.Fs) domain.Scanner {
	return scanner.New(fs)
}

func newWriter(fs afero.Fs) domain.ManifestWriter {
	return writer.New(fs)
}

func newCommitter(cfg *config.Config) domain.GitCommitter {
	return gitops.NewCommitter(gitops.Options{
		RepoDir:     ".",
		Remote:      cfg.Git.Remote,
		AuthorName:  cfg.Git.AuthorName,
		AuthorEmail: cfg.Git.AuthorEmail,
		Token:       cfg.GitHub.Token,
	})
}

// newPublisher returns nil when GitHub is not configured; the service
// skips PR creation for a nil publisher.
func newPublisher(cfg *config.Config) domain.PullRequestPublisher {
	if cfg.GitHub.Token == "" || cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
		return nil
	}
	return publisher.NewGitHubPublisher(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo)
}

// newChangelogFinder returns nil when no changelog sources are mapped.
func newChangelogFinder(cfg *config.Config) domain.ChangelogFinder {
	if len(cfg.Changelogs) == 0 {
		return nil
	}
	return changelog.NewGitHubFinder(cfg.GitHub.Token, cfg.Changelogs)
}
