// Package testdoubles provides test doubles (spies, stubs, dummies) for
// domain interfaces. These are hand-crafted implementations — no mock
// frameworks.
package testdoubles

import (
	"context"
	"sync"

	"github.com/rios0rios0/helmup/domain"
)

// ---------------------------------------------------------------------------
// SpyFetcher
// ---------------------------------------------------------------------------

// FetchCall records one Fetch invocation.
type FetchCall struct {
	RepositoryURL string
	PackageName   string
}

// SpyFetcher implements domain.Fetcher as a configurable spy. Responses are
// keyed by repository URL; call tracking is safe for the engine's
// concurrent fan-out.
type SpyFetcher struct {
	FetcherKind domain.RepositoryKind
	IndexByURL  map[string]domain.RepositoryIndex
	ErrByURL    map[string]error

	mu    sync.Mutex
	calls []FetchCall
}

var _ domain.Fetcher = (*SpyFetcher)(nil)

func (f *SpyFetcher) Kind() domain.RepositoryKind { return f.FetcherKind }

func (f *SpyFetcher) Fetch(
	_ context.Context,
	repositoryURL, packageName string,
) (domain.RepositoryIndex, error) {
	f.mu.Lock()
	f.calls = append(f.calls, FetchCall{
		RepositoryURL: repositoryURL,
		PackageName:   packageName,
	})
	f.mu.Unlock()

	if f.ErrByURL != nil {
		if err, ok := f.ErrByURL[repositoryURL]; ok {
			return nil, err
		}
	}
	if f.IndexByURL != nil {
		if index, ok := f.IndexByURL[repositoryURL]; ok {
			return index, nil
		}
	}
	return domain.RepositoryIndex{}, nil
}

// Calls returns a copy of the recorded fetch invocations.
func (f *SpyFetcher) Calls() []FetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FetchCall(nil), f.calls...)
}

// CallCount returns how many fetches were issued.
func (f *SpyFetcher) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// ---------------------------------------------------------------------------
// SpyScanner
// ---------------------------------------------------------------------------

// SpyScanner implements domain.Scanner returning canned dependencies.
type SpyScanner struct {
	Dependencies []domain.Dependency
	ScanErr      error
	// spy: patterns that were requested
	ScannedPatterns [][]string
}

var _ domain.Scanner = (*SpyScanner)(nil)

func (s *SpyScanner) Scan(patterns []string) ([]domain.Dependency, error) {
	s.ScannedPatterns = append(s.ScannedPatterns, patterns)
	return s.Dependencies, s.ScanErr
}

// ---------------------------------------------------------------------------
// SpyWriter
// ---------------------------------------------------------------------------

// SpyWriter implements domain.ManifestWriter, recording the updates it was
// asked to apply. FailFor marks chart names whose rewrite should fail.
type SpyWriter struct {
	FailFor map[string]error
	Applied []domain.VersionUpdate
}

var _ domain.ManifestWriter = (*SpyWriter)(nil)

func (w *SpyWriter) Apply(update domain.VersionUpdate) error {
	if w.FailFor != nil {
		if err, ok := w.FailFor[update.Dependency.Name]; ok {
			return err
		}
	}
	w.Applied = append(w.Applied, update)
	return nil
}

// ---------------------------------------------------------------------------
// SpyCommitter
// ---------------------------------------------------------------------------

// SpyCommitter implements domain.GitCommitter, recording commit inputs.
type SpyCommitter struct {
	CommitErr error
	Commits   []domain.CommitInput
}

var _ domain.GitCommitter = (*SpyCommitter)(nil)

func (c *SpyCommitter) CommitAndPush(_ context.Context, input domain.CommitInput) error {
	c.Commits = append(c.Commits, input)
	return c.CommitErr
}

// ---------------------------------------------------------------------------
// SpyPublisher
// ---------------------------------------------------------------------------

// SpyPublisher implements domain.PullRequestPublisher.
type SpyPublisher struct {
	PRExistsResult bool
	PRExistsErr    error
	CreatedPR      *domain.PullRequest
	CreatePRErr    error
	// spy: inputs received
	PRExistsBranches []string
	PRInputs         []domain.PullRequestInput
}

var _ domain.PullRequestPublisher = (*SpyPublisher)(nil)

func (p *SpyPublisher) PullRequestExists(
	_ context.Context,
	sourceBranch string,
) (bool, error) {
	p.PRExistsBranches = append(p.PRExistsBranches, sourceBranch)
	return p.PRExistsResult, p.PRExistsErr
}

func (p *SpyPublisher) CreatePullRequest(
	_ context.Context,
	input domain.PullRequestInput,
) (*domain.PullRequest, error) {
	p.PRInputs = append(p.PRInputs, input)
	if p.CreatePRErr != nil {
		return nil, p.CreatePRErr
	}
	if p.CreatedPR != nil {
		return p.CreatedPR, nil
	}
	return &domain.PullRequest{ID: 1, Title: input.Title, URL: "https://example.com/pr/1"}, nil
}

// ---------------------------------------------------------------------------
// StubChangelogFinder
// ---------------------------------------------------------------------------

// StubChangelogFinder implements domain.ChangelogFinder with canned notes
// keyed by chart name.
type StubChangelogFinder struct {
	Notes map[string]string
	Err   error
}

var _ domain.ChangelogFinder = (*StubChangelogFinder)(nil)

func (f *StubChangelogFinder) FindChangelog(
	_ context.Context,
	chartName, _, _ string,
) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return f.Notes[chartName], nil
}
