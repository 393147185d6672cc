// Package changelog enriches update records with release notes. Lookup is
// keyed by chart name plus the old and new version; it is independent of
// version resolution and every failure degrades to "no notes".
package changelog

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/helmup/domain"
)

const perPage = 100

// GitHubFinder implements domain.ChangelogFinder against GitHub releases.
// Sources maps a chart name to the "owner/repo" hosting its releases;
// charts without an entry yield no notes.
type GitHubFinder struct {
	client  *gh.Client
	sources map[string]string
}

// NewGitHubFinder creates a finder using the given token and chart-to-repo
// mapping.
func NewGitHubFinder(token string, sources map[string]string) *GitHubFinder {
	client := gh.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubFinder{client: client, sources: sources}
}

// FindChangelog returns the concatenated notes of every release whose tag
// falls in (currentVersion, newVersion] under semver ordering. Tags may
// carry a "v" or "{chart}-" prefix; both are tolerated.
func (f *GitHubFinder) FindChangelog(
	ctx context.Context,
	chartName, currentVersion, newVersion string,
) (string, error) {
	source, ok := f.sources[chartName]
	if !ok {
		return "", nil
	}
	owner, repo, ok := strings.Cut(source, "/")
	if !ok {
		return "", fmt.Errorf("changelog source for %q must be owner/repo (got %q)", chartName, source)
	}

	current, err := domain.ParseVersion(currentVersion)
	if err != nil {
		return "", nil
	}
	next, err := domain.ParseVersion(newVersion)
	if err != nil {
		return "", nil
	}

	var sb strings.Builder
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		releases, resp, listErr := f.client.Repositories.ListReleases(ctx, owner, repo, opts)
		if listErr != nil {
			logger.Warnf("Failed to list releases for %s: %v", source, listErr)
			return "", nil
		}

		for _, release := range releases {
			tag := normalizeTag(release.GetTagName(), chartName)
			version, parseErr := domain.ParseVersion(tag)
			if parseErr != nil {
				continue
			}
			if version.GreaterThan(current) && !version.GreaterThan(next) {
				sb.WriteString(fmt.Sprintf("### %s %s\n\n", chartName, version.Original()))
				if body := release.GetBody(); body != "" {
					sb.WriteString(body)
					sb.WriteString("\n\n")
				}
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return strings.TrimSpace(sb.String()), nil
}

func normalizeTag(tag, chartName string) string {
	tag = strings.TrimPrefix(tag, chartName+"-")
	return strings.TrimPrefix(tag, "v")
}
