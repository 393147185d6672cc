// Package resolver hosts the resolution engine: it fans out repository
// fetches, deduplicates them through a per-call cache, and turns the
// resulting version table into update records.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rios0rios0/helmup/domain"
	"github.com/rios0rios0/helmup/infrastructure/fetcher"
)

// cache deduplicates repository fetches within a single resolution call.
// It is keyed by normalized repository URL: an index fetch already returns
// every chart the repository serves, so one fetch per repository is enough
// no matter how many charts are requested against it. Failed fetches are
// memoized too, so a broken repository is hit at most once per call.
//
// Concurrent requests for the same URL share one in-flight fetch through a
// single-flight group. The cache never outlives the resolution call that
// created it.
type cache struct {
	fetchers *fetcher.Registry

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	index domain.RepositoryIndex
	err   error
}

func newCache(fetchers *fetcher.Registry) *cache {
	return &cache{
		fetchers: fetchers,
		entries:  make(map[string]*cacheEntry),
	}
}

// GetOrFetch returns the version entries for one dependency, fetching its
// repository at most once for the lifetime of the cache.
func (c *cache) GetOrFetch(ctx context.Context, dep domain.Dependency) ([]domain.ChartVersionInfo, error) {
	key := normalizeRepositoryURL(dep.RepositoryURL)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		result, _, _ := c.group.Do(key, func() (interface{}, error) {
			fetched := c.fetch(ctx, dep)
			c.mu.Lock()
			c.entries[key] = fetched
			c.mu.Unlock()
			return fetched, nil
		})
		entry = result.(*cacheEntry)
	}

	if entry.err != nil {
		return nil, entry.err
	}
	return entry.index[dep.Name], nil
}

func (c *cache) fetch(ctx context.Context, dep domain.Dependency) *cacheEntry {
	f := c.fetchers.Get(dep.RepositoryKind)
	if f == nil {
		return &cacheEntry{
			err: fmt.Errorf("no fetcher registered for repository kind %q", dep.RepositoryKind),
		}
	}

	index, err := f.Fetch(ctx, dep.RepositoryURL, dep.Name)
	if err != nil {
		return &cacheEntry{err: err}
	}
	return &cacheEntry{index: index}
}

// normalizeRepositoryURL strips one trailing slash so "repo" and "repo/"
// share a cache entry, mirroring the index fetcher's URL normalization.
func normalizeRepositoryURL(repositoryURL string) string {
	return strings.TrimSuffix(repositoryURL, "/")
}
