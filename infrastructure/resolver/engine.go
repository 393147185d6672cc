package resolver

import (
	"context"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/helmup/domain"
	"github.com/rios0rios0/helmup/infrastructure/fetcher"
)

// Engine turns dependency records into update records. Each resolution
// call owns a fresh repository cache; the engine itself holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	fetchers *fetcher.Registry
}

// NewEngine creates an engine that dispatches fetches through the given
// fetcher registry.
func NewEngine(fetchers *fetcher.Registry) *Engine {
	return &Engine{fetchers: fetchers}
}

// ResolveVersions fetches the available versions for every unique
// (repository URL, chart name) pair and aggregates them into a version
// table. Fetches for distinct repositories run concurrently.
//
// Failures are isolated per repository: a failed fetch is logged and its
// charts are simply absent from the table. The only error this method
// returns is context cancellation, in which case the partially built table
// is discarded.
func (e *Engine) ResolveVersions(
	ctx context.Context,
	deps []domain.Dependency,
) (domain.VersionTable, error) {
	unique := make(map[string]domain.Dependency, len(deps))
	for _, dep := range deps {
		if _, ok := unique[dep.Key()]; !ok {
			unique[dep.Key()] = dep
		}
	}

	repoCache := newCache(e.fetchers)
	table := make(domain.VersionTable, len(unique))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for key, dep := range unique {
		wg.Add(1)
		go func(key string, dep domain.Dependency) {
			defer wg.Done()

			versions, err := repoCache.GetOrFetch(ctx, dep)
			if err != nil {
				logger.Warnf(
					"Skipping chart %q: repository %q unavailable: %v",
					dep.Name, dep.RepositoryURL, err,
				)
				return
			}
			if len(versions) == 0 {
				logger.Debugf(
					"Chart %q not found in repository %q",
					dep.Name, dep.RepositoryURL,
				)
				return
			}

			mu.Lock()
			table[key] = versions
			mu.Unlock()
		}(key, dep)
	}
	wg.Wait()

	// A cancelled call must never expose a partially built table.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// CheckForUpdates resolves every dependency's repository and emits one
// update record per dependency that has an eligible newer version under
// the policy. Dependencies whose repository failed or whose chart was not
// found are skipped silently; the fetch diagnostics logged during
// resolution are the only signal distinguishing "failed" from "up to date".
func (e *Engine) CheckForUpdates(
	ctx context.Context,
	deps []domain.Dependency,
	policy domain.UpdatePolicy,
) ([]domain.VersionUpdate, error) {
	table, err := e.ResolveVersions(ctx, deps)
	if err != nil {
		return nil, err
	}
	return e.UpdatesFromTable(table, deps, policy), nil
}

// UpdatesFromTable runs the strategy evaluator over an already resolved
// version table. It is deterministic: the same table, dependencies, and
// policy always produce the same updates.
func (e *Engine) UpdatesFromTable(
	table domain.VersionTable,
	deps []domain.Dependency,
	policy domain.UpdatePolicy,
) []domain.VersionUpdate {
	var updates []domain.VersionUpdate
	for _, dep := range deps {
		available, ok := table[dep.Key()]
		if !ok {
			continue
		}

		newVersion, found := domain.SelectUpdate(dep, available, policy)
		if !found {
			continue
		}

		logger.Debugf(
			"Update available for %s: %s -> %s",
			dep.Name, dep.CurrentVersion, newVersion,
		)
		updates = append(updates, domain.VersionUpdate{
			Dependency:     dep,
			CurrentVersion: dep.CurrentVersion,
			NewVersion:     newVersion,
		})
	}
	return updates
}
