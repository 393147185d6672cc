package fetcher

import (
	"github.com/rios0rios0/helmup/domain"
)

// Registry manages the registered fetcher implementations, one per
// repository kind.
type Registry struct {
	fetchers map[domain.RepositoryKind]domain.Fetcher
}

// NewRegistry creates an empty fetcher registry.
func NewRegistry() *Registry {
	return &Registry{
		fetchers: make(map[domain.RepositoryKind]domain.Fetcher),
	}
}

// Register adds a fetcher under its repository kind.
func (r *Registry) Register(f domain.Fetcher) {
	r.fetchers[f.Kind()] = f
}

// Get returns the fetcher for the given kind, or nil if none is registered.
func (r *Registry) Get(kind domain.RepositoryKind) domain.Fetcher {
	return r.fetchers[kind]
}

// Kinds returns the list of registered repository kinds.
func (r *Registry) Kinds() []domain.RepositoryKind {
	kinds := make([]domain.RepositoryKind, 0, len(r.fetchers))
	for kind := range r.fetchers {
		kinds = append(kinds, kind)
	}
	return kinds
}
