//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/helmup/domain"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// DependencyBuilder helps create test dependencies with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	manifestPath   string
	documentIndex  int
	name           string
	repositoryURL  string
	repositoryKind domain.RepositoryKind
	currentVersion string
	versionPath    []string
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		BaseBuilder:    testkit.NewBaseBuilder(),
		manifestPath:   "apps/test-app.yaml",
		documentIndex:  0,
		name:           "test-chart",
		repositoryURL:  "https://charts.example.com",
		repositoryKind: domain.RepositoryKindIndex,
		currentVersion: "1.0.0",
		versionPath:    []string{"spec", "source", "targetRevision"},
	}
}

// WithManifestPath sets the manifest file path.
func (b *DependencyBuilder) WithManifestPath(path string) *DependencyBuilder {
	b.manifestPath = path
	return b
}

// WithDocumentIndex sets the YAML document index within the manifest.
func (b *DependencyBuilder) WithDocumentIndex(index int) *DependencyBuilder {
	b.documentIndex = index
	return b
}

// WithName sets the chart name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithRepositoryURL sets the chart repository URL.
func (b *DependencyBuilder) WithRepositoryURL(url string) *DependencyBuilder {
	b.repositoryURL = url
	return b
}

// WithRepositoryKind sets the repository kind (index or registry).
func (b *DependencyBuilder) WithRepositoryKind(kind domain.RepositoryKind) *DependencyBuilder {
	b.repositoryKind = kind
	return b
}

// WithCurrentVersion sets the pinned version.
func (b *DependencyBuilder) WithCurrentVersion(version string) *DependencyBuilder {
	b.currentVersion = version
	return b
}

// WithVersionPath sets the YAML path to the version field.
func (b *DependencyBuilder) WithVersionPath(path ...string) *DependencyBuilder {
	b.versionPath = path
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency with a concrete return type.
func (b *DependencyBuilder) BuildDependency() domain.Dependency {
	return domain.Dependency{
		ManifestPath:   b.manifestPath,
		DocumentIndex:  b.documentIndex,
		Name:           b.name,
		RepositoryURL:  b.repositoryURL,
		RepositoryKind: b.repositoryKind,
		CurrentVersion: b.currentVersion,
		VersionPath:    append([]string(nil), b.versionPath...),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.manifestPath = "apps/test-app.yaml"
	b.documentIndex = 0
	b.name = "test-chart"
	b.repositoryURL = "https://charts.example.com"
	b.repositoryKind = domain.RepositoryKindIndex
	b.currentVersion = "1.0.0"
	b.versionPath = []string{"spec", "source", "targetRevision"}
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	return &DependencyBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		manifestPath:   b.manifestPath,
		documentIndex:  b.documentIndex,
		name:           b.name,
		repositoryURL:  b.repositoryURL,
		repositoryKind: b.repositoryKind,
		currentVersion: b.currentVersion,
		versionPath:    append([]string(nil), b.versionPath...),
	}
}
