package domain

import "time"

// RepositoryKind identifies how a chart repository is queried.
type RepositoryKind string

const (
	// RepositoryKindIndex is a classic Helm repository exposing an index.yaml
	// listing every chart it serves.
	RepositoryKindIndex RepositoryKind = "index"
	// RepositoryKindRegistry is an OCI registry exposing a tag-listing
	// endpoint per chart.
	RepositoryKindRegistry RepositoryKind = "registry"
)

// Dependency is one chart reference found in a manifest. The same chart and
// repository may appear in many manifests; deduplication happens at fetch
// time, never in reporting.
type Dependency struct {
	ManifestPath   string         // file the reference was found in
	DocumentIndex  int            // YAML document index within that file
	Name           string         // chart name
	RepositoryURL  string         // chart repository URL
	RepositoryKind RepositoryKind // how the repository is queried
	CurrentVersion string         // version currently declared in the manifest
	VersionPath    []string       // field path to the version scalar, for rewriting
}

// Key returns the lookup key used in the resolution table.
func (d Dependency) Key() string {
	return d.RepositoryURL + "/" + d.Name
}

// ChartVersionInfo is one version entry discovered in a repository.
// Version is the only required field and is not guaranteed to be valid
// semver; invalid entries are tolerated until strict comparison is needed.
type ChartVersionInfo struct {
	Version    string
	AppVersion string
	Created    time.Time
	Digest     string
}

// RepositoryIndex maps chart names to their discovered version entries for
// a single repository. An index-style fetch fills it completely in one
// response; a registry-style fetch holds only the requested chart.
type RepositoryIndex map[string][]ChartVersionInfo

// VersionTable maps Dependency.Key() to the versions discovered for it.
// It is built fresh per resolution call and never persisted.
type VersionTable map[string][]ChartVersionInfo

// VersionUpdate is the engine's output: a dependency together with the
// version selected for it. NewVersion is always strictly greater than
// CurrentVersion under semver ordering.
type VersionUpdate struct {
	Dependency     Dependency
	CurrentVersion string
	NewVersion     string
}

// AuthType selects how a registry credential is attached to a request.
type AuthType string

const (
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
)

// RegistryCredential is one configured credential for a chart repository or
// registry host. Matching is a case-sensitive exact host comparison; when
// several entries match the same host, the first in declaration order wins.
type RegistryCredential struct {
	Registry string
	AuthType AuthType
	Username string
	Password string
}

// UpdateStrategy restricts which semver bump types are eligible as update
// candidates. StrategyMajor and StrategyAll are aliases: both admit every
// bump type; both spellings are accepted in configuration.
type UpdateStrategy string

const (
	StrategyMajor UpdateStrategy = "major"
	StrategyMinor UpdateStrategy = "minor"
	StrategyPatch UpdateStrategy = "patch"
	StrategyAll   UpdateStrategy = "all"
)

// IgnoreRule suppresses updates for a named dependency. With no UpdateTypes
// it suppresses everything; otherwise only the listed bump types.
type IgnoreRule struct {
	DependencyName string
	UpdateTypes    []UpdateType
}

// UpdatePolicy bundles the user-facing update rules applied by the
// strategy evaluator.
type UpdatePolicy struct {
	Strategy         UpdateStrategy
	Ignore           []IgnoreRule
	AllowPrereleases bool
}
