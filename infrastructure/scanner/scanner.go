// Package scanner discovers Helm chart references in GitOps manifests. It
// understands Argo CD Application manifests (spec.source / spec.sources)
// and Helm Chart.yaml dependency lists.
package scanner

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/helmup/domain"
)

const (
	argoAPIGroup  = "argoproj.io/"
	chartFileName = "Chart.yaml"
)

// manifestProbe is the superset of fields the scanner inspects. Decoding a
// document into it never fails on unknown fields, only on shape conflicts.
type manifestProbe struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Metadata   struct {
		Name string `yaml:"name"`
	} `yaml:"metadata"`
	Spec struct {
		Source  *argoSource  `yaml:"source"`
		Sources []argoSource `yaml:"sources"`
	} `yaml:"spec"`
	Dependencies []chartDependency `yaml:"dependencies"`
}

type argoSource struct {
	RepoURL        string `yaml:"repoURL"`
	Chart          string `yaml:"chart"`
	TargetRevision string `yaml:"targetRevision"`
}

type chartDependency struct {
	Name       string `yaml:"name"`
	Version    string `yaml:"version"`
	Repository string `yaml:"repository"`
}

// Scanner walks manifest files matching glob patterns and extracts chart
// dependency records.
type Scanner struct {
	fs afero.Fs
}

// New creates a scanner reading from the given filesystem.
func New(fs afero.Fs) *Scanner {
	return &Scanner{fs: fs}
}

// Scan walks the filesystem once and returns every chart dependency found
// in files matching any of the patterns. Patterns support "**" for
// arbitrary directory depth. Unparseable files are skipped with a warning;
// they never abort the scan.
func (s *Scanner) Scan(patterns []string) ([]domain.Dependency, error) {
	matchers := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		matcher, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, matcher)
	}

	var deps []domain.Dependency
	walkErr := afero.Walk(s.fs, ".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		normalized := filepath.ToSlash(path)
		if !anyMatch(matchers, normalized) {
			return nil
		}

		fileDeps, scanErr := s.scanFile(normalized)
		if scanErr != nil {
			logger.Warnf("Skipping manifest %q: %v", normalized, scanErr)
			return nil
		}
		deps = append(deps, fileDeps...)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return deps, nil
}

// scanFile parses one multi-document YAML file and extracts dependencies
// from every document it recognizes.
func (s *Scanner) scanFile(path string) ([]domain.Dependency, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}

	var deps []domain.Dependency
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for docIndex := 0; ; docIndex++ {
		var probe manifestProbe
		decodeErr := decoder.Decode(&probe)
		if errors.Is(decodeErr, io.EOF) {
			break
		}
		if decodeErr != nil {
			return nil, decodeErr
		}

		deps = append(deps, extractFromDocument(path, docIndex, &probe)...)
	}
	return deps, nil
}

func extractFromDocument(path string, docIndex int, probe *manifestProbe) []domain.Dependency {
	if strings.HasPrefix(probe.APIVersion, argoAPIGroup) && probe.Kind == "Application" {
		return extractFromApplication(path, docIndex, probe)
	}
	if filepath.Base(path) == chartFileName && len(probe.Dependencies) > 0 {
		return extractFromChart(path, docIndex, probe)
	}
	return nil
}

func extractFromApplication(path string, docIndex int, probe *manifestProbe) []domain.Dependency {
	var deps []domain.Dependency

	if src := probe.Spec.Source; src != nil {
		if dep, ok := dependencyFromSource(path, docIndex, *src,
			[]string{"spec", "source", "targetRevision"}); ok {
			deps = append(deps, dep)
		}
	}
	for i, src := range probe.Spec.Sources {
		if dep, ok := dependencyFromSource(path, docIndex, src,
			[]string{"spec", "sources", strconv.Itoa(i), "targetRevision"}); ok {
			deps = append(deps, dep)
		}
	}
	return deps
}

func dependencyFromSource(
	path string,
	docIndex int,
	src argoSource,
	versionPath []string,
) (domain.Dependency, bool) {
	if src.Chart == "" || src.RepoURL == "" || src.TargetRevision == "" {
		logger.Debugf(
			"Skipping source in %s (doc %d): not a chart reference", path, docIndex,
		)
		return domain.Dependency{}, false
	}

	return domain.Dependency{
		ManifestPath:   path,
		DocumentIndex:  docIndex,
		Name:           src.Chart,
		RepositoryURL:  src.RepoURL,
		RepositoryKind: detectKind(src.RepoURL),
		CurrentVersion: src.TargetRevision,
		VersionPath:    versionPath,
	}, true
}

func extractFromChart(path string, docIndex int, probe *manifestProbe) []domain.Dependency {
	var deps []domain.Dependency
	for i, cd := range probe.Dependencies {
		if cd.Name == "" || cd.Version == "" || cd.Repository == "" {
			logger.Debugf(
				"Skipping dependency %d in %s: missing name, version, or repository",
				i, path,
			)
			continue
		}
		deps = append(deps, domain.Dependency{
			ManifestPath:   path,
			DocumentIndex:  docIndex,
			Name:           cd.Name,
			RepositoryURL:  cd.Repository,
			RepositoryKind: detectKind(cd.Repository),
			CurrentVersion: cd.Version,
			VersionPath:    []string{"dependencies", strconv.Itoa(i), "version"},
		})
	}
	return deps
}

// detectKind treats oci:// URLs and scheme-less host paths as registries;
// everything else is an index repository.
func detectKind(repoURL string) domain.RepositoryKind {
	if strings.HasPrefix(repoURL, "oci://") || !strings.Contains(repoURL, "://") {
		return domain.RepositoryKindRegistry
	}
	return domain.RepositoryKindIndex
}

// compilePattern converts a glob pattern into a regexp. "**" crosses
// directory boundaries, "*" and "?" stay within one path segment.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			sb.WriteString(`(?:[^/]+/)*`)
			i += 2
		case strings.HasPrefix(pattern[i:], "**"):
			sb.WriteString(`.*`)
			i++
		case pattern[i] == '*':
			sb.WriteString(`[^/]*`)
		case pattern[i] == '?':
			sb.WriteString(`[^/]`)
		default:
			sb.WriteString(regexp.QuoteMeta(string(pattern[i])))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

func anyMatch(matchers []*regexp.Regexp, path string) bool {
	for _, m := range matchers {
		if m.MatchString(path) {
			return true
		}
	}
	return false
}
