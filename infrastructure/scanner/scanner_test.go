package scanner_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/helmup/domain"
	"github.com/rios0rios0/helmup/infrastructure/scanner"
)

const argoApplication = `apiVersion: argoproj.io/v1alpha1
kind: Application
metadata:
  name: nginx
spec:
  source:
    repoURL: https://charts.bitnami.com/bitnami
    chart: nginx
    targetRevision: 15.9.0
  destination:
    namespace: web
`

const argoMultiSource = `apiVersion: argoproj.io/v1alpha1
kind: Application
metadata:
  name: observability
spec:
  sources:
    - repoURL: https://prometheus-community.github.io/helm-charts
      chart: kube-prometheus-stack
      targetRevision: 55.0.0
    - repoURL: https://github.com/org/config.git
      targetRevision: main
      path: overlays/prod
    - repoURL: oci://registry.example.com/helm
      chart: grafana
      targetRevision: 7.0.1
`

const chartYAML = `apiVersion: v2
name: umbrella
version: 0.1.0
dependencies:
  - name: postgresql
    version: 12.5.8
    repository: https://charts.bitnami.com/bitnami
  - name: redis
    version: 18.1.0
    repository: oci://registry-1.docker.io/bitnamicharts
  - name: local-lib
    version: 1.0.0
    repository: ""
`

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestScan(t *testing.T) {
	t.Parallel()

	t.Run("should extract a chart reference from an Application source", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "apps/nginx.yaml", argoApplication)
		s := scanner.New(fs)

		// when
		deps, err := s.Scan([]string{"apps/*.yaml"})

		// then
		require.NoError(t, err)
		require.Len(t, deps, 1)
		dep := deps[0]
		assert.Equal(t, "apps/nginx.yaml", dep.ManifestPath)
		assert.Equal(t, 0, dep.DocumentIndex)
		assert.Equal(t, "nginx", dep.Name)
		assert.Equal(t, "https://charts.bitnami.com/bitnami", dep.RepositoryURL)
		assert.Equal(t, domain.RepositoryKindIndex, dep.RepositoryKind)
		assert.Equal(t, "15.9.0", dep.CurrentVersion)
		assert.Equal(t, []string{"spec", "source", "targetRevision"}, dep.VersionPath)
	})

	t.Run("should extract chart sources and skip git sources in a multi-source Application", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "apps/observability.yaml", argoMultiSource)
		s := scanner.New(fs)

		// when
		deps, err := s.Scan([]string{"apps/*.yaml"})

		// then: the git source has no chart field and is skipped
		require.NoError(t, err)
		require.Len(t, deps, 2)
		assert.Equal(t, "kube-prometheus-stack", deps[0].Name)
		assert.Equal(t, []string{"spec", "sources", "0", "targetRevision"}, deps[0].VersionPath)
		assert.Equal(t, "grafana", deps[1].Name)
		assert.Equal(t, domain.RepositoryKindRegistry, deps[1].RepositoryKind)
		assert.Equal(t, []string{"spec", "sources", "2", "targetRevision"}, deps[1].VersionPath)
	})

	t.Run("should index documents separately in a multi-document manifest", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "apps/stack.yaml", argoApplication+"---\n"+argoMultiSource)
		s := scanner.New(fs)

		// when
		deps, err := s.Scan([]string{"apps/stack.yaml"})

		// then
		require.NoError(t, err)
		require.Len(t, deps, 3)
		assert.Equal(t, 0, deps[0].DocumentIndex)
		assert.Equal(t, 1, deps[1].DocumentIndex)
		assert.Equal(t, 1, deps[2].DocumentIndex)
	})

	t.Run("should extract dependencies from a Chart.yaml", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "charts/umbrella/Chart.yaml", chartYAML)
		s := scanner.New(fs)

		// when
		deps, err := s.Scan([]string{"charts/**/Chart.yaml"})

		// then: the dependency without a repository is skipped
		require.Len(t, deps, 2)
		require.NoError(t, err)
		assert.Equal(t, "postgresql", deps[0].Name)
		assert.Equal(t, domain.RepositoryKindIndex, deps[0].RepositoryKind)
		assert.Equal(t, []string{"dependencies", "0", "version"}, deps[0].VersionPath)
		assert.Equal(t, "redis", deps[1].Name)
		assert.Equal(t, domain.RepositoryKindRegistry, deps[1].RepositoryKind)
		assert.Equal(t, []string{"dependencies", "1", "version"}, deps[1].VersionPath)
	})

	t.Run("should match arbitrary depth with a double-star pattern", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "envs/prod/eu/apps/nginx.yaml", argoApplication)
		writeFile(t, fs, "nginx.yaml", argoApplication)
		s := scanner.New(fs)

		// when
		deps, err := s.Scan([]string{"envs/**/*.yaml"})

		// then: only the nested file matches
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "envs/prod/eu/apps/nginx.yaml", deps[0].ManifestPath)
	})

	t.Run("should skip unparseable files without aborting the scan", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "apps/broken.yaml", "{{{ not yaml")
		writeFile(t, fs, "apps/nginx.yaml", argoApplication)
		s := scanner.New(fs)

		// when
		deps, err := s.Scan([]string{"apps/*.yaml"})

		// then
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "nginx", deps[0].Name)
	})

	t.Run("should ignore documents that are not chart references", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "apps/config.yaml", "apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: settings\n")
		s := scanner.New(fs)

		// when
		deps, err := s.Scan([]string{"apps/*.yaml"})

		// then
		require.NoError(t, err)
		assert.Empty(t, deps)
	})

	t.Run("should keep single-star matches within one path segment", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "apps/nested/nginx.yaml", argoApplication)
		s := scanner.New(fs)

		// when
		deps, err := s.Scan([]string{"apps/*.yaml"})

		// then
		require.NoError(t, err)
		assert.Empty(t, deps)
	})
}
