package changelog //nolint:testpackage // tests unexported functions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindChangelog(t *testing.T) {
	t.Parallel()

	t.Run("should return nothing for a chart without a source", func(t *testing.T) {
		t.Parallel()

		// given
		finder := NewGitHubFinder("", map[string]string{"nginx": "bitnami/charts"})

		// when
		notes, err := finder.FindChangelog(context.Background(), "redis", "1.0.0", "2.0.0")

		// then
		require.NoError(t, err)
		assert.Empty(t, notes)
	})

	t.Run("should fail on a source that is not owner/repo", func(t *testing.T) {
		t.Parallel()

		// given
		finder := NewGitHubFinder("", map[string]string{"nginx": "bitnami-charts"})

		// when
		_, err := finder.FindChangelog(context.Background(), "nginx", "1.0.0", "2.0.0")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be owner/repo")
	})

	t.Run("should return nothing when the versions are not semver", func(t *testing.T) {
		t.Parallel()

		// given
		finder := NewGitHubFinder("", map[string]string{"nginx": "bitnami/charts"})

		// when
		notes, err := finder.FindChangelog(context.Background(), "nginx", "HEAD", "2.0.0")

		// then
		require.NoError(t, err)
		assert.Empty(t, notes)
	})
}

func TestNormalizeTag(t *testing.T) {
	t.Parallel()

	t.Run("should strip the chart name prefix", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "15.10.0", normalizeTag("nginx-15.10.0", "nginx"))
	})

	t.Run("should strip a v prefix", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "15.10.0", normalizeTag("v15.10.0", "nginx"))
	})

	t.Run("should strip a combined chart and v prefix", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "15.10.0", normalizeTag("nginx-v15.10.0", "nginx"))
	})

	t.Run("should leave bare versions alone", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "15.10.0", normalizeTag("15.10.0", "nginx"))
	})
}
