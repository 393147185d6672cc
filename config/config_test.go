package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/helmup/config"
	"github.com/rios0rios0/helmup/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "helmup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("should load a complete config", func(t *testing.T) {
		// given
		path := writeConfig(t, `
manifests:
  - "apps/**/*.yaml"
  - "charts/**/Chart.yaml"
updateStrategy: patch
allowPrereleases: true
ignore:
  - dependencyName: postgresql
  - dependencyName: nginx
    updateTypes: [major]
registryCredentials:
  - registry: registry.example.com
    authType: bearer
    password: tok-inline
git:
  baseBranch: main
  branchPrefix: "deps/"
github:
  owner: acme
  repo: gitops
changelogs:
  nginx: bitnami/charts
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"apps/**/*.yaml", "charts/**/Chart.yaml"}, cfg.Manifests)
		assert.Equal(t, "patch", cfg.UpdateStrategy)
		assert.True(t, cfg.AllowPrereleases)
		require.Len(t, cfg.Ignore, 2)
		assert.Equal(t, "deps/", cfg.Git.BranchPrefix)
		assert.Equal(t, "acme", cfg.GitHub.Owner)
		assert.Equal(t, "bitnami/charts", cfg.Changelogs["nginx"])
	})

	t.Run("should apply defaults for omitted fields", func(t *testing.T) {
		// given
		path := writeConfig(t, "manifests:\n  - \"apps/*.yaml\"\n")

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "minor", cfg.UpdateStrategy)
		assert.False(t, cfg.AllowPrereleases)
		assert.Equal(t, "origin", cfg.Git.Remote)
		assert.Equal(t, "helmup/", cfg.Git.BranchPrefix)
		assert.Equal(t, "helmup", cfg.Git.AuthorName)
		assert.Equal(t, "helmup@localhost", cfg.Git.AuthorEmail)
	})

	t.Run("should expand environment variables in secrets", func(t *testing.T) {
		// given
		t.Setenv("HELMUP_TEST_REG_PASS", "from-env")
		t.Setenv("HELMUP_TEST_GH_TOKEN", "gh-from-env")
		path := writeConfig(t, `
manifests:
  - "apps/*.yaml"
registryCredentials:
  - registry: registry.example.com
    authType: basic
    username: deploy
    password: ${HELMUP_TEST_REG_PASS}
github:
  token: ${HELMUP_TEST_GH_TOKEN}
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.RegistryCredentials[0].Password)
		assert.Equal(t, "gh-from-env", cfg.GitHub.Token)
	})

	t.Run("should fail without manifest patterns", func(t *testing.T) {
		// given
		path := writeConfig(t, "updateStrategy: minor\n")

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "manifest pattern")
	})

	t.Run("should fail on an unknown update strategy", func(t *testing.T) {
		// given
		path := writeConfig(t, "manifests: [\"a.yaml\"]\nupdateStrategy: aggressive\n")

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "updateStrategy")
	})

	t.Run("should fail on a credential without a password", func(t *testing.T) {
		// given
		path := writeConfig(t, `
manifests: ["a.yaml"]
registryCredentials:
  - registry: registry.example.com
    authType: bearer
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password is required")
	})

	t.Run("should fail on basic auth without a username", func(t *testing.T) {
		// given
		path := writeConfig(t, `
manifests: ["a.yaml"]
registryCredentials:
  - registry: registry.example.com
    authType: basic
    password: p
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "username is required")
	})

	t.Run("should fail on an unknown auth type", func(t *testing.T) {
		// given
		path := writeConfig(t, `
manifests: ["a.yaml"]
registryCredentials:
  - registry: registry.example.com
    authType: ntlm
    password: p
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "authType must be basic or bearer")
	})

	t.Run("should fail when the file does not exist", func(t *testing.T) {
		// when
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestResolveToken(t *testing.T) {
	t.Run("should return inline values unchanged", func(t *testing.T) {
		assert.Equal(t, "plain-token", config.ResolveToken("plain-token"))
	})

	t.Run("should return empty input unchanged", func(t *testing.T) {
		assert.Empty(t, config.ResolveToken(""))
	})

	t.Run("should expand an environment variable reference", func(t *testing.T) {
		// given
		t.Setenv("HELMUP_TEST_TOKEN", "secret-value")

		// when / then
		assert.Equal(t, "secret-value", config.ResolveToken("${HELMUP_TEST_TOKEN}"))
	})

	t.Run("should expand to empty when the variable is unset", func(t *testing.T) {
		assert.Empty(t, config.ResolveToken("${HELMUP_TEST_DEFINITELY_UNSET}"))
	})

	t.Run("should read the secret from a file path", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("file-secret\n"), 0o600))

		// when / then: file contents win, trailing whitespace trimmed
		assert.Equal(t, "file-secret", config.ResolveToken(path))
	})

	t.Run("should resolve an env var pointing at a secret file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("indirect-secret"), 0o600))
		t.Setenv("HELMUP_TEST_TOKEN_FILE", path)

		// when / then
		assert.Equal(t, "indirect-secret", config.ResolveToken("${HELMUP_TEST_TOKEN_FILE}"))
	})
}

func TestPolicy(t *testing.T) {
	t.Parallel()

	t.Run("should convert config rules into a domain policy", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{
			UpdateStrategy:   "patch",
			AllowPrereleases: true,
			Ignore: []config.IgnoreConfig{
				{DependencyName: "postgresql"},
				{DependencyName: "nginx", UpdateTypes: []string{"major", "minor"}},
			},
		}

		// when
		policy := cfg.Policy()

		// then
		assert.Equal(t, domain.StrategyPatch, policy.Strategy)
		assert.True(t, policy.AllowPrereleases)
		require.Len(t, policy.Ignore, 2)
		assert.Empty(t, policy.Ignore[0].UpdateTypes)
		assert.Equal(t,
			[]domain.UpdateType{domain.UpdateTypeMajor, domain.UpdateTypeMinor},
			policy.Ignore[1].UpdateTypes,
		)
	})
}

func TestCredentials(t *testing.T) {
	t.Parallel()

	t.Run("should preserve declaration order", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{
			RegistryCredentials: []config.CredentialConfig{
				{Registry: "a.example.com", AuthType: "bearer", Password: "first"},
				{Registry: "a.example.com", AuthType: "bearer", Password: "second"},
				{Registry: "b.example.com", AuthType: "basic", Username: "u", Password: "p"},
			},
		}

		// when
		creds := cfg.Credentials()

		// then
		require.Len(t, creds, 3)
		assert.Equal(t, "first", creds[0].Password)
		assert.Equal(t, "second", creds[1].Password)
		assert.Equal(t, domain.AuthTypeBasic, creds[2].AuthType)
	})
}
