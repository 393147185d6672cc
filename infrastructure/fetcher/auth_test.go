package fetcher_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/helmup/domain"
	"github.com/rios0rios0/helmup/infrastructure/fetcher"
)

func newRequest(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	return req
}

func TestDecorateRequest(t *testing.T) {
	t.Parallel()

	t.Run("should attach basic auth for an exact host match", func(t *testing.T) {
		t.Parallel()

		// given
		req := newRequest(t, "https://charts.example.com/index.yaml")
		credentials := []domain.RegistryCredential{
			{Registry: "charts.example.com", AuthType: domain.AuthTypeBasic, Username: "u", Password: "p"},
		}

		// when
		fetcher.DecorateRequest(req, credentials)

		// then
		user, pass, ok := req.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "u", user)
		assert.Equal(t, "p", pass)
	})

	t.Run("should attach a bearer token for an exact host match", func(t *testing.T) {
		t.Parallel()

		// given
		req := newRequest(t, "https://registry.example.com/v2/nginx/tags/list")
		credentials := []domain.RegistryCredential{
			{Registry: "registry.example.com", AuthType: domain.AuthTypeBearer, Password: "tok"},
		}

		// when
		fetcher.DecorateRequest(req, credentials)

		// then
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	})

	t.Run("should leave the request untouched when no credential matches", func(t *testing.T) {
		t.Parallel()

		// given
		req := newRequest(t, "https://charts.example.com/index.yaml")
		credentials := []domain.RegistryCredential{
			{Registry: "other.example.com", AuthType: domain.AuthTypeBearer, Password: "tok"},
		}

		// when
		fetcher.DecorateRequest(req, credentials)

		// then
		assert.Empty(t, req.Header.Get("Authorization"))
	})

	t.Run("should distinguish hosts that differ only by port", func(t *testing.T) {
		t.Parallel()

		// given
		req := newRequest(t, "https://registry.example.com:5000/v2/nginx/tags/list")
		credentials := []domain.RegistryCredential{
			{Registry: "registry.example.com", AuthType: domain.AuthTypeBearer, Password: "wrong"},
			{Registry: "registry.example.com:5000", AuthType: domain.AuthTypeBearer, Password: "right"},
		}

		// when
		fetcher.DecorateRequest(req, credentials)

		// then
		assert.Equal(t, "Bearer right", req.Header.Get("Authorization"))
	})

	t.Run("should match hosts case-sensitively", func(t *testing.T) {
		t.Parallel()

		// given
		req := newRequest(t, "https://charts.example.com/index.yaml")
		credentials := []domain.RegistryCredential{
			{Registry: "Charts.Example.Com", AuthType: domain.AuthTypeBearer, Password: "tok"},
		}

		// when
		fetcher.DecorateRequest(req, credentials)

		// then
		assert.Empty(t, req.Header.Get("Authorization"))
	})

	t.Run("should apply the first matching credential in declaration order", func(t *testing.T) {
		t.Parallel()

		// given
		req := newRequest(t, "https://charts.example.com/index.yaml")
		credentials := []domain.RegistryCredential{
			{Registry: "charts.example.com", AuthType: domain.AuthTypeBearer, Password: "first"},
			{Registry: "charts.example.com", AuthType: domain.AuthTypeBearer, Password: "second"},
		}

		// when
		fetcher.DecorateRequest(req, credentials)

		// then
		assert.Equal(t, "Bearer first", req.Header.Get("Authorization"))
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should return the fetcher registered for a kind", func(t *testing.T) {
		t.Parallel()

		// given
		reg := fetcher.NewRegistry()
		indexFetcher := fetcher.NewIndexFetcher(nil, nil)
		reg.Register(indexFetcher)

		// when / then
		assert.Same(t, indexFetcher, reg.Get(domain.RepositoryKindIndex))
		assert.Nil(t, reg.Get(domain.RepositoryKindRegistry))
	})

	t.Run("should list the registered kinds", func(t *testing.T) {
		t.Parallel()

		// given
		reg := fetcher.NewRegistry()
		reg.Register(fetcher.NewIndexFetcher(nil, nil))
		reg.Register(fetcher.NewRegistryFetcher(nil, nil))

		// when
		kinds := reg.Kinds()

		// then
		assert.ElementsMatch(t,
			[]domain.RepositoryKind{domain.RepositoryKindIndex, domain.RepositoryKindRegistry},
			kinds,
		)
	})
}
