// Package fetcher contains the repository fetchers: one for classic Helm
// index repositories and one for OCI registries. Both speak the same
// contract (domain.Fetcher), perform exactly one HTTP GET per fetch, and
// classify failures with the domain.FetchError taxonomy.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rios0rios0/helmup/domain"
)

const defaultTimeout = 30 * time.Second

// NewHTTPClient returns the transport used by both fetchers. Timeout is
// transport policy; the fetchers treat a timeout like any other network
// failure.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// get performs one authenticated GET and returns the response body, mapping
// every failure mode onto the fetch error taxonomy.
func get(
	ctx context.Context,
	client *http.Client,
	rawURL string,
	credentials []domain.RegistryCredential,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchErrorNetwork, URL: rawURL, Err: err}
	}

	DecorateRequest(req, credentials)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchErrorNetwork, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.FetchError{
			Kind:   domain.FetchErrorHTTP,
			URL:    rawURL,
			Status: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchErrorNetwork, URL: rawURL, Err: err}
	}
	return body, nil
}
