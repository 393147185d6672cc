package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/distribution/reference"

	"github.com/rios0rios0/helmup/domain"
)

const ociScheme = "oci://"

var errMissingTags = errors.New("tag list document has no tags field")

// tagListDocument is the wire shape of a registry's /v2/{name}/tags/list
// response.
type tagListDocument struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// RegistryFetcher lists chart tags from an OCI registry. Tags carry no
// metadata beyond the version string itself.
type RegistryFetcher struct {
	client      *http.Client
	credentials []domain.RegistryCredential
}

// NewRegistryFetcher creates a registry tag fetcher using the given
// transport and the caller-supplied, immutable credential list.
func NewRegistryFetcher(client *http.Client, credentials []domain.RegistryCredential) *RegistryFetcher {
	return &RegistryFetcher{client: client, credentials: credentials}
}

func (f *RegistryFetcher) Kind() domain.RepositoryKind { return domain.RepositoryKindRegistry }

// Fetch lists the tags published for packageName and returns them as the
// chart's version entries. The repository URL may carry the oci:// prefix
// or none at all; either way it is normalized to the registry's HTTPS
// tag-listing endpoint.
func (f *RegistryFetcher) Fetch(
	ctx context.Context,
	repositoryURL string,
	packageName string,
) (domain.RepositoryIndex, error) {
	tagsURL, err := tagListURL(repositoryURL, packageName)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchErrorParse, URL: repositoryURL, Err: err}
	}

	body, err := get(ctx, f.client, tagsURL, f.credentials)
	if err != nil {
		return nil, err
	}

	var doc tagListDocument
	if unmarshalErr := json.Unmarshal(body, &doc); unmarshalErr != nil {
		return nil, &domain.FetchError{
			Kind: domain.FetchErrorParse,
			URL:  tagsURL,
			Err:  unmarshalErr,
		}
	}
	if doc.Tags == nil {
		return nil, &domain.FetchError{
			Kind: domain.FetchErrorParse,
			URL:  tagsURL,
			Err:  errMissingTags,
		}
	}

	infos := make([]domain.ChartVersionInfo, 0, len(doc.Tags))
	for _, tag := range doc.Tags {
		infos = append(infos, domain.ChartVersionInfo{Version: tag})
	}
	return domain.RepositoryIndex{packageName: infos}, nil
}

// tagListURL builds https://{host}/v2/{name}/tags/list from a registry URL
// and a chart name. The combined reference is validated and split with the
// distribution reference grammar, so malformed registry paths fail before
// any network call.
func tagListURL(repositoryURL, packageName string) (string, error) {
	host := strings.TrimPrefix(repositoryURL, ociScheme)
	host = strings.TrimSuffix(host, "/")

	named, err := reference.ParseNamed(host + "/" + packageName)
	if err != nil {
		return "", err
	}
	return "https://" + reference.Domain(named) + "/v2/" + reference.Path(named) + "/tags/list", nil
}
