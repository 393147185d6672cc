package fetcher

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/helmup/domain"
)

const indexFileName = "index.yaml"

var errMissingEntries = errors.New("index document has no entries mapping")

// indexDocument is the wire shape of a Helm repository index.yaml.
type indexDocument struct {
	APIVersion string                  `yaml:"apiVersion"`
	Entries    map[string][]indexEntry `yaml:"entries"`
}

type indexEntry struct {
	Version    string    `yaml:"version"`
	AppVersion string    `yaml:"appVersion"`
	Created    time.Time `yaml:"created"`
	Digest     string    `yaml:"digest"`
}

// IndexFetcher fetches and parses a Helm repository's index.yaml. One fetch
// returns the versions of every chart the repository serves, which is what
// lets the repository cache run a single fetch per repository.
type IndexFetcher struct {
	client      *http.Client
	credentials []domain.RegistryCredential
}

// NewIndexFetcher creates an index fetcher using the given transport and
// the caller-supplied, immutable credential list.
func NewIndexFetcher(client *http.Client, credentials []domain.RegistryCredential) *IndexFetcher {
	return &IndexFetcher{client: client, credentials: credentials}
}

func (f *IndexFetcher) Kind() domain.RepositoryKind { return domain.RepositoryKindIndex }

// Fetch downloads the repository index and converts every chart's entries.
// The packageName argument is ignored: the whole index comes back in one
// response. A malformed document is a parse failure; a missing chart is
// simply absent from the returned index.
func (f *IndexFetcher) Fetch(
	ctx context.Context,
	repositoryURL string,
	_ string,
) (domain.RepositoryIndex, error) {
	indexURL := normalizeIndexURL(repositoryURL)

	body, err := get(ctx, f.client, indexURL, f.credentials)
	if err != nil {
		return nil, err
	}

	var doc indexDocument
	if unmarshalErr := yaml.Unmarshal(body, &doc); unmarshalErr != nil {
		return nil, &domain.FetchError{
			Kind: domain.FetchErrorParse,
			URL:  indexURL,
			Err:  unmarshalErr,
		}
	}
	if doc.Entries == nil {
		return nil, &domain.FetchError{
			Kind: domain.FetchErrorParse,
			URL:  indexURL,
			Err:  errMissingEntries,
		}
	}

	index := make(domain.RepositoryIndex, len(doc.Entries))
	for name, entries := range doc.Entries {
		infos := make([]domain.ChartVersionInfo, 0, len(entries))
		for _, entry := range entries {
			infos = append(infos, domain.ChartVersionInfo{
				Version:    entry.Version,
				AppVersion: entry.AppVersion,
				Created:    entry.Created,
				Digest:     entry.Digest,
			})
		}
		index[name] = infos
	}
	return index, nil
}

// normalizeIndexURL strips exactly one trailing slash and appends the index
// file name unless the URL already points at it.
func normalizeIndexURL(repositoryURL string) string {
	trimmed := strings.TrimSuffix(repositoryURL, "/")
	if strings.HasSuffix(trimmed, indexFileName) {
		return trimmed
	}
	return trimmed + "/" + indexFileName
}
