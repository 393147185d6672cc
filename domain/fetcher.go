package domain

import (
	"context"
	"fmt"
)

// FetchErrorKind classifies why a repository fetch failed.
type FetchErrorKind string

const (
	// FetchErrorNetwork is a connection-level failure (DNS, refused, timeout).
	FetchErrorNetwork FetchErrorKind = "network"
	// FetchErrorHTTP is a non-2xx response. Rejected credentials surface
	// here with a 401/403 status, not as a distinct kind.
	FetchErrorHTTP FetchErrorKind = "http"
	// FetchErrorParse is a malformed index or tag-list body.
	FetchErrorParse FetchErrorKind = "parse"
)

// FetchError is the failure a fetcher returns. The resolution engine
// recovers every kind locally as "no versions for this repository"; nothing
// escapes the engine as an error except context cancellation.
type FetchError struct {
	Kind   FetchErrorKind
	URL    string
	Status int // HTTP status, set for FetchErrorHTTP
	Err    error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchErrorHTTP {
		return fmt.Sprintf("%s error fetching %s: status %d", e.Kind, e.URL, e.Status)
	}
	return fmt.Sprintf("%s error fetching %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves the available versions of charts in one repository.
// Implementations perform exactly one HTTP call per Fetch and never retry;
// retry policy belongs to the transport, not this contract.
type Fetcher interface {
	// Kind returns the repository kind this fetcher handles.
	Kind() RepositoryKind

	// Fetch returns the version entries discovered at repositoryURL. An
	// index-kind fetcher returns the whole index regardless of packageName
	// so the result can be cached per repository; a registry-kind fetcher
	// returns an index holding only packageName. A chart that is simply
	// absent from the repository is not an error: its entry is an empty or
	// missing list.
	Fetch(ctx context.Context, repositoryURL, packageName string) (RepositoryIndex, error)
}
