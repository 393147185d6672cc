package fetcher

import (
	"net/http"

	"github.com/rios0rios0/helmup/domain"
)

// DecorateRequest attaches the first configured credential whose registry
// pattern matches the request's target host and leaves the request
// untouched when none matches. Matching is a case-sensitive exact
// comparison against the URL host (including any port); when overlapping
// entries are configured, the first in declaration order wins.
//
// The decoration is a single pure step applied before each send, so it
// works identically for both fetcher kinds and keeps the HTTP client free
// of hidden per-request state.
func DecorateRequest(req *http.Request, credentials []domain.RegistryCredential) {
	host := req.URL.Host
	for _, cred := range credentials {
		if cred.Registry != host {
			continue
		}
		switch cred.AuthType {
		case domain.AuthTypeBasic:
			req.SetBasicAuth(cred.Username, cred.Password)
		case domain.AuthTypeBearer:
			req.Header.Set("Authorization", "Bearer "+cred.Password)
		}
		return
	}
}
