package cache

import (
	"net/url"
	"sort"
	"strings"
)

// apiKeyParam is the query parameter carrying the API key.
const apiKeyParam = "key"

// Key identifies a cached response.
type Key struct {
	// Endpoint is the API path relative to the base URL, e.g. "artist/releases/".
	Endpoint string

	// Query holds the request parameters. The API key parameter is ignored.
	Query url.Values
}

// String returns the Redis key.
// Format: blitzr:<endpoint>:<param>=<value>:... with parameters sorted by name.
//
// Example:
//
//	blitzr:artist/releases:limit=10:slug=radiohead:start=0
func (k Key) String() string {
	parts := []string{"blitzr"}

	if endpoint := strings.Trim(k.Endpoint, "/"); endpoint != "" {
		parts = append(parts, endpoint)
	}

	names := make([]string, 0, len(k.Query))
	for name := range k.Query {
		if name == apiKeyParam {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parts = append(parts, name+"="+strings.Join(k.Query[name], ","))
	}

	return strings.Join(parts, ":")
}
