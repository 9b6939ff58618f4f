package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached API response.
type Key struct {
	// Endpoint is the API path (e.g., "/v1/prompts").
	Endpoint string

	// Query holds the request's query parameters.
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: api:endpoint:query1=val1:query2=val2
//
// Example:
//
//	api:v1/prompts:page=2:page_size=50
func (k Key) String() string {
	parts := []string{"api"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Query.Get(name)))
		}
	}

	return strings.Join(parts, ":")
}
