package cache

import (
	"time"
)

// Entry is a cached API response envelope in its wire form.
type Entry struct {
	// Body is the raw envelope JSON.
	Body []byte `json:"body"`

	// StatusCode is the HTTP status the envelope arrived with.
	StatusCode int `json:"status_code"`

	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`

	// ExpiresAt is when the entry becomes stale.
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// TTL returns the time until expiration, or 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
