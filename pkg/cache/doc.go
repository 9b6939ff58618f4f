// Package cache provides the two cache layers used by the API client.
//
// The redis-backed Manager stores serialized response envelopes keyed by
// endpoint and query, with a TTL taken from the entry. It backs the
// transport's read-through GET caching.
//
// Memo is a process-wide single-value cache with TTL and in-flight
// de-duplication: a read either returns the fresh value, joins the fetch
// already in flight, or starts a new fetch. Only one fetch may be in flight
// at a time, and the in-flight marker is cleared on both success and failure.
// Slow-changing lookups (tag lists, workspace settings) are built on Memo.
package cache
