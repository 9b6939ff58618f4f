package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Memo is a process-wide single-value cache with TTL and in-flight
// de-duplication. Get either returns the fresh value, joins the fetch already
// in flight, or starts a new one; the single-writer rule is enforced by the
// singleflight group. A failed fetch clears the in-flight marker without
// touching the stored value.
type Memo[T any] struct {
	mu        sync.Mutex
	value     T
	hasValue  bool
	expiresAt time.Time
	ttl       time.Duration
	group     singleflight.Group
}

// NewMemo creates a memo whose values stay fresh for ttl.
func NewMemo[T any](ttl time.Duration) *Memo[T] {
	return &Memo[T]{ttl: ttl}
}

// Get returns the cached value, or populates it through fetch. Concurrent
// callers during a fetch share its single result.
func (m *Memo[T]) Get(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	if value, ok := m.fresh(); ok {
		CacheHits.WithLabelValues("memo").Inc()
		return value, nil
	}
	CacheMisses.WithLabelValues("memo").Inc()

	result, err, shared := m.group.Do("value", func() (any, error) {
		// A fetch that finished while this caller was queued already
		// populated the value.
		if value, ok := m.fresh(); ok {
			return value, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.value = value
		m.hasValue = true
		m.expiresAt = time.Now().Add(m.ttl)
		m.mu.Unlock()
		return value, nil
	})
	if shared {
		InFlightJoins.Inc()
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Invalidate drops the cached value so the next Get fetches again.
func (m *Memo[T]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.value = zero
	m.hasValue = false
	m.expiresAt = time.Time{}
}

// fresh returns the value if present and unexpired.
func (m *Memo[T]) fresh() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasValue && time.Now().Before(m.expiresAt) {
		return m.value, true
	}
	var zero T
	return zero, false
}
