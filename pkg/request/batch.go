package request

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchOptions configures a Batch.
type BatchOptions[T any] struct {
	// OnSuccess fires only when every key succeeded.
	OnSuccess func(map[string]State[T])

	// OnError fires when any key failed, with "key: message" pairs joined by
	// ", " in key order.
	OnError func(string)
}

// Batch runs a fixed set of named, independent calls concurrently and tracks
// one lifecycle state per key. The key set is fixed at construction; keys are
// sorted so aggregate error messages are deterministic.
type Batch[T any] struct {
	mu     sync.Mutex
	calls  map[string]Call[T]
	keys   []string
	states map[string]State[T]
	opts   BatchOptions[T]
	gen    uint64
	alive  bool
}

// NewBatch creates a batch executor over the given named calls.
func NewBatch[T any](calls map[string]Call[T], opts BatchOptions[T]) *Batch[T] {
	b := &Batch[T]{
		calls:  make(map[string]Call[T], len(calls)),
		keys:   make([]string, 0, len(calls)),
		states: make(map[string]State[T], len(calls)),
		opts:   opts,
		alive:  true,
	}
	for key, call := range calls {
		b.calls[key] = call
		b.keys = append(b.keys, key)
		b.states[key] = State[T]{}
	}
	sort.Strings(b.keys)
	return b
}

// Execute marks every key loading, runs all calls concurrently, and commits
// each key's terminal state independently as it settles. One key's failure
// does not affect sibling keys. The aggregate callbacks fire only after every
// key has reached a terminal state.
func (b *Batch[T]) Execute(ctx context.Context) {
	b.mu.Lock()
	if !b.alive {
		b.mu.Unlock()
		return
	}
	b.gen++
	gen := b.gen
	for _, key := range b.keys {
		b.states[key] = loadingState[T]()
	}
	b.mu.Unlock()

	var g errgroup.Group
	for _, key := range b.keys {
		call := b.calls[key]
		g.Go(func() error {
			resp, err := call(ctx)
			if err == nil && resp.IsSuccess() {
				var data T
				if resp.Data != nil {
					data = *resp.Data
				}
				b.commit(gen, key, successState(data))
				return nil
			}
			b.commit(gen, key, errorState[T](failureMessage(resp, err)))
			return nil
		})
	}
	_ = g.Wait()

	b.mu.Lock()
	if !b.alive || gen != b.gen {
		b.mu.Unlock()
		return
	}
	states := make(map[string]State[T], len(b.keys))
	var failures []string
	allSuccess := true
	for _, key := range b.keys {
		s := b.states[key]
		states[key] = s
		if s.IsError {
			failures = append(failures, key+": "+s.Error)
		}
		if !s.IsSuccess {
			allSuccess = false
		}
	}
	b.mu.Unlock()

	if allSuccess {
		batchesTotal.WithLabelValues("success").Inc()
		if b.opts.OnSuccess != nil {
			b.opts.OnSuccess(states)
		}
		return
	}
	batchesTotal.WithLabelValues("error").Inc()
	if len(failures) > 0 && b.opts.OnError != nil {
		b.opts.OnError(strings.Join(failures, ", "))
	}
}

// AllSuccess reports whether every key is in the success state.
func (b *Batch[T]) AllSuccess() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range b.keys {
		if !b.states[key].IsSuccess {
			return false
		}
	}
	return true
}

// HasErrors reports whether any key is in the error state.
func (b *Batch[T]) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range b.keys {
		if b.states[key].IsError {
			return true
		}
	}
	return false
}

// States returns a snapshot of every key's lifecycle state.
func (b *Batch[T]) States() map[string]State[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	states := make(map[string]State[T], len(b.keys))
	for _, key := range b.keys {
		states[key] = b.states[key]
	}
	return states
}

// Reset restores every key to idle. In-flight rounds are discarded via the
// generation bump.
func (b *Batch[T]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	for _, key := range b.keys {
		b.states[key] = State[T]{}
	}
}

// Dispose tears the batch down; later results no longer mutate state.
func (b *Batch[T]) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alive = false
}

func (b *Batch[T]) commit(gen uint64, key string, s State[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive || gen != b.gen {
		staleResultsTotal.Inc()
		return
	}
	b.states[key] = s
}
