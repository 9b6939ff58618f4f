package request

import (
	"context"
	"errors"
	"sync"

	"github.com/promptstudio/api-client/pkg/envelope"
)

// ErrDisposed is returned when Mutate is called on a disposed mutation, so a
// write that never ran is never mistaken for a committed one.
var ErrDisposed = errors.New("mutation disposed")

// MutationCall produces one envelope for a write operation, parameterized by
// caller-supplied variables.
type MutationCall[T, V any] func(ctx context.Context, vars V) (*envelope.Response[T], error)

// MutationOptions configures a Mutation.
type MutationOptions[T any] struct {
	OnSuccess func(T)
	OnError   func(string)
}

// Mutation is the call-on-demand variant of Executor for writes. Unlike the
// executor it does not swallow failures: Mutate returns the unwrapped data or
// the error itself, so call sites must acknowledge a failed write. There is
// no automatic retry.
type Mutation[T, V any] struct {
	mu    sync.Mutex
	call  MutationCall[T, V]
	opts  MutationOptions[T]
	state State[T]
	alive bool
}

// NewMutation creates a mutation runner for the given call.
func NewMutation[T, V any](call MutationCall[T, V], opts MutationOptions[T]) *Mutation[T, V] {
	return &Mutation[T, V]{
		call:  call,
		opts:  opts,
		alive: true,
	}
}

// Mutate runs the call with the given variables. On success it commits the
// success state and returns the payload; on any failure it commits the error
// state and returns the error. A disposed mutation does not run the call and
// returns ErrDisposed.
func (m *Mutation[T, V]) Mutate(ctx context.Context, vars V) (T, error) {
	var zero T

	m.mu.Lock()
	if !m.alive {
		m.mu.Unlock()
		return zero, ErrDisposed
	}
	m.state = loadingState[T]()
	m.mu.Unlock()

	resp, callErr := m.call(ctx, vars)

	err := callErr
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		msg := failureMessage(resp, callErr)
		m.commit(errorState[T](msg))
		mutationsTotal.WithLabelValues("error").Inc()
		if m.opts.OnError != nil {
			m.opts.OnError(msg)
		}
		return zero, err
	}

	var data T
	if resp.Data != nil {
		data = *resp.Data
	}
	m.commit(successState(data))
	mutationsTotal.WithLabelValues("success").Inc()
	if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(data)
	}
	return data, nil
}

// Reset returns the mutation to idle.
func (m *Mutation[T, V]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State[T]{}
}

// Dispose tears the mutation down; later results no longer mutate state.
func (m *Mutation[T, V]) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alive = false
}

// State returns a snapshot of the current lifecycle state.
func (m *Mutation[T, V]) State() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mutation[T, V]) commit(s State[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.alive {
		staleResultsTotal.Inc()
		return
	}
	m.state = s
}
