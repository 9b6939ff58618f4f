package request

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/promptstudio/api-client/pkg/envelope"
	"github.com/promptstudio/api-client/pkg/logging"
)

// Call produces one envelope from the backend. A non-nil error is a transport
// failure: the request never yielded an envelope.
type Call[T any] func(ctx context.Context) (*envelope.Response[T], error)

// Options configures an Executor.
type Options[T any] struct {
	// Immediate runs Execute once during New with a background context.
	Immediate bool

	// Retries is the number of additional attempts after a failed first
	// attempt; the call runs at most Retries+1 times per Execute.
	Retries int

	// RetryDelay is the base delay between attempts. Attempt n waits
	// n*RetryDelay before attempt n+1 (linear backoff).
	RetryDelay time.Duration

	// OnSuccess and OnError fire after the terminal state is committed.
	OnSuccess func(T)
	OnError   func(string)

	// OnResponse receives the committed terminal envelope. It is nil for
	// transport failures that produced no envelope.
	OnResponse func(*envelope.Response[T])
}

// Executor drives a single repeatable call: it tracks lifecycle state,
// retries failures up to a bound, and discards results from superseded or
// disposed calls.
type Executor[T any] struct {
	mu     sync.Mutex
	call   Call[T]
	opts   Options[T]
	state  State[T]
	gen    uint64
	cancel context.CancelFunc
	alive  bool
	sleep  func(context.Context, time.Duration) error
	logger zerolog.Logger
}

// New creates an executor for the given call. With Options.Immediate set the
// first execution runs synchronously before New returns.
func New[T any](call Call[T], opts Options[T]) *Executor[T] {
	e := &Executor[T]{
		call:   call,
		opts:   opts,
		alive:  true,
		sleep:  sleepContext,
		logger: logging.NewLogger("executor"),
	}
	if opts.Immediate {
		e.Execute(context.Background())
	}
	return e
}

// Execute runs the call until it reaches a terminal state. It never returns
// an error: failures are recorded in state and reported through OnError so UI
// call sites stay uniform. Invoking Execute while a prior call is still in
// flight supersedes it; only the most recently issued call may commit state.
func (e *Executor[T]) Execute(ctx context.Context) {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return
	}
	e.gen++
	gen := e.gen
	if e.cancel != nil {
		e.cancel()
	}
	callCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.state = loadingState[T]()
	e.mu.Unlock()

	attempts := e.opts.Retries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := e.call(callCtx)

		if err == nil && resp.IsSuccess() {
			var data T
			if resp.Data != nil {
				data = *resp.Data
			}
			if !e.commit(gen, successState(data)) {
				return
			}
			executionsTotal.WithLabelValues("success").Inc()
			if e.opts.OnResponse != nil {
				e.opts.OnResponse(resp)
			}
			if e.opts.OnSuccess != nil {
				e.opts.OnSuccess(data)
			}
			return
		}

		msg := failureMessage(resp, err)

		if attempt == attempts {
			if !e.commit(gen, errorState[T](msg)) {
				return
			}
			executionsTotal.WithLabelValues("error").Inc()
			e.logger.Warn().
				Str("error", msg).
				Int("attempts", attempt).
				Msg("Request failed, attempts exhausted")
			if e.opts.OnResponse != nil {
				e.opts.OnResponse(resp)
			}
			if e.opts.OnError != nil {
				e.opts.OnError(msg)
			}
			return
		}

		retriesTotal.Inc()
		delay := e.opts.RetryDelay * time.Duration(attempt)
		e.logger.Debug().
			Int("attempt", attempt).
			Dur("delay", delay).
			Str("error", msg).
			Msg("Retrying request after backoff")

		if err := e.sleep(callCtx, delay); err != nil {
			// Superseded or disposed waits are discarded by the commit
			// guard; a caller cancellation must still reach a terminal
			// state so the executor never stays loading.
			if !e.commit(gen, errorState[T](err.Error())) {
				return
			}
			executionsTotal.WithLabelValues("error").Inc()
			e.logger.Warn().
				Str("error", err.Error()).
				Int("attempts", attempt).
				Msg("Request cancelled during backoff")
			if e.opts.OnError != nil {
				e.opts.OnError(err.Error())
			}
			return
		}
	}
}

// Reset returns the executor to idle. It does not cancel a call already in
// flight; the generation bump makes any late result a no-op.
func (e *Executor[T]) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.state = State[T]{}
}

// Dispose tears the executor down. In-flight calls are cancelled and can no
// longer mutate state.
func (e *Executor[T]) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alive = false
	if e.cancel != nil {
		e.cancel()
	}
}

// State returns a snapshot of the current lifecycle state.
func (e *Executor[T]) State() State[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// commit applies a state transition. It refuses when the executor was
// disposed or a newer Execute took ownership, so stale results never become
// visible.
func (e *Executor[T]) commit(gen uint64, s State[T]) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive || gen != e.gen {
		staleResultsTotal.Inc()
		return false
	}
	e.state = s
	return true
}

// failureMessage derives the human-readable message for a failed attempt.
// Transport failures use the underlying error, error envelopes follow the
// detail > errors > title precedence, and unrecognized shapes surface as a
// distinct format failure.
func failureMessage[T any](resp *envelope.Response[T], err error) string {
	if err == nil {
		err = resp.Err()
	}
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "request failed"
}

// sleepContext waits for d unless the context is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
