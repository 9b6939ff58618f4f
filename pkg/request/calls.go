package request

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/promptstudio/api-client/pkg/envelope"
)

// transportErrorType tags synthetic error envelopes built from transport
// failures that produced no envelope.
const transportErrorType = "transport_error"

// Chain executes calls strictly in order and aborts at the first failure. On
// an error envelope, onError (if supplied) receives the envelope and its
// index before the error is returned; no partial results are returned. A
// transport failure aborts the chain with the underlying error.
func Chain[T any](ctx context.Context, calls []Call[T], onError func(*envelope.Response[T], int)) ([]T, error) {
	results := make([]T, 0, len(calls))
	for i, call := range calls {
		resp, err := call(ctx)
		if err != nil {
			return nil, err
		}
		if respErr := resp.Err(); respErr != nil {
			if onError != nil && resp.IsError() {
				onError(resp, i)
			}
			return nil, respErr
		}
		var data T
		if resp.Data != nil {
			data = *resp.Data
		}
		results = append(results, data)
	}
	return results, nil
}

// RetryCall retries a call with exponential backoff: attempt n waits
// baseDelay * 2^n before attempt n+1. It never returns an error: the first
// success envelope wins, otherwise the last failure is returned, with
// transport failures and cancellation folded into synthetic error envelopes.
func RetryCall[T any](ctx context.Context, call Call[T], maxRetries int, baseDelay time.Duration) *envelope.Response[T] {
	var last *envelope.Response[T]
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := call(ctx)
		switch {
		case err != nil:
			last = envelope.NewError[T]("Request failed", err.Error(), transportErrorType)
		case resp.IsSuccess():
			return resp
		case resp == nil:
			last = envelope.NewError[T]("Request failed", "call produced no envelope", transportErrorType)
		default:
			last = resp
		}

		if attempt == maxRetries {
			break
		}
		retriesTotal.Inc()
		if err := sleepContext(ctx, baseDelay<<uint(attempt)); err != nil {
			return envelope.NewError[T]("Request cancelled", err.Error(), transportErrorType)
		}
	}
	return last
}

// BatchCalls runs the named calls concurrently and returns one envelope per
// name regardless of individual outcomes; the key set is always complete.
// Transport failures are folded into synthetic error envelopes.
func BatchCalls[T any](ctx context.Context, calls map[string]Call[T]) map[string]*envelope.Response[T] {
	var (
		mu      sync.Mutex
		results = make(map[string]*envelope.Response[T], len(calls))
	)
	var g errgroup.Group
	for name, call := range calls {
		g.Go(func() error {
			resp, err := call(ctx)
			if err != nil {
				resp = envelope.NewError[T]("Request failed", err.Error(), transportErrorType)
			} else if resp == nil {
				resp = envelope.NewError[T]("Request failed", "call produced no envelope", transportErrorType)
			}
			mu.Lock()
			results[name] = resp
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
