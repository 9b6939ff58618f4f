package request

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptstudio/api-client/pkg/envelope"
)

func successCall[T any](data T) Call[T] {
	return func(ctx context.Context) (*envelope.Response[T], error) {
		return envelope.NewSuccess(data, ""), nil
	}
}

func errorCall[T any](title, detail string) Call[T] {
	return func(ctx context.Context) (*envelope.Response[T], error) {
		return envelope.NewError[T](title, detail, ""), nil
	}
}

func TestBatchAllSuccess(t *testing.T) {
	var gotStates map[string]State[int]

	b := NewBatch(map[string]Call[int]{
		"prompts":   successCall(12),
		"templates": successCall(4),
		"tags":      successCall(30),
	}, BatchOptions[int]{
		OnSuccess: func(states map[string]State[int]) { gotStates = states },
	})

	b.Execute(context.Background())

	assert.True(t, b.AllSuccess())
	assert.False(t, b.HasErrors())

	require.NotNil(t, gotStates)
	assert.Equal(t, 12, gotStates["prompts"].Data)
	assert.Equal(t, 4, gotStates["templates"].Data)
	assert.Equal(t, 30, gotStates["tags"].Data)
}

func TestBatchPartialFailureKeepsSiblings(t *testing.T) {
	var gotMsg string
	var successFired bool

	b := NewBatch(map[string]Call[int]{
		"prompts":   successCall(12),
		"templates": errorCall[int]("Internal Server Error", "templates backend down"),
	}, BatchOptions[int]{
		OnSuccess: func(map[string]State[int]) { successFired = true },
		OnError:   func(msg string) { gotMsg = msg },
	})

	b.Execute(context.Background())

	states := b.States()
	assert.True(t, states["prompts"].IsSuccess, "one key's failure must not affect siblings")
	assert.Equal(t, 12, states["prompts"].Data)
	assert.True(t, states["templates"].IsError)
	assert.Equal(t, "templates backend down", states["templates"].Error)

	assert.False(t, b.AllSuccess())
	assert.True(t, b.HasErrors())
	assert.False(t, successFired)
	assert.Equal(t, "templates: templates backend down", gotMsg)
}

func TestBatchAggregateErrorOrderedByKey(t *testing.T) {
	var gotMsg string

	b := NewBatch(map[string]Call[int]{
		"c": errorCall[int]("Error", "third"),
		"a": errorCall[int]("Error", "first"),
		"b": successCall(1),
	}, BatchOptions[int]{
		OnError: func(msg string) { gotMsg = msg },
	})

	b.Execute(context.Background())

	assert.Equal(t, "a: first, c: third", gotMsg)
}

func TestBatchTransportFailure(t *testing.T) {
	b := NewBatch(map[string]Call[int]{
		"prompts": func(ctx context.Context) (*envelope.Response[int], error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}, BatchOptions[int]{})

	b.Execute(context.Background())

	states := b.States()
	assert.True(t, states["prompts"].IsError)
	assert.Equal(t, "dial tcp: connection refused", states["prompts"].Error)
}

func TestBatchReset(t *testing.T) {
	b := NewBatch(map[string]Call[int]{
		"prompts": successCall(1),
	}, BatchOptions[int]{})

	b.Execute(context.Background())
	require.True(t, b.AllSuccess())

	b.Reset()
	states := b.States()
	assert.False(t, states["prompts"].IsSuccess)
	assert.False(t, states["prompts"].IsError)
	assert.False(t, states["prompts"].IsLoading)
}

func TestBatchDisposedIsNoOp(t *testing.T) {
	calls := 0
	b := NewBatch(map[string]Call[int]{
		"prompts": func(ctx context.Context) (*envelope.Response[int], error) {
			calls++
			return envelope.NewSuccess(1, ""), nil
		},
	}, BatchOptions[int]{})

	b.Dispose()
	b.Execute(context.Background())

	assert.Equal(t, 0, calls)
	assert.False(t, b.States()["prompts"].IsSuccess)
}
