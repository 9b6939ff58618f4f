package request

// State is the observable lifecycle state of a single call. At any
// observation point exactly one of IsLoading, IsSuccess, or IsError is true,
// or all are false before the first execution. Data is meaningful only while
// IsSuccess holds; Error only while IsError holds.
type State[T any] struct {
	Data      T
	Error     string
	IsLoading bool
	IsSuccess bool
	IsError   bool
}

func loadingState[T any]() State[T] {
	return State[T]{IsLoading: true}
}

func successState[T any](data T) State[T] {
	return State[T]{Data: data, IsSuccess: true}
}

func errorState[T any](msg string) State[T] {
	return State[T]{Error: msg, IsError: true}
}
