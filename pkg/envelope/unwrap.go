package envelope

// Err returns nil for success envelopes, the *APIError for error envelopes,
// and ErrUnexpectedFormat for values matching no known variant.
func (r *Response[T]) Err() error {
	switch {
	case r.IsSuccess():
		return nil
	case r.IsError():
		return &APIError{
			Type:       r.Type,
			Title:      r.Title,
			Detail:     r.Detail,
			StatusCode: r.StatusCode,
			Errors:     r.Errors,
		}
	default:
		return ErrUnexpectedFormat
	}
}

// Unwrap returns the payload of a success envelope. It returns the *APIError
// for error envelopes, ErrNoData when a success envelope carries no data, and
// ErrUnexpectedFormat for unrecognized shapes.
func (r *Response[T]) Unwrap() (T, error) {
	var zero T
	if err := r.Err(); err != nil {
		return zero, err
	}
	if r.Data == nil {
		return zero, ErrNoData
	}
	return *r.Data, nil
}

// UnwrapOr returns the payload of a success envelope, or fallback on any
// failure. It never returns an error.
func (r *Response[T]) UnwrapOr(fallback T) T {
	data, err := r.Unwrap()
	if err != nil {
		return fallback
	}
	return data
}

// ErrorMessage derives the human-readable message of an error envelope with
// detail > joined error messages > title precedence. Non-error envelopes
// yield the empty string.
func (r *Response[T]) ErrorMessage() string {
	if !r.IsError() {
		return ""
	}
	apiErr := &APIError{
		Title:  r.Title,
		Detail: r.Detail,
		Errors: r.Errors,
	}
	return apiErr.Error()
}

// ErrorDetails returns the per-constraint error list of an error envelope, or
// nil for non-error envelopes.
func (r *Response[T]) ErrorDetails() []ErrorDetail {
	if !r.IsError() {
		return nil
	}
	return r.Errors
}

// PaginationInfo returns the pagination block of a paginated envelope, or nil
// for any other variant.
func (r *Response[T]) PaginationInfo() *Pagination {
	if !r.IsPaginated() {
		return nil
	}
	return r.Pagination
}
