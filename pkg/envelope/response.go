// Package envelope defines the tagged response envelope returned by every
// PromptStudio API call and the guards that narrow a value to one variant.
package envelope

import (
	"time"

	"github.com/google/uuid"
)

// Status is the discriminant field of the envelope union.
type Status string

const (
	// StatusSuccess marks standard and paginated success envelopes.
	StatusSuccess Status = "success"

	// StatusError marks error envelopes.
	StatusError Status = "error"
)

// DefaultErrorType is stamped on constructed error envelopes that carry no
// explicit type.
const DefaultErrorType = "api_error"

// Meta carries envelope metadata stamped by the backend, or by the
// constructors for synthetic envelopes.
type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorDetail describes one violated constraint. Slice order is the insertion
// order at the origin and is preserved end-to-end.
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Pagination describes the page window of a paginated envelope.
// Page is 1-based.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Response is the envelope union. A single struct holds all variant fields;
// Status selects the variant and the guards below narrow it. Exactly one
// variant applies to a well-formed envelope; a value satisfying none of the
// guards is an unexpected-format condition, never silently coerced.
type Response[T any] struct {
	Status Status `json:"status"`

	// Valid only for success envelopes. Data is absent for void results.
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`

	// Valid only for error envelopes. Title is required on the wire.
	Type       string        `json:"type,omitempty"`
	Title      string        `json:"title,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Errors     []ErrorDetail `json:"errors,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`

	// Present only for paginated envelopes.
	Pagination *Pagination `json:"pagination,omitempty"`

	Meta Meta `json:"meta"`
}

// IsStandard reports whether the envelope is a single-resource (or void)
// success response.
func (r *Response[T]) IsStandard() bool {
	return r != nil && r.Status == StatusSuccess && r.Pagination == nil
}

// IsPaginated reports whether the envelope is a paginated success response.
func (r *Response[T]) IsPaginated() bool {
	return r != nil && r.Status == StatusSuccess && r.Pagination != nil
}

// IsError reports whether the envelope is an error response. An error without
// a title is malformed and fails all guards.
func (r *Response[T]) IsError() bool {
	return r != nil && r.Status == StatusError && r.Title != ""
}

// IsSuccess reports whether the envelope is either success variant.
func (r *Response[T]) IsSuccess() bool {
	return r.IsStandard() || r.IsPaginated()
}

// IsWellFormed reports whether the envelope matches any known variant.
func (r *Response[T]) IsWellFormed() bool {
	return r.IsSuccess() || r.IsError()
}

// NewSuccess builds a standard success envelope with a freshly stamped meta
// block. Pass an empty message to omit it.
func NewSuccess[T any](data T, message string) *Response[T] {
	return &Response[T]{
		Status:  StatusSuccess,
		Data:    &data,
		Message: message,
		Meta:    stampMeta(),
	}
}

// NewError builds an error envelope. Detail and errType may be empty; an
// empty errType falls back to DefaultErrorType.
func NewError[T any](title, detail, errType string) *Response[T] {
	if errType == "" {
		errType = DefaultErrorType
	}
	return &Response[T]{
		Status: StatusError,
		Type:   errType,
		Title:  title,
		Detail: detail,
		Meta:   stampMeta(),
	}
}

// NewPaginated builds a paginated success envelope.
func NewPaginated[T any](data []T, p Pagination) *Response[[]T] {
	return &Response[[]T]{
		Status:     StatusSuccess,
		Data:       &data,
		Pagination: &p,
		Meta:       stampMeta(),
	}
}

func stampMeta() Meta {
	return Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: uuid.NewString(),
	}
}

// Map applies fn to the payload of a success envelope and returns a new
// envelope of the mapped type. Error envelopes pass through unchanged apart
// from the payload type.
func Map[T, U any](r *Response[T], fn func(T) U) *Response[U] {
	out := &Response[U]{
		Status:     r.Status,
		Message:    r.Message,
		Type:       r.Type,
		Title:      r.Title,
		Detail:     r.Detail,
		Errors:     r.Errors,
		StatusCode: r.StatusCode,
		Pagination: r.Pagination,
		Meta:       r.Meta,
	}
	if r.IsSuccess() && r.Data != nil {
		mapped := fn(*r.Data)
		out.Data = &mapped
	}
	return out
}

// MapEach applies fn element-wise to the items of a paginated (or standard
// slice-valued) envelope.
func MapEach[E, F any](r *Response[[]E], fn func(E) F) *Response[[]F] {
	return Map(r, func(items []E) []F {
		mapped := make([]F, len(items))
		for i, item := range items {
			mapped[i] = fn(item)
		}
		return mapped
	})
}
