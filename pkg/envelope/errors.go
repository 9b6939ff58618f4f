package envelope

import (
	"errors"
	"strings"
)

// Common errors returned by the unwrap helpers.
var (
	// ErrNoData is returned when a standard success envelope carries no data.
	ErrNoData = errors.New("no data in response")

	// ErrUnexpectedFormat is returned when a value matches none of the known
	// envelope variants.
	ErrUnexpectedFormat = errors.New("unknown response format")
)

// genericErrorMessage is the last-resort human message for error envelopes
// that carry no detail, error list, or title.
const genericErrorMessage = "an unknown error occurred"

// APIError is the error form of an error envelope. Its message follows the
// detail > errors > title precedence, so callers can surface Error() directly.
type APIError struct {
	Type       string
	Title      string
	Detail     string
	StatusCode int
	Errors     []ErrorDetail
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Errors) > 0 {
		msgs := make([]string, len(e.Errors))
		for i, d := range e.Errors {
			msgs[i] = d.Message
		}
		return strings.Join(msgs, ", ")
	}
	if e.Title != "" {
		return e.Title
	}
	return genericErrorMessage
}
