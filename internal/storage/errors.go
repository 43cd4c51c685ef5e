package storage

import (
	"errors"
	"fmt"
)

// Storage errors for order sources.
var (
	// ErrFetchFailure is returned when the order snapshot cannot be obtained
	// or its body cannot be read as a JSON array of records.
	ErrFetchFailure = errors.New("fetch failure")

	// ErrInvalidInput is returned when no source can be built from the
	// configuration, such as an unknown source kind.
	ErrInvalidInput = errors.New("invalid input")
)

// FetchError describes a failed snapshot fetch. It wraps ErrFetchFailure so
// callers can match it with errors.Is.
type FetchError struct {
	// Source is the name of the source that failed.
	Source string
	// StatusCode is the HTTP status, or 0 when not applicable.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := "fetch orders from " + e.Source
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailure}
	}
	return []error{ErrFetchFailure, e.Err}
}

// NewFetchError wraps err as a FetchError for source.
func NewFetchError(source string, statusCode int, err error) *FetchError {
	return &FetchError{Source: source, StatusCode: statusCode, Err: err}
}
