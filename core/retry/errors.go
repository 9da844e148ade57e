package retry

import (
	"errors"
	"fmt"
)

// RetriableError marks a failure that may succeed when attempted again.
type RetriableError struct {
	Err error
}

func (e *RetriableError) Error() string {
	return e.Err.Error()
}

func (e *RetriableError) Unwrap() error {
	return e.Err
}

// Retriable wraps err so that IsRetriable reports true for it.
// A nil err stays nil.
func Retriable(err error) error {
	if err == nil {
		return nil
	}
	return &RetriableError{Err: err}
}

// ExhaustedError is returned by Do once every attempt failed with a retriable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// IsRetriable reports whether err carries the retriable marker.
// Errors that already exhausted a retry loop are never retriable again.
func IsRetriable(err error) bool {
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		return false
	}
	var retriable *RetriableError
	return errors.As(err, &retriable)
}
