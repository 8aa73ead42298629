package api

import (
	"errors"
	"fmt"
)

// Precondition errors returned before any request is sent.
var (
	ErrEmptyURL        = errors.New("url is empty")
	ErrEmptyTranscript = errors.New("transcript is empty")
	ErrEmptyQuestion   = errors.New("question is empty")
)

// BackendError is an application error: the backend answered but reported
// a failure in the response's error field.
type BackendError struct {
	Op      string
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// TransportError means the request did not complete: the backend was
// unreachable, timed out, or answered with something that is not a usable
// response.
type TransportError struct {
	Op     string
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsBackendError reports whether err carries a backend-reported error.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// IsTransportError reports whether err is a transport failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
