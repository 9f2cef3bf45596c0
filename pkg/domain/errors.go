package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedParamPath is returned when a dotted init param name starts or ends with a dot.
var ErrMalformedParamPath = errors.New("malformed param path")

// ErrInvalidExecName is returned when an execName is not an absolute, non-empty path.
var ErrInvalidExecName = errors.New("invalid exec name")

// ErrTransport is the sentinel matched by every *TransportError.
var ErrTransport = errors.New("transport error")

// ErrNoAttachPoint is returned when a component has neither a placeholder nor a
// permanent anchor in its parent.
var ErrNoAttachPoint = errors.New("no attach point for component")

// ErrNoRoot is returned when a reconciliation pass finds no root component.
var ErrNoRoot = errors.New("no root component")

// ErrHistoryEmpty is returned by history stores when there is no entry to return.
var ErrHistoryEmpty = errors.New("history is empty")

// ErrMalformedResponse is returned when a response body does not decode into records.
var ErrMalformedResponse = errors.New("malformed response")

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// TransportError reports a network failure or a non-success response.
type TransportError struct {
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error (status %d): %v", e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("transport error (status %d)", e.StatusCode)
}

func (e *TransportError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Cause}
}

// MergeError reports the component whose merge aborted a reconciliation pass.
type MergeError struct {
	ExecName string
	Cause    error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge %s: %v", e.ExecName, e.Cause)
}

func (e *MergeError) Unwrap() error {
	return e.Cause
}
