package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors, checkable with errors.Is().
var (
	// ErrMissingAgentID indicates no agent identifier was configured.
	ErrMissingAgentID = errors.New("transport: missing agent ID")

	// ErrInvalidCredential indicates the credential is missing or rejected.
	ErrInvalidCredential = errors.New("transport: invalid or missing credential")
)

// ConnError wraps a connection-level failure during stream establishment
// (dial failures, timeouts). These are the transient failures the retry
// policy acts on.
type ConnError struct {
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("stream connection failed: %v", e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// StatusError represents a non-200 response during stream establishment.
type StatusError struct {
	StatusCode int    // HTTP status code
	Message    string // Error message from the server
	Retryable  bool   // Whether establishment may be retried
	Err        error  // Wrapped sentinel error, if any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("agent server error (status %d): %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned after the retry budget is spent without a
// stream ever being established.
type ExhaustedError struct {
	Attempts int   // Total attempts made
	Err      error // The last establishment error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("stream establishment failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether an establishment error is transient.
// Context cancellation is never retryable: the caller asked to stop.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var connErr *ConnError
	return errors.As(err, &connErr)
}
