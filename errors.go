package lettastream

import (
	"errors"
	"fmt"

	"github.com/haowjy/letta-stream-go/transport"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrMissingBaseURL indicates no server base URL was configured.
	ErrMissingBaseURL = errors.New("lettastream: missing base URL")

	// ErrMissingAgentID indicates no agent identifier was configured.
	ErrMissingAgentID = errors.New("lettastream: missing agent ID")

	// ErrMissingCredential indicates no credential was configured.
	ErrMissingCredential = errors.New("lettastream: missing credential")

	// ErrMissingLogPath indicates diagnostics are enabled without a log path.
	ErrMissingLogPath = errors.New("lettastream: diagnostics enabled without a log path")

	// ErrNoMessages indicates a run was invoked with an empty conversation.
	ErrNoMessages = errors.New("lettastream: no messages provided")
)

// RunError is the single caller-visible wrapper for a terminal run failure.
// It carries a short human-readable message and the originating cause.
type RunError struct {
	Message string // Human-readable description
	Err     error  // The originating cause
}

func (e *RunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("letta run failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("letta run failed: %s", e.Message)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// errorTypeName names an error's concrete type for diagnostic records.
func errorTypeName(err error) string {
	return fmt.Sprintf("%T", err)
}

// IsExhausted checks whether a run failed because stream establishment
// retries were exhausted before a stream was ever opened.
func IsExhausted(err error) bool {
	var exhausted *transport.ExhaustedError
	return errors.As(err, &exhausted)
}

// IsCredentialError checks whether a run failed because the server
// rejected the configured credential.
func IsCredentialError(err error) bool {
	return errors.Is(err, transport.ErrInvalidCredential) || errors.Is(err, ErrMissingCredential)
}
