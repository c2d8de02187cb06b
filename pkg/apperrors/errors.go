// Package apperrors defines the error taxonomy shared across the pipeline.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrGuardRejected indicates a candidate query failed a validation rule
	// and was never executed.
	ErrGuardRejected = errors.New("query rejected by guard")

	// ErrExecutionFailed indicates a guard-approved statement failed at the
	// database backend. Terminal for the request; never retried.
	ErrExecutionFailed = errors.New("query execution failed")

	// ErrResourceExhausted indicates connection acquisition timed out.
	// Transient: callers may retry, unlike the terminal errors above.
	ErrResourceExhausted = errors.New("connection pool exhausted")

	// ErrUpstreamMalformed indicates the model's output could not be parsed
	// into a candidate query. Downgraded to a CHAT/CLARIFY reply upstream.
	ErrUpstreamMalformed = errors.New("malformed model output")
)

// GuardRejection carries the human-readable reason a candidate was rejected.
// The reason names the rule violated and is safe to show to users; it never
// echoes the raw statement.
type GuardRejection struct {
	Reason string
}

func (e *GuardRejection) Error() string {
	return fmt.Sprintf("query rejected by guard: %s", e.Reason)
}

func (e *GuardRejection) Unwrap() error { return ErrGuardRejected }

// ExecutionFailure wraps a backend error from a statement the guard accepted.
type ExecutionFailure struct {
	Cause error
}

func (e *ExecutionFailure) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Cause)
}

func (e *ExecutionFailure) Unwrap() error { return ErrExecutionFailed }
