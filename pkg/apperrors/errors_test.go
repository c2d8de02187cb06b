package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestGuardRejection_Unwrap(t *testing.T) {
	err := &GuardRejection{Reason: "multiple statements"}

	if !errors.Is(err, ErrGuardRejected) {
		t.Error("expected GuardRejection to match ErrGuardRejected")
	}
	if errors.Is(err, ErrExecutionFailed) {
		t.Error("GuardRejection must not match ErrExecutionFailed")
	}

	var rejection *GuardRejection
	wrapped := fmt.Errorf("pipeline: %w", err)
	if !errors.As(wrapped, &rejection) {
		t.Fatal("expected errors.As to recover *GuardRejection through wrapping")
	}
	if rejection.Reason != "multiple statements" {
		t.Errorf("unexpected reason: %q", rejection.Reason)
	}
}

func TestExecutionFailure_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &ExecutionFailure{Cause: cause}

	if !errors.Is(err, ErrExecutionFailed) {
		t.Error("expected ExecutionFailure to match ErrExecutionFailed")
	}
	if errors.Is(err, ErrResourceExhausted) {
		t.Error("ExecutionFailure must not match ErrResourceExhausted")
	}
}
