package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoWithResult_SucceedsAfterRetries(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(context.Background(), fastConfig(), nil, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || attempts != 3 {
		t.Errorf("got %q after %d attempts", got, attempts)
	}
}

func TestDoWithResult_StopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	attempts := 0
	_, err := DoWithResult(context.Background(), fastConfig(),
		func(err error) bool { return !errors.Is(err, permanent) },
		func() (int, error) {
			attempts++
			return 0, permanent
		})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoWithResult_ExhaustsRetries(t *testing.T) {
	attempts := 0
	_, err := DoWithResult(context.Background(), fastConfig(), nil, func() (int, error) {
		attempts++
		return 0, errors.New("always fails")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 4 { // initial attempt + 3 retries
		t.Errorf("expected 4 attempts, got %d", attempts)
	}
}

func TestDoWithResult_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DoWithResult(ctx, &Config{MaxRetries: 5, InitialDelay: time.Hour}, nil,
		func() (int, error) { return 0, errors.New("transient") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
