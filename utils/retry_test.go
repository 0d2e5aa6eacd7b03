package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewNopLogger()}

	calls := 0
	err := r.Do(context.Background(), "flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NewNopLogger()}

	sentinel := errors.New("down")
	calls := 0
	err := r.Do(context.Background(), "ping", func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if calls != 2 {
		t.Errorf("calls: got %d, want 2", calls)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond, Logger: NewNopLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Do(ctx, "cancelled", func() error {
		calls++
		return errors.New("fail")
	})
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}
	if calls > 1 {
		t.Errorf("calls: got %d, want at most 1", calls)
	}
}

func TestRetryLeavesConfigUnchanged(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 0, BaseDelay: time.Millisecond}

	calls := 0
	err := r.Do(context.Background(), "once", func() error {
		calls++
		return errors.New("down")
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
	if r.MaxAttempts != 0 {
		t.Errorf("MaxAttempts: got %d, want 0 (unchanged)", r.MaxAttempts)
	}
}
