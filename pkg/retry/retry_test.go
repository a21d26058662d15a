package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var (
	errTemporary = errors.New("temporary")
	errPermanent = errors.New("permanent")
)

func isTemporary(err error) bool {
	return errors.Is(err, errTemporary)
}

func TestWithBackoff_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	result, err := WithBackoff(context.Background(), 3, time.Millisecond, isTemporary, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errTemporary
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != "ok" {
		t.Fatalf("expected 'ok', got %q", result)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestWithBackoff_NonRetriableStopsImmediately(t *testing.T) {
	calls := 0
	_, err := WithBackoff(context.Background(), 5, time.Millisecond, isTemporary, func() (int, error) {
		calls++
		return 0, errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, isTemporary, func() error {
		calls++
		return errTemporary
	})
	if !errors.Is(err, errTemporary) {
		t.Fatalf("expected wrapped temporary error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, 5, time.Millisecond, isTemporary, func() error {
		return errTemporary
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancelled error, got %v", err)
	}
}

func TestWithBackoff_InvalidRetries(t *testing.T) {
	err := Do(context.Background(), 0, time.Millisecond, isTemporary, func() error { return nil })
	if err == nil {
		t.Fatal("expected error for zero retries")
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Second, isTemporary)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errTemporary })
	}

	if cb.State() != StateOpen {
		t.Fatalf("expected StateOpen after %d failures, got %v", 3, cb.State())
	}

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Fatal("function must not run while the circuit is open")
	}
}

func TestCircuitBreaker_ResetsAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(2, 50*time.Millisecond, isTemporary)

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errTemporary })
	}
	if cb.State() != StateOpen {
		t.Fatal("expected StateOpen")
	}

	time.Sleep(60 * time.Millisecond)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected no error after timeout, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("expected StateClosed after successful call, got %v", cb.State())
	}
}

func TestCircuitBreaker_IgnoredErrorsDoNotCount(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Second, isTemporary)

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return errPermanent })
	}

	if cb.State() != StateClosed {
		t.Fatalf("expected StateClosed for ignored errors, got %v", cb.State())
	}
}
