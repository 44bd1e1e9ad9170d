package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, time.Minute)
	ctx := context.Background()

	fail := func() error { return errors.New("boom") }

	_ = cb.Call(ctx, fail)
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after one failure, got %v", cb.GetState())
	}

	_ = cb.Call(ctx, fail)
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open after two failures, got %v", cb.GetState())
	}

	if err := cb.Call(ctx, func() error { return nil }); err == nil {
		t.Fatalf("expected fast failure while open")
	}
}

func TestCircuitBreakerRecoversViaHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)
	ctx := context.Background()

	_ = cb.Call(ctx, func() error { return errors.New("boom") })
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open, got %v", cb.GetState())
	}

	time.Sleep(20 * time.Millisecond)

	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("expected probe call to pass: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %v", cb.GetState())
	}
}
