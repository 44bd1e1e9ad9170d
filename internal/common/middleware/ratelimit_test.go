package middleware

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketExhausts(t *testing.T) {
	tb := NewTokenBucket(2, 1)
	ctx := context.Background()

	if !tb.Allow(ctx) || !tb.Allow(ctx) {
		t.Fatalf("expected first two requests allowed")
	}
	if tb.Allow(ctx) {
		t.Fatalf("expected third request rejected")
	}
}

func TestSlidingWindowLimits(t *testing.T) {
	sw := NewSlidingWindow(50*time.Millisecond, 2)
	ctx := context.Background()

	if !sw.Allow(ctx) || !sw.Allow(ctx) {
		t.Fatalf("expected first two requests allowed")
	}
	if sw.Allow(ctx) {
		t.Fatalf("expected third request rejected inside window")
	}

	time.Sleep(60 * time.Millisecond)
	if !sw.Allow(ctx) {
		t.Fatalf("expected request allowed after window passed")
	}
}
