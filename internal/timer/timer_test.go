package timer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRun_BlocksUntilExpiry(t *testing.T) {
	tm := New(30 * time.Millisecond)
	if tm.Expired() || tm.Running() {
		t.Fatalf("fresh timer should be idle")
	}
	if tm.Duration() != 30*time.Millisecond {
		t.Fatalf("Duration = %v", tm.Duration())
	}

	start := time.Now()
	if err := tm.Run(context.Background()); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("Run returned after %v, before the duration elapsed", elapsed)
	}
	if !tm.Expired() || tm.Running() {
		t.Fatalf("timer should be expired and idle after Run")
	}
	if tm.Remaining() != 0 {
		t.Fatalf("want 0 remaining, got %v", tm.Remaining())
	}
}

func TestRun_Cancelled(t *testing.T) {
	tm := New(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- tm.Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for !tm.Running() {
		if time.Now().After(deadline) {
			t.Fatalf("timer never started")
		}
		time.Sleep(time.Millisecond)
	}
	if tm.Remaining() <= 0 {
		t.Fatalf("running timer should have time remaining")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if tm.Expired() {
		t.Fatalf("cancelled timer must not report expiry")
	}
}

func TestRun_OnlyOnce(t *testing.T) {
	tm := New(time.Millisecond)
	_ = tm.Run(context.Background())

	start := time.Now()
	if err := tm.Run(context.Background()); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatalf("second Run should return immediately")
	}
}
