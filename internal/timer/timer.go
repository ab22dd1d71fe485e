package timer

import (
	"context"
	"sync"
	"time"
)

// SessionTimer is a one-shot countdown that gates a round's input window.
type SessionTimer struct {
	mu       sync.Mutex
	duration time.Duration
	started  time.Time
	running  bool
	expired  bool
}

func New(d time.Duration) *SessionTimer {
	return &SessionTimer{duration: d}
}

func (t *SessionTimer) Duration() time.Duration { return t.duration }

// Run blocks until the countdown expires or ctx is done. A timer can only be
// run once; later calls return immediately.
func (t *SessionTimer) Run(ctx context.Context) error {
	t.mu.Lock()
	if t.running || t.expired {
		t.mu.Unlock()
		return nil
	}
	t.running = true
	t.started = time.Now()
	t.mu.Unlock()

	tm := time.NewTimer(t.duration)
	defer tm.Stop()

	select {
	case <-tm.C:
		t.mu.Lock()
		t.running = false
		t.expired = true
		t.mu.Unlock()
		return nil
	case <-ctx.Done():
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		return ctx.Err()
	}
}

func (t *SessionTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *SessionTimer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

func (t *SessionTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.expired:
		return 0
	case !t.running:
		return t.duration
	}
	left := t.duration - time.Since(t.started)
	if left < 0 {
		return 0
	}
	return left
}
