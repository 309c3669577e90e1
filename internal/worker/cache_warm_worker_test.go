package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshCache(context.Context) (int, error) {
	r.calls.Add(1)
	return 3, r.err
}

func TestCacheWarmWorker_RunsUntilCanceled(t *testing.T) {
	r := &countingRefresher{}
	w := NewCacheWarmWorker(r, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for r.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 refreshes, got %d", r.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestCacheWarmWorker_KeepsRunningOnError(t *testing.T) {
	r := &countingRefresher{err: errors.New("db down")}
	w := NewCacheWarmWorker(r, time.Hour)

	w.run(context.Background())
	w.run(context.Background())
	if got := r.calls.Load(); got != 2 {
		t.Fatalf("expected 2 refresh attempts, got %d", got)
	}
}
