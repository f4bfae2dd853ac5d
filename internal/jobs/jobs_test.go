package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemRunnerExecutesHandler(t *testing.T) {
	r := NewMemRunner(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan []byte, 1)
	r.RegisterHandler(TypeNotify, func(ctx context.Context, payload []byte) error {
		done <- payload
		return nil
	})

	go r.Start(ctx)

	if err := r.Enqueue(ctx, TypeNotify, []byte("hello"), Options{}); err != nil {
		t.Fatal(err)
	}

	select {
	case payload := <-done:
		if string(payload) != "hello" {
			t.Fatalf("got %q", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestMemRunnerRetriesOnFailure(t *testing.T) {
	r := NewMemRunner(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts int32
	succeeded := make(chan struct{})
	r.RegisterHandler(TypePersistEvent, func(ctx context.Context, payload []byte) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return errors.New("transient")
		}
		close(succeeded)
		return nil
	})

	go r.Start(ctx)

	if err := r.Enqueue(ctx, TypePersistEvent, []byte("x"), Options{MaxAttempts: 5}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-succeeded:
		if atomic.LoadInt32(&attempts) != 3 {
			t.Fatalf("expected exactly 3 attempts, got %d", attempts)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("never succeeded after retries")
	}
}

func TestMemRunnerGivesUpAfterMaxAttempts(t *testing.T) {
	r := NewMemRunner(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts int32
	r.RegisterHandler(TypeInvalidateCache, func(ctx context.Context, payload []byte) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("permanent")
	})

	go r.Start(ctx)

	if err := r.Enqueue(ctx, TypeInvalidateCache, []byte("x"), Options{MaxAttempts: 2}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.FailedJobs()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if atomic.LoadInt32(&attempts) != 2 {
		t.Fatalf("expected exactly maxAttempts=2 attempts, got %d", attempts)
	}
	if len(r.FailedJobs()) != 1 {
		t.Fatalf("expected one job recorded as failed, got %v", r.FailedJobs())
	}
}

func TestMemRunnerDefaultMaxAttempts(t *testing.T) {
	r := NewMemRunner(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts int32
	r.RegisterHandler(TypeNotify, func(ctx context.Context, payload []byte) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("always fails")
	})
	go r.Start(ctx)

	_ = r.Enqueue(ctx, TypeNotify, []byte("x"), Options{})

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.FailedJobs()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Fatalf("expected default maxAttempts=3, got %d", attempts)
	}
}

func TestBackoffForGrowsExponentially(t *testing.T) {
	if backoffFor(1) != 2*time.Second {
		t.Fatalf("got %v", backoffFor(1))
	}
	if backoffFor(3) != 8*time.Second {
		t.Fatalf("got %v", backoffFor(3))
	}
}
