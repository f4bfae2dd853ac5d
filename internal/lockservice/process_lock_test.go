package lockservice

import (
	"context"
	"testing"
	"time"
)

func TestNewProcessServiceRejectsMultiInstance(t *testing.T) {
	if _, err := NewProcessService(2); err != ErrMultiInstanceProcessLock {
		t.Fatalf("got %v", err)
	}
	if _, err := NewProcessService(0); err != ErrMultiInstanceProcessLock {
		t.Fatalf("got %v", err)
	}
}

func TestProcessServiceAcquireRelease(t *testing.T) {
	svc, err := NewProcessService(1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	lease, err := svc.Acquire(ctx, "scope:1", time.Second, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if lease.Token == "" {
		t.Fatal("expected a non-empty fencing token")
	}

	if err := svc.Release(ctx, lease); err != nil {
		t.Fatal(err)
	}

	// Should be acquirable again immediately after release.
	if _, err := svc.Acquire(ctx, "scope:1", time.Second, time.Second); err != nil {
		t.Fatal(err)
	}
}

func TestProcessServiceBlocksSecondAcquire(t *testing.T) {
	svc, err := NewProcessService(1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := svc.Acquire(ctx, "scope:1", time.Minute, time.Second); err != nil {
		t.Fatal(err)
	}

	_, err = svc.Acquire(ctx, "scope:1", time.Minute, 30*time.Millisecond)
	if err != ErrLockTimeout {
		t.Fatalf("expected timeout waiting for a held lock, got %v", err)
	}
}

func TestProcessServiceExpiresAfterTTL(t *testing.T) {
	svc, err := NewProcessService(1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := svc.Acquire(ctx, "scope:1", 10*time.Millisecond, time.Second); err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := svc.Acquire(ctx, "scope:1", time.Second, time.Second); err != nil {
		t.Fatalf("expected the expired lease to be reclaimable, got %v", err)
	}
}

func TestProcessServiceReleaseIsIdempotent(t *testing.T) {
	svc, err := NewProcessService(1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	lease, err := svc.Acquire(ctx, "scope:1", time.Second, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Release(ctx, lease); err != nil {
		t.Fatal(err)
	}
	if err := svc.Release(ctx, lease); err != nil {
		t.Fatalf("second release should be a no-op, got %v", err)
	}
}

func TestProcessServiceDistinctNamesDoNotContend(t *testing.T) {
	svc, err := NewProcessService(1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := svc.Acquire(ctx, "scope:1", time.Minute, time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Acquire(ctx, "direct:1", time.Minute, time.Second); err != nil {
		t.Fatalf("distinct lock name should not contend, got %v", err)
	}
}
