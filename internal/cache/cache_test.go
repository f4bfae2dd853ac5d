package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()

	if err := c.SetEX(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	val, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(val) != "v" {
		t.Fatalf("got %q, %v", val, ok)
	}
}

func TestMemCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()

	_ = c.SetEX(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestMemCacheDelPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()

	_ = c.SetEX(ctx, "bal:user:1", []byte("a"), time.Minute)
	_ = c.SetEX(ctx, "bal:user:2", []byte("b"), time.Minute)
	_ = c.SetEX(ctx, "bal:scope:7", []byte("c"), time.Minute)

	if err := c.DelPrefix(ctx, "bal:user:"); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := c.Get(ctx, "bal:user:1"); ok {
		t.Fatal("expected bal:user:1 deleted")
	}
	if _, ok, _ := c.Get(ctx, "bal:scope:7"); !ok {
		t.Fatal("expected bal:scope:7 untouched")
	}
}

func TestMemCacheGetOrComputeCachesResult(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()

	var calls int32
	producer := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("computed"), nil
	}

	val, err := c.GetOrCompute(ctx, "k", time.Minute, producer)
	if err != nil {
		t.Fatal(err)
	}
	if string(val) != "computed" {
		t.Fatalf("got %q", val)
	}

	val2, err := c.GetOrCompute(ctx, "k", time.Minute, producer)
	if err != nil {
		t.Fatal(err)
	}
	if string(val2) != "computed" {
		t.Fatalf("got %q", val2)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected producer called once, got %d", calls)
	}
}

func TestMemCacheGetOrComputeCollapsesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	producer := func(ctx context.Context) ([]byte, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		return []byte("v"), nil
	}

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, _ = c.GetOrCompute(ctx, "k", time.Minute, producer)
		}()
	}

	<-started
	close(release)
	wg.Wait()

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected single-flight to collapse to one producer call, got %d", calls)
	}
}

func TestMemCacheGetOrComputePropagatesError(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache()

	wantErr := errors.New("boom")
	_, err := c.GetOrCompute(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v", err)
	}
}

func TestNoopCacheAlwaysMissesAndComputes(t *testing.T) {
	ctx := context.Background()
	c := NewNoopCache()

	_ = c.SetEX(ctx, "k", []byte("v"), time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("noop cache should never hit")
	}

	val, err := c.GetOrCompute(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if string(val) != "fresh" {
		t.Fatalf("got %q", val)
	}
}
