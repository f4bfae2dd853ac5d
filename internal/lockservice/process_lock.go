package lockservice

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProcessService is the in-memory `process` LOCK_BACKEND: a registry of
// named mutexes local to this instance. Correct only when exactly one
// replica of the service is running; NewProcessService refuses to build one
// otherwise.
type ProcessService struct {
	mu    sync.Mutex
	locks map[string]*processLock
}

type processLock struct {
	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewProcessService builds a process-local LockService. replicaCount must
// be 1; callers should route this error to startup failure, per §4.4's
// "MUST refuse to start in multi-instance mode" rule.
func NewProcessService(replicaCount int) (*ProcessService, error) {
	if replicaCount != 1 {
		return nil, ErrMultiInstanceProcessLock
	}
	return &ProcessService{locks: make(map[string]*processLock)}, nil
}

func (p *ProcessService) lockFor(name string) *processLock {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[name]
	if !ok {
		l = &processLock{}
		p.locks[name] = l
	}
	return l
}

func (p *ProcessService) Acquire(ctx context.Context, name string, ttl, waitTimeout time.Duration) (*Lease, error) {
	l := p.lockFor(name)

	deadline := time.Now().Add(waitTimeout)
	backoff := time.Millisecond
	for {
		l.mu.Lock()
		expired := !l.expires.IsZero() && time.Now().After(l.expires)
		if l.token == "" || expired {
			token := uuid.NewString()
			l.token = token
			l.expires = time.Now().Add(ttl)
			l.mu.Unlock()
			return &Lease{Name: name, Token: token}, nil
		}
		l.mu.Unlock()

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = jitteredBackoff(backoff)
	}
}

// jitteredBackoff doubles the previous wait, capped at 50ms, then adds a
// random jitter of up to a fifth of that to avoid synchronized retries
// under contention.
func jitteredBackoff(prev time.Duration) time.Duration {
	next := prev * 2
	if next > 50*time.Millisecond {
		next = 50 * time.Millisecond
	}
	return next + time.Duration(rand.Int63n(int64(next/5)+1))
}

func (p *ProcessService) Release(ctx context.Context, lease *Lease) error {
	p.mu.Lock()
	l, ok := p.locks[lease.Name]
	p.mu.Unlock()
	if !ok {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.token == lease.Token {
		l.token = ""
		l.expires = time.Time{}
	}
	return nil
}

func (p *ProcessService) Extend(ctx context.Context, lease *Lease, ttl time.Duration) error {
	p.mu.Lock()
	l, ok := p.locks[lease.Name]
	p.mu.Unlock()
	if !ok {
		return ErrLockTimeout
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.token != lease.Token {
		return ErrLockTimeout
	}
	l.expires = time.Now().Add(ttl)
	return nil
}
