// Package lockservice provides named exclusive locks with a TTL, backing
// the scope-level serialization LedgerService needs around every
// BalanceStore mutation.
package lockservice

import (
	"context"
	"errors"
	"time"
)

// ErrLockTimeout is returned when Acquire could not obtain the lock within
// waitTimeout.
var ErrLockTimeout = errors.New("lockservice: timed out waiting for lock")

// ErrMultiInstanceProcessLock is returned by NewProcessService when LOCK_BACKEND=process
// is requested with more than one replica configured; a process-local lock
// cannot serialize mutations across instances.
var ErrMultiInstanceProcessLock = errors.New("lockservice: process backend refuses to start with more than one replica")

// Lease represents a held lock. Token is an opaque fencing value unique to
// the acquisition, used so a caller can detect (in principle) whether its
// lease was stolen by a TTL expiry race.
type Lease struct {
	Name  string
	Token string
}

// Service is the lock contract every orchestration path (LedgerService,
// Recompute) acquires before mutating BalanceStore rows for a scope.
type Service interface {
	// Acquire blocks up to waitTimeout trying to obtain the named lock,
	// holding it for at most ttl before it auto-expires.
	Acquire(ctx context.Context, name string, ttl, waitTimeout time.Duration) (*Lease, error)
	// Release gives up the lease. Idempotent; a lease that already
	// expired is silently ignored.
	Release(ctx context.Context, lease *Lease) error
	// Extend pushes the lease's expiry out, for operations that run long.
	// ProcessService sets it to ttl from now; DistributedService renews it
	// for the expiry the lease was acquired with and does not use ttl.
	// Returns an error if the lease is gone.
	Extend(ctx context.Context, lease *Lease, ttl time.Duration) error
}
