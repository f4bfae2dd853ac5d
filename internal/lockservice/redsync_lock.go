package lockservice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

// DistributedService is the redsync/go-redis backed lock, the `distributed`
// LOCK_BACKEND. It's the only backend allowed when more than one replica of
// the service runs, since a process-local mutex cannot coordinate across
// instances.
type DistributedService struct {
	rs *redsync.Redsync

	mu      sync.Mutex
	held    map[string]*redsync.Mutex // lease token -> mutex, so Release/Extend can find it back
}

// NewDistributedService builds a DistributedService on top of an existing
// go-redis client.
func NewDistributedService(client *goredislib.Client) *DistributedService {
	pool := goredis.NewPool(client)
	return &DistributedService{
		rs:   redsync.New(pool),
		held: make(map[string]*redsync.Mutex),
	}
}

func (d *DistributedService) Acquire(ctx context.Context, name string, ttl, waitTimeout time.Duration) (*Lease, error) {
	mutex := d.rs.NewMutex(name, redsync.WithExpiry(ttl))

	waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()

	if err := mutex.LockContext(waitCtx); err != nil {
		return nil, ErrLockTimeout
	}

	token := mutex.Value()
	d.mu.Lock()
	d.held[token] = mutex
	d.mu.Unlock()

	return &Lease{Name: name, Token: token}, nil
}

func (d *DistributedService) Release(ctx context.Context, lease *Lease) error {
	d.mu.Lock()
	mutex, ok := d.held[lease.Token]
	if ok {
		delete(d.held, lease.Token)
	}
	d.mu.Unlock()
	if !ok {
		// Already released, or the lease's TTL expired and redsync's own
		// storage forgot it; Release is idempotent either way.
		return nil
	}
	if _, err := mutex.UnlockContext(ctx); err != nil {
		var errTaken *redsync.ErrTaken
		if errors.As(err, &errTaken) {
			return nil
		}
		return err
	}
	return nil
}

// Extend renews the lease for the expiry it was acquired with; the ttl
// argument is not used.
func (d *DistributedService) Extend(ctx context.Context, lease *Lease, ttl time.Duration) error {
	d.mu.Lock()
	mutex, ok := d.held[lease.Token]
	d.mu.Unlock()
	if !ok {
		return errors.New("lockservice: lease not held by this instance")
	}
	_, err := mutex.ExtendContext(ctx)
	return err
}
