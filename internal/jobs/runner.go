// Package jobs implements the background work queue LedgerService hands
// cache invalidation, event persistence, and notifications to. None of
// these are on the critical path of a balance mutation: JobRunner failures
// are logged, never surfaced to the caller.
package jobs

import (
	"context"
	"time"
)

// Type enumerates the job kinds the core enqueues.
type Type string

const (
	TypeInvalidateCache Type = "invalidate_cache"
	TypePersistEvent    Type = "persist_event"
	TypeNotify          Type = "notify"
)

// Options configures one enqueue call.
type Options struct {
	MaxAttempts int // default 3 if zero
	Delay       time.Duration
}

// Handler processes one payload for a job Type. Handlers MUST be
// idempotent: execution is at-least-once.
type Handler func(ctx context.Context, payload []byte) error

// Runner is the contract LedgerService, EventEmitter, and the notification
// projection enqueue through.
type Runner interface {
	// RegisterHandler wires a Handler for jobType. Must be called before
	// Start.
	RegisterHandler(jobType Type, handler Handler)
	// Enqueue schedules payload for jobType, applying opts.
	Enqueue(ctx context.Context, jobType Type, payload []byte, opts Options) error
	// Start begins processing enqueued jobs; blocks until ctx is
	// cancelled or Stop is called.
	Start(ctx context.Context) error
	// Stop gracefully shuts the runner down.
	Stop()
}

func backoffFor(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}
