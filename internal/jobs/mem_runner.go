package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type job struct {
	jobType     Type
	payload     []byte
	attempt     int
	maxAttempts int
	runAt       time.Time
}

// MemRunner is a process-local Runner used for tests and for running
// without Redis. It honors the same retry/backoff/concurrency contract as
// AsynqRunner, in-process: failed handlers retry with 2^attempt second
// backoff up to maxAttempts, and at most `concurrency` jobs run at once.
type MemRunner struct {
	concurrency int

	mu       sync.Mutex
	handlers map[Type]Handler
	queue    []*job

	sem     chan struct{}
	wake    chan struct{}
	stopped chan struct{}

	mFailed   sync.Mutex
	failedLog []job // jobs that exhausted maxAttempts, for inspection in tests
}

// NewMemRunner returns a Runner bounded to concurrency simultaneous
// handler executions (default 5).
func NewMemRunner(concurrency int) *MemRunner {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &MemRunner{
		concurrency: concurrency,
		handlers:    make(map[Type]Handler),
		sem:         make(chan struct{}, concurrency),
		wake:        make(chan struct{}, 1),
		stopped:     make(chan struct{}),
	}
}

func (r *MemRunner) RegisterHandler(jobType Type, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = handler
}

func (r *MemRunner) Enqueue(ctx context.Context, jobType Type, payload []byte, opts Options) error {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	r.mu.Lock()
	r.queue = append(r.queue, &job{
		jobType:     jobType,
		payload:     payload,
		maxAttempts: maxAttempts,
		runAt:       time.Now().Add(opts.Delay),
	})
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return nil
}

// Start runs the dispatch loop until ctx is cancelled or Stop is called.
func (r *MemRunner) Start(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stopped:
			return nil
		case <-r.wake:
			r.dispatchReady(ctx)
		case <-ticker.C:
			r.dispatchReady(ctx)
		}
	}
}

func (r *MemRunner) dispatchReady(ctx context.Context) {
	now := time.Now()
	r.mu.Lock()
	var ready []*job
	var rest []*job
	for _, j := range r.queue {
		if !j.runAt.After(now) {
			ready = append(ready, j)
		} else {
			rest = append(rest, j)
		}
	}
	r.queue = rest
	r.mu.Unlock()

	for _, j := range ready {
		j := j
		r.sem <- struct{}{}
		go func() {
			defer func() { <-r.sem }()
			r.run(ctx, j)
		}()
	}
}

func (r *MemRunner) run(ctx context.Context, j *job) {
	r.mu.Lock()
	handler, ok := r.handlers[j.jobType]
	r.mu.Unlock()
	if !ok {
		return
	}

	j.attempt++
	if err := handler(ctx, j.payload); err != nil {
		if j.attempt >= j.maxAttempts {
			r.mFailed.Lock()
			r.failedLog = append(r.failedLog, *j)
			r.mFailed.Unlock()
			return
		}
		j.runAt = time.Now().Add(backoffFor(j.attempt))
		r.mu.Lock()
		r.queue = append(r.queue, j)
		r.mu.Unlock()
	}
}

// FailedJobs returns a snapshot of jobs that exhausted their retries, for
// test assertions.
func (r *MemRunner) FailedJobs() []string {
	r.mFailed.Lock()
	defer r.mFailed.Unlock()
	out := make([]string, len(r.failedLog))
	for i, j := range r.failedLog {
		out[i] = fmt.Sprintf("%s(attempts=%d)", j.jobType, j.attempt)
	}
	return out
}

func (r *MemRunner) Stop() {
	close(r.stopped)
}
