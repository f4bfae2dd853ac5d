package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// AsynqRunner is the hibiken/asynq backed Runner. Enqueue's {maxAttempts,
// delay} map onto asynq.MaxRetry/asynq.ProcessIn; the server retries with
// the same backoffFor schedule as MemRunner and bounds concurrency.
type AsynqRunner struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewAsynqRunner builds a Runner against a Redis connection, bounding
// concurrent handler execution to concurrency (default 5 per §4.6).
func NewAsynqRunner(redisAddr string, concurrency int) *AsynqRunner {
	if concurrency <= 0 {
		concurrency = 5
	}
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}
	return &AsynqRunner{
		client: asynq.NewClient(redisOpt),
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: concurrency,
			// asynq passes n = retries so far (0 at the first failure);
			// n+1 matches MemRunner's backoffFor(attempt) schedule.
			RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
				return backoffFor(n + 1)
			},
			Queues: map[string]int{
				"critical": 3,
				"default":  2,
			},
		}),
		mux: asynq.NewServeMux(),
	}
}

func (r *AsynqRunner) RegisterHandler(jobType Type, handler Handler) {
	r.mux.HandleFunc(string(jobType), func(ctx context.Context, t *asynq.Task) error {
		return handler(ctx, t.Payload())
	})
}

func (r *AsynqRunner) Enqueue(ctx context.Context, jobType Type, payload []byte, opts Options) error {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	task := asynq.NewTask(string(jobType), payload)
	// asynq.MaxRetry counts retries after the first attempt.
	taskOpts := []asynq.Option{asynq.MaxRetry(maxAttempts - 1)}
	if opts.Delay > 0 {
		taskOpts = append(taskOpts, asynq.ProcessIn(opts.Delay))
	}

	if _, err := r.client.EnqueueContext(ctx, task, taskOpts...); err != nil {
		return fmt.Errorf("jobs: enqueue %s: %w", jobType, err)
	}
	return nil
}

func (r *AsynqRunner) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- r.server.Run(r.mux) }()

	select {
	case <-ctx.Done():
		r.server.Shutdown()
		return ctx.Err()
	case err := <-errc:
		return err
	}
}

func (r *AsynqRunner) Stop() {
	r.server.Shutdown()
	r.client.Close()
}
