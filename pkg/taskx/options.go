package taskx

import "time"

// WorkerOptions configures the worker pool.
type WorkerOptions struct {
	Queues          []string
	Concurrency     int
	PollInterval    time.Duration
	DequeueTimeout  time.Duration
	RetryDelay      time.Duration
	ShutdownTimeout time.Duration
}

func defaultWorkerOptions() WorkerOptions {
	return WorkerOptions{
		Queues:          []string{"default"},
		Concurrency:     4,
		PollInterval:    time.Second,
		DequeueTimeout:  5 * time.Second,
		RetryDelay:      30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// WorkerOption mutates WorkerOptions during NewClient.
type WorkerOption func(*WorkerOptions)

func WithQueues(queues ...string) WorkerOption {
	return func(o *WorkerOptions) {
		if len(queues) > 0 {
			o.Queues = queues
		}
	}
}

func WithConcurrency(n int) WorkerOption {
	return func(o *WorkerOptions) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

func WithPollInterval(d time.Duration) WorkerOption {
	return func(o *WorkerOptions) { o.PollInterval = d }
}

func WithDequeueTimeout(d time.Duration) WorkerOption {
	return func(o *WorkerOptions) { o.DequeueTimeout = d }
}

func WithRetryDelay(d time.Duration) WorkerOption {
	return func(o *WorkerOptions) { o.RetryDelay = d }
}

func WithShutdownTimeout(d time.Duration) WorkerOption {
	return func(o *WorkerOptions) { o.ShutdownTimeout = d }
}
