// Package taskx is the background task queue. The API layer enqueues
// tasks (notification emails, cleanup work); a worker pool started by the
// serve command processes them through registered handlers.
package taskx

import (
	"context"
	"sync"
	"time"

	"github.com/openhire/openhire/pkg/logx"
)

// HandlerFunc processes one task. A nil return completes the task; an
// error triggers retry until MaxRetries is exhausted.
type HandlerFunc func(ctx context.Context, task *TaskInfo) error

// Enqueuer enqueues tasks.
type Enqueuer interface {
	Enqueue(ctx context.Context, task Task) (string, error)
	EnqueueDelayed(ctx context.Context, task Task, delay time.Duration) (string, error)
}

// StatusReader reads task state.
type StatusReader interface {
	GetTask(ctx context.Context, taskID string) (*TaskInfo, error)
}

// Processor is the backend contract used by the worker loop.
type Processor interface {
	Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*TaskInfo, error)
	Complete(ctx context.Context, taskID string) error
	Fail(ctx context.Context, taskID string, errMsg string) (retry bool, err error)
	Retry(ctx context.Context, taskID string, delay time.Duration) error
	PromoteScheduled(ctx context.Context, queues []string) error
}

// Queue combines all backend operations.
type Queue interface {
	Enqueuer
	StatusReader
	Processor
}

// Client enqueues tasks and runs the worker pool.
type Client struct {
	queue    Queue
	opts     WorkerOptions
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	running  bool
}

// NewClient creates a task client over the given queue backend.
func NewClient(queue Queue, options ...WorkerOption) *Client {
	opts := defaultWorkerOptions()
	for _, o := range options {
		o(&opts)
	}
	return &Client{
		queue:    queue,
		opts:     opts,
		handlers: make(map[string]HandlerFunc),
	}
}

// Register adds a handler for a task type. Must be called before Start.
func (c *Client) Register(taskType string, handler HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[taskType] = handler
}

// Enqueue submits a task for immediate processing.
func (c *Client) Enqueue(ctx context.Context, task Task) (string, error) {
	applyTaskDefaults(&task)
	return c.queue.Enqueue(ctx, task)
}

// EnqueueDelayed submits a task that becomes ready after delay.
func (c *Client) EnqueueDelayed(ctx context.Context, task Task, delay time.Duration) (string, error) {
	applyTaskDefaults(&task)
	return c.queue.EnqueueDelayed(ctx, task, delay)
}

// GetTask returns the stored state of a task.
func (c *Client) GetTask(ctx context.Context, taskID string) (*TaskInfo, error) {
	return c.queue.GetTask(ctx, taskID)
}

func applyTaskDefaults(t *Task) {
	if t.Queue == "" {
		t.Queue = "default"
	}
	if t.MaxRetries == 0 {
		t.MaxRetries = 3
	}
}

// Start runs the scheduler and worker goroutines until ctx is cancelled,
// then drains within the shutdown timeout.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return taskxErrors.New(ErrAlreadyRunning)
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	logx.Infof("taskx: starting %d workers on queues %v", c.opts.Concurrency, c.opts.Queues)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.schedulerLoop(ctx)
	}()

	for i := 0; i < c.opts.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.workerLoop(ctx, id)
		}(i)
	}

	<-ctx.Done()
	logx.Info("taskx: shutting down workers")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logx.Info("taskx: all workers stopped")
	case <-time.After(c.opts.ShutdownTimeout):
		logx.Warn("taskx: shutdown timed out before all workers finished")
	}
	return nil
}

// schedulerLoop promotes delayed tasks into the ready queues.
func (c *Client) schedulerLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.queue.PromoteScheduled(ctx, c.opts.Queues); err != nil {
				if ctx.Err() != nil {
					return
				}
				logx.WithError(err).Warn("taskx: promote scheduled tasks failed")
			}
		}
	}
}

func (c *Client) workerLoop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := c.queue.Dequeue(ctx, c.opts.Queues, c.opts.DequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.WithError(err).Warnf("taskx: worker %d dequeue error", id)
			time.Sleep(c.opts.PollInterval)
			continue
		}
		if task == nil {
			continue
		}
		c.process(ctx, task)
	}
}

func (c *Client) process(ctx context.Context, task *TaskInfo) {
	c.mu.RLock()
	handler, ok := c.handlers[task.Type]
	c.mu.RUnlock()

	if !ok {
		logx.Warnf("taskx: no handler for task type %q (id=%s)", task.Type, task.ID)
		_, _ = c.queue.Fail(ctx, task.ID, "no handler registered for task type")
		return
	}

	if err := handler(ctx, task); err != nil {
		logx.WithError(err).Warnf("taskx: task %s (type=%s) failed", task.ID, task.Type)

		retry, failErr := c.queue.Fail(ctx, task.ID, err.Error())
		if failErr != nil {
			logx.WithError(failErr).Errorf("taskx: could not mark task %s failed", task.ID)
			return
		}
		if retry {
			if retryErr := c.queue.Retry(ctx, task.ID, c.opts.RetryDelay); retryErr != nil {
				logx.WithError(retryErr).Errorf("taskx: could not schedule retry for task %s", task.ID)
			}
		}
		return
	}

	if err := c.queue.Complete(ctx, task.ID); err != nil {
		logx.WithError(err).Errorf("taskx: could not mark task %s completed", task.ID)
	}
}
