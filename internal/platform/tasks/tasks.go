package tasks

import (
	"time"

	"vidfetch/internal/platform/redis"

	"github.com/hibiken/asynq"
)

type Client struct {
	c         *asynq.Client
	inspector *asynq.Inspector
}

func New(r *redis.Service) *Client {
	opt := r.AsynqRedisOpt()
	return &Client{c: asynq.NewClient(opt), inspector: asynq.NewInspector(opt)}
}

func (t *Client) Close() error { return t.c.Close() }

func (t *Client) Enqueue(task *asynq.Task, queue string, maxRetries int) error {
	_, err := t.c.Enqueue(task, asynq.Queue(queue), asynq.MaxRetry(maxRetries))
	return err
}

// EnqueueIn schedules a task to become eligible for execution no sooner
// than delay from now.
func (t *Client) EnqueueIn(task *asynq.Task, queue string, maxRetries int, delay time.Duration) error {
	_, err := t.c.Enqueue(task, asynq.Queue(queue), asynq.MaxRetry(maxRetries), asynq.ProcessIn(delay))
	return err
}

// Healthy reports whether the queue's backing store answers inspection
// requests. Used by the availability gate on job submission.
func (t *Client) Healthy() error {
	_, err := t.inspector.Queues()
	return err
}
