// Package taskxredis is the Redis backend for taskx. Ready tasks live in
// a list per queue, delayed tasks in a sorted set scored by their ready
// time, task bodies in plain keys.
package taskxredis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/openhire/openhire/pkg/taskx"
)

// RedisQueue implements taskx.Queue.
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue wraps an existing Redis client.
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func readyKey(queue string) string     { return fmt.Sprintf("taskx:ready:%s", queue) }
func scheduledKey(queue string) string { return fmt.Sprintf("taskx:scheduled:%s", queue) }
func taskKey(id string) string         { return fmt.Sprintf("taskx:task:%s", id) }

func (q *RedisQueue) store(ctx context.Context, info *taskx.TaskInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return redisErrors.NewWithCause(ErrMarshal, err).WithDetail("task_id", info.ID)
	}
	if err := q.rdb.Set(ctx, taskKey(info.ID), data, 0).Err(); err != nil {
		return redisErrors.NewWithCause(ErrStore, err).WithDetail("task_id", info.ID)
	}
	return nil
}

func newInfo(task taskx.Task) *taskx.TaskInfo {
	now := time.Now().UTC()
	return &taskx.TaskInfo{
		ID:         uuid.NewString(),
		Type:       task.Type,
		Queue:      task.Queue,
		Payload:    task.Payload,
		Status:     taskx.StatusPending,
		MaxRetries: task.MaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Enqueue stores the task and pushes it onto the ready list.
func (q *RedisQueue) Enqueue(ctx context.Context, task taskx.Task) (string, error) {
	info := newInfo(task)
	data, err := json.Marshal(info)
	if err != nil {
		return "", redisErrors.NewWithCause(ErrMarshal, err)
	}

	pipe := q.rdb.Pipeline()
	pipe.Set(ctx, taskKey(info.ID), data, 0)
	pipe.LPush(ctx, readyKey(task.Queue), info.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", redisErrors.NewWithCause(ErrEnqueue, err).WithDetail("queue", task.Queue)
	}
	return info.ID, nil
}

// EnqueueDelayed stores the task in the scheduled set with a future score.
func (q *RedisQueue) EnqueueDelayed(ctx context.Context, task taskx.Task, delay time.Duration) (string, error) {
	info := newInfo(task)
	data, err := json.Marshal(info)
	if err != nil {
		return "", redisErrors.NewWithCause(ErrMarshal, err)
	}

	score := float64(time.Now().UTC().Add(delay).Unix())
	pipe := q.rdb.Pipeline()
	pipe.Set(ctx, taskKey(info.ID), data, 0)
	pipe.ZAdd(ctx, scheduledKey(task.Queue), redis.Z{Score: score, Member: info.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", redisErrors.NewWithCause(ErrEnqueue, err).
			WithDetail("queue", task.Queue).
			WithDetail("delay", delay.String())
	}
	return info.ID, nil
}

// GetTask loads the stored task state.
func (q *RedisQueue) GetTask(ctx context.Context, taskID string) (*taskx.TaskInfo, error) {
	data, err := q.rdb.Get(ctx, taskKey(taskID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, redisErrors.New(ErrNotFound).WithDetail("task_id", taskID)
		}
		return nil, redisErrors.NewWithCause(ErrLoad, err).WithDetail("task_id", taskID)
	}

	var info taskx.TaskInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, redisErrors.NewWithCause(ErrUnmarshal, err).WithDetail("task_id", taskID)
	}
	return &info, nil
}

// Dequeue blocks for up to timeout on the ready lists, marks the popped
// task active and returns it. A nil, nil return means timeout.
func (q *RedisQueue) Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*taskx.TaskInfo, error) {
	keys := make([]string, len(queues))
	for i, name := range queues {
		keys[i] = readyKey(name)
	}

	result, err := q.rdb.BRPop(ctx, timeout, keys...).Result()
	if err != nil {
		if err == redis.Nil || ctx.Err() != nil {
			return nil, nil
		}
		return nil, redisErrors.NewWithCause(ErrDequeue, err)
	}

	info, err := q.GetTask(ctx, result[1])
	if err != nil {
		return nil, err
	}

	info.Status = taskx.StatusActive
	info.Attempts++
	info.UpdatedAt = time.Now().UTC()
	if err := q.store(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}

// Complete marks the task completed.
func (q *RedisQueue) Complete(ctx context.Context, taskID string) error {
	info, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	info.Status = taskx.StatusCompleted
	info.UpdatedAt = time.Now().UTC()
	return q.store(ctx, info)
}

// Fail records the error and reports whether the task has retries left.
func (q *RedisQueue) Fail(ctx context.Context, taskID string, errMsg string) (bool, error) {
	info, err := q.GetTask(ctx, taskID)
	if err != nil {
		return false, err
	}

	retry := info.Attempts < info.MaxRetries
	if retry {
		info.Status = taskx.StatusRetrying
	} else {
		info.Status = taskx.StatusFailed
	}
	info.Error = errMsg
	info.UpdatedAt = time.Now().UTC()

	if err := q.store(ctx, info); err != nil {
		return false, err
	}
	return retry, nil
}

// Retry places the task back in the scheduled set after delay.
func (q *RedisQueue) Retry(ctx context.Context, taskID string, delay time.Duration) error {
	info, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	score := float64(time.Now().UTC().Add(delay).Unix())
	if err := q.rdb.ZAdd(ctx, scheduledKey(info.Queue), redis.Z{Score: score, Member: taskID}).Err(); err != nil {
		return redisErrors.NewWithCause(ErrRetry, err).WithDetail("task_id", taskID)
	}
	return nil
}

// promoteScript atomically moves every due task id from the scheduled set
// to the ready list.
var promoteScript = redis.NewScript(`
local scheduled_key = KEYS[1]
local ready_key = KEYS[2]
local now = tonumber(ARGV[1])
local ids = redis.call('ZRANGEBYSCORE', scheduled_key, '-inf', now)
if #ids > 0 then
    for _, id in ipairs(ids) do
        redis.call('LPUSH', ready_key, id)
    end
    redis.call('ZREMRANGEBYSCORE', scheduled_key, '-inf', now)
end
return #ids
`)

// PromoteScheduled moves due tasks to the ready lists for each queue.
func (q *RedisQueue) PromoteScheduled(ctx context.Context, queues []string) error {
	now := strconv.FormatInt(time.Now().UTC().Unix(), 10)
	for _, name := range queues {
		err := promoteScript.Run(ctx, q.rdb, []string{scheduledKey(name), readyKey(name)}, now).Err()
		if err != nil && err != redis.Nil {
			return redisErrors.NewWithCause(ErrPromote, err).WithDetail("queue", name)
		}
	}
	return nil
}
