package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

// RedisTaskQueue is a list-backed FIFO: producers LPUSH, workers BRPOP.
type RedisTaskQueue struct {
	rdb  *redis.Client
	name string
}

func NewRedisTaskQueue(rdb *redis.Client, name string) contract.TaskQueue {
	return &RedisTaskQueue{rdb: rdb, name: name}
}

func (q *RedisTaskQueue) Push(ctx context.Context, task *entity.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("push task %s: %w", task.ID, err)
	}
	return nil
}

func (q *RedisTaskQueue) Pop(ctx context.Context, timeout time.Duration) (*entity.Task, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop task: %w", err)
	}
	return taskFromReply(res)
}

// taskFromReply decodes a BRPOP answer, which is [key, value].
func taskFromReply(res []string) (*entity.Task, error) {
	if len(res) != 2 {
		return nil, fmt.Errorf("pop task: unexpected reply of %d elements", len(res))
	}
	return decodeTask(res[1])
}

func (q *RedisTaskQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}

// Close leaves the shared client open; its owner closes it.
func (q *RedisTaskQueue) Close() error {
	return nil
}

func decodeTask(raw string) (*entity.Task, error) {
	var task entity.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	if task.ID == "" {
		return nil, errors.New("decode task: missing task_id")
	}
	return &task, nil
}
