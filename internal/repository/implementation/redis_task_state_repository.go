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

const taskStateKeyPrefix = "res_task:"

func taskStateKey(taskID string) string {
	return taskStateKeyPrefix + taskID
}

// RedisTaskStateRepository keeps each task state under res_task:<id> with
// a TTL, so finished tasks age out on their own.
type RedisTaskStateRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTaskStateRepository(rdb *redis.Client, ttl time.Duration) contract.TaskStateRepository {
	return &RedisTaskStateRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisTaskStateRepository) Save(ctx context.Context, state *entity.TaskState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal task state: %w", err)
	}
	if err := r.rdb.Set(ctx, taskStateKey(state.TaskID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save task state %s: %w", state.TaskID, err)
	}
	return nil
}

func (r *RedisTaskStateRepository) Get(ctx context.Context, taskID string) (*entity.TaskState, error) {
	raw, err := r.rdb.Get(ctx, taskStateKey(taskID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, contract.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task state %s: %w", taskID, err)
	}

	var state entity.TaskState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode task state %s: %w", taskID, err)
	}
	return &state, nil
}
