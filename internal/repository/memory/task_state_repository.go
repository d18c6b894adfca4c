package memory

import (
	"context"
	"time"

	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// TaskStateRepository keeps task states in process memory. Entries expire
// after ttl like their Redis counterparts.
type TaskStateRepository struct {
	cache *cache.Cache
}

func NewTaskStateRepository(ttl time.Duration) *TaskStateRepository {
	cleanup := ttl / 6
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &TaskStateRepository{cache: cache.New(ttl, cleanup)}
}

var _ contract.TaskStateRepository = (*TaskStateRepository)(nil)

func (r *TaskStateRepository) Save(_ context.Context, state *entity.TaskState) error {
	copied := *state
	r.cache.Set(state.TaskID, &copied, cache.DefaultExpiration)
	return nil
}

func (r *TaskStateRepository) Get(_ context.Context, taskID string) (*entity.TaskState, error) {
	if x, found := r.cache.Get(taskID); found {
		copied := *x.(*entity.TaskState)
		return &copied, nil
	}
	return nil, contract.ErrTaskNotFound
}
