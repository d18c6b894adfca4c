package memory

import (
	"context"
	"time"

	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// CachedTaskStateRepository fronts another store and remembers terminal
// states, which never change, so repeated polls of a finished task stay
// off the network.
type CachedTaskStateRepository struct {
	next  contract.TaskStateRepository
	cache *cache.Cache
}

func NewCachedTaskStateRepository(next contract.TaskStateRepository, ttl time.Duration) *CachedTaskStateRepository {
	return &CachedTaskStateRepository{
		next:  next,
		cache: cache.New(ttl, 10*time.Minute),
	}
}

var _ contract.TaskStateRepository = (*CachedTaskStateRepository)(nil)

func (r *CachedTaskStateRepository) Save(ctx context.Context, state *entity.TaskState) error {
	if err := r.next.Save(ctx, state); err != nil {
		return err
	}
	if state.Status.Terminal() {
		copied := *state
		r.cache.Set(state.TaskID, &copied, cache.DefaultExpiration)
	} else {
		r.cache.Delete(state.TaskID)
	}
	return nil
}

func (r *CachedTaskStateRepository) Get(ctx context.Context, taskID string) (*entity.TaskState, error) {
	if x, found := r.cache.Get(taskID); found {
		copied := *x.(*entity.TaskState)
		return &copied, nil
	}

	state, err := r.next.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if state.Status.Terminal() {
		copied := *state
		r.cache.Set(taskID, &copied, cache.DefaultExpiration)
	}
	return state, nil
}
