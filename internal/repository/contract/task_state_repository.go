package contract

import (
	"context"

	"resume-optimizer/internal/entity"
)

// TaskStateRepository stores the progress of each task. Get returns
// ErrTaskNotFound for unknown or expired ids.
type TaskStateRepository interface {
	Save(ctx context.Context, state *entity.TaskState) error
	Get(ctx context.Context, taskID string) (*entity.TaskState, error)
}
