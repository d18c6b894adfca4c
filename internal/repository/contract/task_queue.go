package contract

import (
	"context"
	"time"

	"resume-optimizer/internal/entity"
)

// TaskQueue is a FIFO of pending evaluations.
type TaskQueue interface {
	Push(ctx context.Context, task *entity.Task) error
	// Pop waits up to timeout for a task. It returns (nil, nil) when the
	// wait expires without one.
	Pop(ctx context.Context, timeout time.Duration) (*entity.Task, error)
	Len(ctx context.Context) (int64, error)
	Close() error
}
