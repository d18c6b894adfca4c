package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const taskTopic = "resume.tasks"

// ChannelTaskQueue runs the task queue inside one process on a watermill
// Go channel pub/sub. It serves single-binary deployments without Redis.
// Delivery order between concurrently published tasks is not guaranteed.
type ChannelTaskQueue struct {
	pubSub   *gochannel.GoChannel
	messages <-chan *message.Message
	pending  atomic.Int64

	closeOnce sync.Once
	closed    chan struct{}
}

func NewChannelTaskQueue(buffer int) (*ChannelTaskQueue, error) {
	if buffer <= 0 {
		buffer = 64
	}
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: int64(buffer)},
		watermill.NewStdLogger(false, false),
	)

	// A single subscription is shared by every worker, so each task is
	// delivered once.
	messages, err := pubSub.Subscribe(context.Background(), taskTopic)
	if err != nil {
		_ = pubSub.Close()
		return nil, fmt.Errorf("subscribe task topic: %w", err)
	}

	return &ChannelTaskQueue{
		pubSub:   pubSub,
		messages: messages,
		closed:   make(chan struct{}),
	}, nil
}

var _ contract.TaskQueue = (*ChannelTaskQueue)(nil)

func (q *ChannelTaskQueue) Push(ctx context.Context, task *entity.Task) error {
	select {
	case <-q.closed:
		return contract.ErrQueueClosed
	default:
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	q.pending.Add(1)
	if err := q.pubSub.Publish(taskTopic, msg); err != nil {
		q.pending.Add(-1)
		return fmt.Errorf("push task %s: %w", task.ID, err)
	}
	return nil
}

func (q *ChannelTaskQueue) Pop(ctx context.Context, timeout time.Duration) (*entity.Task, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	case <-q.closed:
		return nil, contract.ErrQueueClosed
	case msg, ok := <-q.messages:
		if !ok {
			return nil, contract.ErrQueueClosed
		}
		q.pending.Add(-1)
		msg.Ack()

		var task entity.Task
		if err := json.Unmarshal(msg.Payload, &task); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		return &task, nil
	}
}

func (q *ChannelTaskQueue) Len(context.Context) (int64, error) {
	return q.pending.Load(), nil
}

func (q *ChannelTaskQueue) Close() error {
	var err error
	q.closeOnce.Do(func() {
		close(q.closed)
		err = q.pubSub.Close()
	})
	return err
}
