// Package taskevents emits task lifecycle events on the event bus.
package taskevents

import (
	"context"
	"time"

	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/pkg/events"
)

// Sink is the transport. *nats.Publisher satisfies it.
type Sink interface {
	Publish(ctx context.Context, event events.Event) error
}

// SinkFunc delivers events in process, for deployments without a bus.
type SinkFunc func(ctx context.Context, event events.Event) error

func (f SinkFunc) Publish(ctx context.Context, event events.Event) error {
	return f(ctx, event)
}

type Publisher interface {
	PublishSubmitted(ctx context.Context, taskID, fileName, jobName string)
	PublishStarted(ctx context.Context, taskID string)
	PublishCompleted(ctx context.Context, taskID string, elapsed time.Duration)
	PublishFailed(ctx context.Context, taskID, reason string)
}

// BusPublisher publishes through a Sink. A nil sink turns every call into a
// no-op, so the service keeps working when the bus is unavailable.
type BusPublisher struct {
	sink   Sink
	logger logger.ILogger
	now    func() time.Time
}

func NewBusPublisher(sink Sink, log logger.ILogger) *BusPublisher {
	return &BusPublisher{sink: sink, logger: log, now: time.Now}
}

func (p *BusPublisher) PublishSubmitted(ctx context.Context, taskID, fileName, jobName string) {
	p.publish(ctx, events.TaskSubmitted, map[string]interface{}{
		"task_id":   taskID,
		"file_name": fileName,
		"job_name":  jobName,
	})
}

func (p *BusPublisher) PublishStarted(ctx context.Context, taskID string) {
	p.publish(ctx, events.TaskStarted, map[string]interface{}{"task_id": taskID})
}

func (p *BusPublisher) PublishCompleted(ctx context.Context, taskID string, elapsed time.Duration) {
	p.publish(ctx, events.TaskCompleted, map[string]interface{}{
		"task_id":    taskID,
		"elapsed_ms": elapsed.Milliseconds(),
	})
}

func (p *BusPublisher) PublishFailed(ctx context.Context, taskID, reason string) {
	p.publish(ctx, events.TaskFailed, map[string]interface{}{
		"task_id": taskID,
		"reason":  reason,
	})
}

func (p *BusPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.sink == nil {
		return
	}

	now := p.now()
	data["occurred_at"] = now.Format(time.RFC3339)
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: now}

	if err := p.sink.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{
			"task_id": data["task_id"],
			"error":   err.Error(),
		})
	}
}
