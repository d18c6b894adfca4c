package taskevents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/pkg/events"
)

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func TestBusPublisher(t *testing.T) {
	sink := &recordingSink{}
	p := NewBusPublisher(sink, logger.NewNopLogger())
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	ctx := context.Background()
	p.PublishSubmitted(ctx, "T1", "cv.pdf", "Backend Engineer")
	p.PublishStarted(ctx, "T1")
	p.PublishCompleted(ctx, "T1", 1500*time.Millisecond)
	p.PublishFailed(ctx, "T2", "model unavailable")

	require.Len(t, sink.events, 4)
	types := []string{}
	for _, e := range sink.events {
		types = append(types, e.EventType())
		assert.Equal(t, fixed, e.Timestamp())
	}
	assert.Equal(t, []string{events.TaskSubmitted, events.TaskStarted, events.TaskCompleted, events.TaskFailed}, types)

	assert.Equal(t, "cv.pdf", events.String(sink.events[0].Payload(), "file_name"))
	assert.Equal(t, int64(1500), sink.events[2].Payload()["elapsed_ms"])
	assert.Equal(t, "model unavailable", events.String(sink.events[3].Payload(), "reason"))
}

func TestBusPublisherTolerantOfFailures(t *testing.T) {
	assert.NotPanics(t, func() {
		NewBusPublisher(nil, logger.NewNopLogger()).PublishStarted(context.Background(), "T1")
	})

	sink := &recordingSink{err: errors.New("no responders")}
	p := NewBusPublisher(sink, logger.NewNopLogger())
	assert.NotPanics(t, func() { p.PublishFailed(context.Background(), "T1", "x") })
	assert.Len(t, sink.events, 1)
}

func TestSinkFunc(t *testing.T) {
	var got []string
	sink := SinkFunc(func(_ context.Context, e events.Event) error {
		got = append(got, e.EventType()+":"+events.String(e.Payload(), "task_id"))
		return nil
	})

	p := NewBusPublisher(sink, logger.NewNopLogger())
	p.PublishStarted(context.Background(), "T9")
	assert.Equal(t, []string{events.TaskStarted + ":T9"}, got)
}
