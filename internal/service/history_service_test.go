package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/internal/repository/contract"
	"resume-optimizer/internal/repository/unitofwork"
	"resume-optimizer/pkg/events"
	pkgNats "resume-optimizer/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	subject, durable string
	handler          pkgNats.EventHandler
}

func (s *recordingSubscriber) Subscribe(_ context.Context, subject, durable string, handler pkgNats.EventHandler) error {
	s.subject, s.durable, s.handler = subject, durable, handler
	return nil
}

func event(kind string, at time.Time, data map[string]interface{}) events.Event {
	return events.BaseEvent{Type: kind, Data: data, OccurredAt: at}
}

func TestHistoryServiceLifecycle(t *testing.T) {
	uows := newFakeUnitOfWorkFactory()
	repo := uows.repo
	sub := &recordingSubscriber{}
	svc := NewHistoryService(uows, sub, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx))
	assert.Equal(t, "events.>", sub.subject)
	assert.Equal(t, historyDurable, sub.durable)

	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, sub.handler(ctx, event(events.TaskSubmitted, t0, map[string]interface{}{
		"task_id": "T1", "file_name": "cv.pdf", "job_name": "SRE",
	})))
	require.NoError(t, sub.handler(ctx, event(events.TaskStarted, t0.Add(time.Second), map[string]interface{}{"task_id": "T1"})))
	require.NoError(t, sub.handler(ctx, event(events.TaskCompleted, t0.Add(time.Minute), map[string]interface{}{
		"task_id": "T1", "elapsed_ms": float64(59000),
	})))

	assert.Equal(t, 3, uows.commits)
	assert.Zero(t, uows.rollbacks)

	e := repo.byTask["T1"]
	require.NotNil(t, e)
	assert.Equal(t, entity.TaskCompleted, e.Status)
	assert.Equal(t, "cv.pdf", e.FileName)
	assert.EqualValues(t, 59000, e.ElapsedMs)
	require.NotNil(t, e.StartedAt)
	require.NotNil(t, e.CompletedAt)

	list, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "T1", list[0].TaskId)
	assert.Equal(t, "completed", list[0].Status)
	assert.Equal(t, "2026-01-02T03:04:05Z", list[0].SubmittedAt)
	require.NotNil(t, list[0].CompletedAt)
}

func TestHistoryServiceOutOfOrder(t *testing.T) {
	uows := newFakeUnitOfWorkFactory()
	repo := uows.repo
	svc := NewHistoryService(uows, nil, logger.NewNopLogger())
	ctx := context.Background()
	t0 := time.Now()

	require.NoError(t, svc.HandleEvent(ctx, event(events.TaskFailed, t0, map[string]interface{}{
		"task_id": "T2", "reason": "clean resume: timeout",
	})))
	require.NoError(t, svc.HandleEvent(ctx, event(events.TaskStarted, t0, map[string]interface{}{"task_id": "T2"})))
	require.NoError(t, svc.HandleEvent(ctx, event(events.TaskSubmitted, t0, map[string]interface{}{
		"task_id": "T2", "file_name": "cv.txt",
	})))

	e := repo.byTask["T2"]
	assert.Equal(t, entity.TaskFailed, e.Status, "a late start must not reopen a failed task")
	assert.Equal(t, "clean resume: timeout", e.Error)
	assert.Equal(t, "cv.txt", e.FileName)
}

func TestHistoryServiceIgnoresUnknown(t *testing.T) {
	uows := newFakeUnitOfWorkFactory()
	repo := uows.repo
	svc := NewHistoryService(uows, nil, logger.NewNopLogger())

	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.HandleEvent(context.Background(), event("NOTE_CREATED", time.Now(), map[string]interface{}{"task_id": "T3"})))
	require.NoError(t, svc.HandleEvent(context.Background(), event(events.TaskStarted, time.Now(), map[string]interface{}{})))
	assert.Empty(t, repo.byTask)
}

type failingCreateRepo struct{ *fakeEvaluationRepo }

func (failingCreateRepo) Create(context.Context, *entity.Evaluation) error {
	return errors.New("duplicate key")
}

type failingFactory struct{ *fakeUnitOfWorkFactory }

func (f failingFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &failingUnitOfWork{fakeUnitOfWork: f.fakeUnitOfWorkFactory.NewUnitOfWork(ctx).(*fakeUnitOfWork)}
}

type failingUnitOfWork struct{ *fakeUnitOfWork }

func (u *failingUnitOfWork) EvaluationRepository() contract.EvaluationRepository {
	return failingCreateRepo{u.repo}
}

func TestHistoryServiceRollsBack(t *testing.T) {
	uows := newFakeUnitOfWorkFactory()
	svc := NewHistoryService(failingFactory{uows}, nil, logger.NewNopLogger())

	err := svc.HandleEvent(context.Background(), event(events.TaskSubmitted, time.Now(), map[string]interface{}{"task_id": "T4"}))
	assert.ErrorContains(t, err, "duplicate key")
	assert.Equal(t, 1, uows.rollbacks)
	assert.Zero(t, uows.commits)
}
