package service

import (
	"context"
	"fmt"
	"time"

	"resume-optimizer/internal/dto"
	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/internal/repository/specification"
	"resume-optimizer/internal/repository/unitofwork"
	"resume-optimizer/pkg/events"
	pkgNats "resume-optimizer/pkg/nats"
)

const historyModule = "HistoryService"

const (
	historyDurable  = "evaluation-history"
	defaultPageSize = 20
	maxPageSize     = 100
)

// EventSubscriber is satisfied by *nats.Subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pkgNats.EventHandler) error
}

type IHistoryService interface {
	// Start subscribes to task lifecycle events.
	Start(ctx context.Context) error
	HandleEvent(ctx context.Context, event events.Event) error
	List(ctx context.Context, limit, offset int) ([]*dto.EvaluationHistoryResponse, error)
}

type historyService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber EventSubscriber
	logger     logger.ILogger
}

func NewHistoryService(uowFactory unitofwork.RepositoryFactory, subscriber EventSubscriber, logger logger.ILogger) IHistoryService {
	return &historyService{uowFactory: uowFactory, subscriber: subscriber, logger: logger}
}

func (s *historyService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		return nil
	}
	return s.subscriber.Subscribe(ctx, events.SubjectPrefix+">", historyDurable, s.HandleEvent)
}

// HandleEvent applies one lifecycle event. Events may arrive out of order
// or more than once, so every branch upserts and never moves a finished
// evaluation backwards.
func (s *historyService) HandleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	taskID := events.String(payload, "task_id")
	if taskID == "" {
		s.logger.Warn(historyModule, "Event without task id", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := s.apply(ctx, uow, taskID, event); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

func (s *historyService) apply(ctx context.Context, uow unitofwork.UnitOfWork, taskID string, event events.Event) error {
	repo := uow.EvaluationRepository()
	payload := event.Payload()

	existing, err := repo.FindOne(ctx, specification.ByTaskID{TaskID: taskID}, specification.ForUpdate{})
	if err != nil {
		return fmt.Errorf("find evaluation %s: %w", taskID, err)
	}

	evaluation := existing
	if evaluation == nil {
		evaluation = &entity.Evaluation{
			TaskId:      taskID,
			Status:      entity.TaskQueued,
			SubmittedAt: event.Timestamp(),
		}
	}

	at := event.Timestamp()
	switch event.EventType() {
	case events.TaskSubmitted:
		evaluation.FileName = events.String(payload, "file_name")
		evaluation.JobName = events.String(payload, "job_name")
		evaluation.SubmittedAt = at
	case events.TaskStarted:
		if !evaluation.Status.Terminal() {
			evaluation.Status = entity.TaskRunning
		}
		evaluation.StartedAt = &at
	case events.TaskCompleted:
		evaluation.Status = entity.TaskCompleted
		evaluation.Error = ""
		evaluation.CompletedAt = &at
		evaluation.ElapsedMs = int64Field(payload, "elapsed_ms")
	case events.TaskFailed:
		if evaluation.Status != entity.TaskCompleted {
			evaluation.Status = entity.TaskFailed
			evaluation.Error = events.String(payload, "reason")
			evaluation.CompletedAt = &at
		}
	default:
		return nil
	}

	if existing == nil {
		err = repo.Create(ctx, evaluation)
	} else {
		err = repo.Update(ctx, evaluation)
	}
	if err != nil {
		return fmt.Errorf("store evaluation %s: %w", taskID, err)
	}

	s.logger.Debug(historyModule, "Evaluation updated", map[string]interface{}{
		"task_id": taskID,
		"event":   event.EventType(),
		"status":  string(evaluation.Status),
	})
	return nil
}

func (s *historyService) List(ctx context.Context, limit, offset int) ([]*dto.EvaluationHistoryResponse, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	evaluations, err := uow.EvaluationRepository().FindAll(ctx,
		specification.OrderBy{Field: "submitted_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.EvaluationHistoryResponse, 0, len(evaluations))
	for _, e := range evaluations {
		item := &dto.EvaluationHistoryResponse{
			TaskId:      e.TaskId,
			FileName:    e.FileName,
			JobName:     e.JobName,
			Status:      string(e.Status),
			Error:       e.Error,
			SubmittedAt: e.SubmittedAt.Format(time.RFC3339),
		}
		if e.CompletedAt != nil {
			completed := e.CompletedAt.Format(time.RFC3339)
			item.CompletedAt = &completed
		}
		res = append(res, item)
	}
	return res, nil
}

// int64Field reads a number that may have been decoded from JSON.
func int64Field(payload map[string]interface{}, key string) int64 {
	switch v := payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
