package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-optimizer/internal/constant"
	"resume-optimizer/internal/dto"
	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/internal/repository/contract"
	"resume-optimizer/pkg/document"
	"resume-optimizer/pkg/llm"
	"resume-optimizer/pkg/taskevents"
)

const resumeModule = "ResumeService"

var ErrInvalidDocument = errors.New("invalid document")

const (
	processingMessage = "Task is still processing, please retry later"
	emptyTaskIDError  = "task id must not be empty"
)

type IResumeService interface {
	Submit(ctx context.Context, req *dto.SubmitEvaluationRequest, fileName string, data []byte) (*dto.SubmitEvaluationResponse, error)
	Result(ctx context.Context, taskID string) (*dto.QueryResultResponse, error)
	Chat(ctx context.Context, req *dto.ChatTurnRequest) (*dto.ChatTurnResponse, error)
}

type resumeService struct {
	queue       contract.TaskQueue
	states      contract.TaskStateRepository
	llmProvider llm.LLMProvider
	events      taskevents.Publisher
	ids         *TaskIDGenerator
	logger      logger.ILogger
	now         func() time.Time
}

func NewResumeService(
	queue contract.TaskQueue,
	states contract.TaskStateRepository,
	llmProvider llm.LLMProvider,
	events taskevents.Publisher,
	logger logger.ILogger,
) IResumeService {
	return &resumeService{
		queue:       queue,
		states:      states,
		llmProvider: llmProvider,
		events:      events,
		ids:         NewTaskIDGenerator(),
		logger:      logger,
		now:         time.Now,
	}
}

func (s *resumeService) Submit(ctx context.Context, req *dto.SubmitEvaluationRequest, fileName string, data []byte) (*dto.SubmitEvaluationResponse, error) {
	text, err := document.Extract(fileName, data)
	if err != nil {
		s.logger.Warn(resumeModule, "Document rejected", map[string]interface{}{
			"file_name": fileName,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	now := s.now()
	task := &entity.Task{
		ID:             s.ids.Next(),
		FileName:       fileName,
		DocumentText:   text + "\nCurrent date: " + now.Format("2006-01-02"),
		JobName:        req.JobName,
		JobDescription: req.JobDescription,
		MoreInfo:       req.MoreInfo,
		UserRequest:    req.UserRequest,
		SubmittedAt:    now,
	}

	// 1. Record the task before it becomes visible to workers
	if err := s.states.Save(ctx, &entity.TaskState{
		TaskID:    task.ID,
		Status:    entity.TaskQueued,
		UpdatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("save task state: %w", err)
	}

	// 2. Enqueue
	if err := s.queue.Push(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue task: %w", err)
	}

	// 3. Announce
	s.events.PublishSubmitted(ctx, task.ID, fileName, req.JobName)

	depth, _ := s.queue.Len(ctx)
	s.logger.Info(resumeModule, "Task submitted", map[string]interface{}{
		"task_id":     task.ID,
		"file_name":   fileName,
		"queue_depth": depth,
	})

	return &dto.SubmitEvaluationResponse{
		Status:  dto.StatusSuccess,
		Message: task.ID,
	}, nil
}

func (s *resumeService) Result(ctx context.Context, taskID string) (*dto.QueryResultResponse, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return &dto.QueryResultResponse{Status: dto.StatusError, Message: emptyTaskIDError}, nil
	}

	state, err := s.states.Get(ctx, taskID)
	if errors.Is(err, contract.ErrTaskNotFound) {
		return &dto.QueryResultResponse{
			Status:  dto.StatusNotFound,
			Message: "task not found: " + taskID,
			TaskId:  taskID,
		}, nil
	}
	if err != nil {
		s.logger.Error(resumeModule, "Result lookup failed", map[string]interface{}{
			"task_id": taskID,
			"error":   err.Error(),
		})
		return &dto.QueryResultResponse{
			Status:  dto.StatusError,
			Message: "query failed: " + err.Error(),
			TaskId:  taskID,
		}, nil
	}

	switch state.Status {
	case entity.TaskCompleted:
		if strings.TrimSpace(state.Result) == "" {
			break
		}
		return &dto.QueryResultResponse{
			Status:  dto.StatusSuccess,
			Message: state.Result,
			TaskId:  taskID,
		}, nil
	case entity.TaskFailed:
		return &dto.QueryResultResponse{
			Status:  dto.StatusFailed,
			Message: state.Error,
			TaskId:  taskID,
		}, nil
	}

	return &dto.QueryResultResponse{
		Status:  dto.StatusProcessing,
		Message: processingMessage,
		TaskId:  taskID,
	}, nil
}

func (s *resumeService) Chat(ctx context.Context, req *dto.ChatTurnRequest) (*dto.ChatTurnResponse, error) {
	prompt := fmt.Sprintf(constant.ResumeChatPrompt,
		orNone(req.HistoryChatRecord),
		orNone(req.ResOptRecord),
		req.UserPrompt+"\nCurrent date: "+s.now().Format("2006-01-02"),
	)

	reply, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: constant.ResumeSystemPrompt},
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		s.logger.Error(resumeModule, "Chat turn failed", map[string]interface{}{"error": err.Error()})
		return &dto.ChatTurnResponse{Status: dto.StatusError, Message: err.Error()}, nil
	}

	return &dto.ChatTurnResponse{Status: dto.StatusSuccess, Message: reply}, nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return constant.NoneProvided
	}
	return s
}
