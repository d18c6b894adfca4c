package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-optimizer/internal/constant"
	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/internal/repository/contract"
	"resume-optimizer/pkg/hybrid"
	"resume-optimizer/pkg/llm"
	"resume-optimizer/pkg/taskevents"

	"golang.org/x/sync/errgroup"
)

const workerModule = "WorkerService"

const (
	popTimeout        = 5 * time.Second
	queueErrorBackoff = time.Second
	keywordSeparator  = "<#>"
	shutdownReason    = "worker stopped before the task finished"
)

type IWorkerService interface {
	// Run pulls tasks with the given number of workers until ctx ends or
	// the queue closes.
	Run(ctx context.Context, workers int) error
	Process(ctx context.Context, task *entity.Task) error
}

type workerService struct {
	queue       contract.TaskQueue
	states      contract.TaskStateRepository
	llmProvider llm.LLMProvider
	events      taskevents.Publisher
	logger      logger.ILogger

	now          func() time.Time
	popTimeout   time.Duration
	errorBackoff time.Duration
}

func NewWorkerService(
	queue contract.TaskQueue,
	states contract.TaskStateRepository,
	llmProvider llm.LLMProvider,
	events taskevents.Publisher,
	logger logger.ILogger,
) IWorkerService {
	return &workerService{
		queue:        queue,
		states:       states,
		llmProvider:  llmProvider,
		events:       events,
		logger:       logger,
		now:          time.Now,
		popTimeout:   popTimeout,
		errorBackoff: queueErrorBackoff,
	}
}

func (w *workerService) Run(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}
	w.logger.Info(workerModule, "Workers started", map[string]interface{}{"workers": workers})

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		id := i
		g.Go(func() error {
			return w.loop(gctx, id)
		})
	}
	err := g.Wait()

	w.logger.Info(workerModule, "Workers stopped", nil)
	return err
}

func (w *workerService) loop(ctx context.Context, id int) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		task, err := w.queue.Pop(ctx, w.popTimeout)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, contract.ErrQueueClosed) {
				return nil
			}
			w.logger.Error(workerModule, "Queue pop failed", map[string]interface{}{
				"worker": id,
				"error":  err.Error(),
			})
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.errorBackoff):
			}
			continue
		}
		if task == nil {
			continue
		}

		// Failures are recorded on the task itself; the loop keeps going.
		_ = w.Process(ctx, task)
	}
}

func (w *workerService) Process(ctx context.Context, task *entity.Task) error {
	started := w.now()
	w.logger.Info(workerModule, "Task started", map[string]interface{}{"task_id": task.ID})

	if err := w.save(ctx, task.ID, entity.TaskRunning, "", ""); err != nil {
		w.logger.Warn(workerModule, "Could not mark task running", map[string]interface{}{
			"task_id": task.ID,
			"error":   err.Error(),
		})
	}
	w.events.PublishStarted(ctx, task.ID)

	result, err := w.evaluate(ctx, task)

	// Terminal writes outlive a shutdown so the task never stays running.
	finalCtx := context.WithoutCancel(ctx)

	if err != nil {
		reason := err.Error()
		if ctx.Err() != nil {
			reason = fmt.Sprintf("%s: %s", shutdownReason, reason)
		}
		w.logger.Error(workerModule, "Task failed", map[string]interface{}{
			"task_id": task.ID,
			"error":   reason,
		})
		if saveErr := w.save(finalCtx, task.ID, entity.TaskFailed, "", reason); saveErr != nil {
			w.logger.Error(workerModule, "Could not store failure", map[string]interface{}{
				"task_id": task.ID,
				"error":   saveErr.Error(),
			})
		}
		w.events.PublishFailed(finalCtx, task.ID, reason)
		return err
	}

	if err := w.save(finalCtx, task.ID, entity.TaskCompleted, result, ""); err != nil {
		w.logger.Error(workerModule, "Could not store result", map[string]interface{}{
			"task_id": task.ID,
			"error":   err.Error(),
		})
		w.events.PublishFailed(finalCtx, task.ID, err.Error())
		return err
	}

	elapsed := w.now().Sub(started)
	w.events.PublishCompleted(finalCtx, task.ID, elapsed)
	w.logger.Info(workerModule, "Task completed", map[string]interface{}{
		"task_id":    task.ID,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	return nil
}

// evaluate runs the pipeline: cleaning and role analysis in parallel, then
// keyword extraction on the cleaned text, then the final evaluation. The
// result is the evaluation joined with the cleaned resume.
func (w *workerService) evaluate(ctx context.Context, task *entity.Task) (string, error) {
	var cleaned, roleAnalysis string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := w.generate(gctx, fmt.Sprintf(constant.ResumeCleanPrompt, task.DocumentText))
		if err != nil {
			return fmt.Errorf("clean resume: %w", err)
		}
		cleaned = strings.TrimSpace(out)
		return nil
	})
	g.Go(func() error {
		out, err := w.generate(gctx, fmt.Sprintf(constant.ResumeRoleAnalysisPrompt,
			orNone(task.JobName), orNone(task.JobDescription)))
		if err != nil {
			w.logger.Warn(workerModule, "Role analysis skipped", map[string]interface{}{
				"task_id": task.ID,
				"error":   err.Error(),
			})
			roleAnalysis = constant.NoneProvided
			return nil
		}
		roleAnalysis = strings.TrimSpace(out)
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	if cleaned == "" {
		return "", errors.New("clean resume: empty output")
	}

	keywords := w.extractKeywords(ctx, task, cleaned)

	evaluation, err := w.generate(ctx, fmt.Sprintf(constant.ResumeEvaluationPrompt,
		cleaned,
		strings.TrimSpace(task.JobName+"  "+task.JobDescription),
		strings.Join(keywords, "; "),
		orNone(roleAnalysis),
		orNone(task.MoreInfo),
		orNone(task.UserRequest),
	))
	if err != nil {
		return "", fmt.Errorf("evaluate resume: %w", err)
	}
	evaluation = strings.TrimSpace(evaluation)
	if evaluation == "" {
		return "", errors.New("evaluate resume: empty output")
	}

	return hybrid.Join(evaluation, cleaned), nil
}

func (w *workerService) extractKeywords(ctx context.Context, task *entity.Task, cleaned string) []string {
	out, err := w.generate(ctx, fmt.Sprintf(constant.ResumeKeywordPrompt,
		orNone(task.JobName), orNone(task.JobDescription), orNone(task.MoreInfo), cleaned))
	if err != nil {
		w.logger.Warn(workerModule, "Keyword extraction fell back to directions", map[string]interface{}{
			"task_id": task.ID,
			"error":   err.Error(),
		})
		return constant.ResumeKeywordDirections
	}

	var keywords []string
	for _, k := range strings.Split(out, keywordSeparator) {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return constant.ResumeKeywordDirections
	}
	return keywords
}

func (w *workerService) generate(ctx context.Context, prompt string) (string, error) {
	return w.llmProvider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: constant.ResumeSystemPrompt},
		{Role: llm.RoleUser, Content: prompt},
	})
}

func (w *workerService) save(ctx context.Context, taskID string, status entity.TaskStatus, result, reason string) error {
	return w.states.Save(ctx, &entity.TaskState{
		TaskID:    taskID,
		Status:    status,
		Result:    result,
		Error:     reason,
		UpdatedAt: w.now(),
	})
}
