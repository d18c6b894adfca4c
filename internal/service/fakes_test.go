package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/repository/contract"
	"resume-optimizer/internal/repository/specification"
	"resume-optimizer/internal/repository/unitofwork"
	"resume-optimizer/pkg/llm"
)

// fakeLLM answers by matching a marker in the last message.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	answer  func(prompt string) (string, error)
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	prompt := history[len(history)-1].Content
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.answer(prompt)
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (f *fakeLLM) promptContaining(marker string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.prompts {
		if strings.Contains(p, marker) {
			return p
		}
	}
	return ""
}

type publishedEvent struct {
	kind    string
	taskID  string
	detail  string
	elapsed time.Duration
}

type fakeEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeEvents) add(e publishedEvent) {
	f.mu.Lock()
	f.events = append(f.events, e)
	f.mu.Unlock()
}

func (f *fakeEvents) PublishSubmitted(_ context.Context, taskID, fileName, _ string) {
	f.add(publishedEvent{kind: "submitted", taskID: taskID, detail: fileName})
}

func (f *fakeEvents) PublishStarted(_ context.Context, taskID string) {
	f.add(publishedEvent{kind: "started", taskID: taskID})
}

func (f *fakeEvents) PublishCompleted(_ context.Context, taskID string, elapsed time.Duration) {
	f.add(publishedEvent{kind: "completed", taskID: taskID, elapsed: elapsed})
}

func (f *fakeEvents) PublishFailed(_ context.Context, taskID, reason string) {
	f.add(publishedEvent{kind: "failed", taskID: taskID, detail: reason})
}

func (f *fakeEvents) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.kind
	}
	return out
}

// fakeEvaluationRepo keys evaluations by task id and ignores specs other
// than ByTaskID.
type fakeEvaluationRepo struct {
	byTask map[string]*entity.Evaluation
	order  []string
}

func newFakeEvaluationRepo() *fakeEvaluationRepo {
	return &fakeEvaluationRepo{byTask: map[string]*entity.Evaluation{}}
}

func (r *fakeEvaluationRepo) Create(_ context.Context, e *entity.Evaluation) error {
	copied := *e
	r.byTask[e.TaskId] = &copied
	r.order = append(r.order, e.TaskId)
	return nil
}

func (r *fakeEvaluationRepo) Update(_ context.Context, e *entity.Evaluation) error {
	copied := *e
	r.byTask[e.TaskId] = &copied
	return nil
}

func (r *fakeEvaluationRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Evaluation, error) {
	for _, spec := range specs {
		if s, ok := spec.(specification.ByTaskID); ok {
			if e, found := r.byTask[s.TaskID]; found {
				copied := *e
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeEvaluationRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Evaluation, error) {
	out := make([]*entity.Evaluation, 0, len(r.order))
	for _, id := range r.order {
		copied := *r.byTask[id]
		out = append(out, &copied)
	}
	return out, nil
}

// fakeUnitOfWork counts transaction outcomes around a shared fake repo.
type fakeUnitOfWork struct {
	repo      *fakeEvaluationRepo
	commits   *int
	rollbacks *int
}

func (u *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error               { *u.commits++; return nil }
func (u *fakeUnitOfWork) Rollback() error             { *u.rollbacks++; return nil }

func (u *fakeUnitOfWork) EvaluationRepository() contract.EvaluationRepository {
	return u.repo
}

type fakeUnitOfWorkFactory struct {
	repo      *fakeEvaluationRepo
	commits   int
	rollbacks int
}

func newFakeUnitOfWorkFactory() *fakeUnitOfWorkFactory {
	return &fakeUnitOfWorkFactory{repo: newFakeEvaluationRepo()}
}

func (f *fakeUnitOfWorkFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{repo: f.repo, commits: &f.commits, rollbacks: &f.rollbacks}
}
