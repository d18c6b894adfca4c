package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-optimizer/internal/dto"
	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/internal/repository/contract"
	"resume-optimizer/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStates struct{}

func (brokenStates) Save(context.Context, *entity.TaskState) error { return nil }
func (brokenStates) Get(context.Context, string) (*entity.TaskState, error) {
	return nil, errors.New("connection refused")
}

func newTestResumeService(t *testing.T, llmFake *fakeLLM) (*resumeService, *memory.ChannelTaskQueue, *memory.TaskStateRepository, *fakeEvents) {
	t.Helper()
	queue, err := memory.NewChannelTaskQueue(8)
	require.NoError(t, err)
	t.Cleanup(func() { queue.Close() })

	states := memory.NewTaskStateRepository(time.Hour)
	ev := &fakeEvents{}
	svc := NewResumeService(queue, states, llmFake, ev, logger.NewNopLogger()).(*resumeService)
	svc.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.Local) }
	svc.ids = newTaskIDGenerator(svc.now)
	return svc, queue, states, ev
}

func TestResumeServiceSubmit(t *testing.T) {
	svc, queue, states, ev := newTestResumeService(t, &fakeLLM{})
	ctx := context.Background()

	res, err := svc.Submit(ctx, &dto.SubmitEvaluationRequest{JobName: "Backend Engineer"}, "cv.txt", []byte("Go, Redis, Postgres"))
	require.NoError(t, err)
	assert.Equal(t, dto.StatusSuccess, res.Status)
	assert.Equal(t, "2026050607080900000000", res.Message)

	state, err := states.Get(ctx, res.Message)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskQueued, state.Status)

	task, err := queue.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, res.Message, task.ID)
	assert.Equal(t, "Backend Engineer", task.JobName)
	assert.Contains(t, task.DocumentText, "Go, Redis, Postgres")
	assert.Contains(t, task.DocumentText, "Current date: 2026-05-06")

	assert.Equal(t, []string{"submitted"}, ev.kinds())
}

func TestResumeServiceSubmitRejectsDocument(t *testing.T) {
	svc, _, _, ev := newTestResumeService(t, &fakeLLM{})

	_, err := svc.Submit(context.Background(), &dto.SubmitEvaluationRequest{}, "cv.txt", []byte("   "))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = svc.Submit(context.Background(), &dto.SubmitEvaluationRequest{}, "cv.docx", []byte{0xff, 0xfe, 0x00})
	assert.ErrorIs(t, err, ErrInvalidDocument)

	assert.Empty(t, ev.kinds())
}

func TestResumeServiceResult(t *testing.T) {
	svc, _, states, _ := newTestResumeService(t, &fakeLLM{})
	ctx := context.Background()

	save := func(id string, status entity.TaskStatus, result, reason string) {
		require.NoError(t, states.Save(ctx, &entity.TaskState{TaskID: id, Status: status, Result: result, Error: reason}))
	}
	save("queued", entity.TaskQueued, "", "")
	save("running", entity.TaskRunning, "", "")
	save("done", entity.TaskCompleted, "reply###$$$简历文本$$$###：doc", "")
	save("empty", entity.TaskCompleted, "  ", "")
	save("broken", entity.TaskFailed, "", "clean resume: timeout")

	cases := []struct {
		id      string
		status  string
		message string
	}{
		{"queued", dto.StatusProcessing, processingMessage},
		{"running", dto.StatusProcessing, processingMessage},
		{"done", dto.StatusSuccess, "reply###$$$简历文本$$$###：doc"},
		{"empty", dto.StatusProcessing, processingMessage},
		{"broken", dto.StatusFailed, "clean resume: timeout"},
		{"missing", dto.StatusNotFound, "task not found: missing"},
		{"  ", dto.StatusError, emptyTaskIDError},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			res, err := svc.Result(ctx, tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.status, res.Status)
			assert.Equal(t, tc.message, res.Message)
		})
	}
}

func TestResumeServiceResultStoreError(t *testing.T) {
	svc := NewResumeService(nil, brokenStates{}, &fakeLLM{}, &fakeEvents{}, logger.NewNopLogger())

	res, err := svc.Result(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, dto.StatusError, res.Status)
	assert.Contains(t, res.Message, "connection refused")
}

func TestResumeServiceChat(t *testing.T) {
	llmFake := &fakeLLM{answer: func(string) (string, error) { return "Tighten the summary.", nil }}
	svc, _, _, _ := newTestResumeService(t, llmFake)

	res, err := svc.Chat(context.Background(), &dto.ChatTurnRequest{
		HistoryChatRecord: "User: hi",
		UserPrompt:        "How is my summary?",
	})
	require.NoError(t, err)
	assert.Equal(t, dto.StatusSuccess, res.Status)
	assert.Equal(t, "Tighten the summary.", res.Reply())

	prompt := llmFake.promptContaining("How is my summary?")
	assert.Contains(t, prompt, "##Chat history: User: hi")
	assert.Contains(t, prompt, "##Resume evaluation record: None")
}

func TestResumeServiceChatError(t *testing.T) {
	llmFake := &fakeLLM{answer: func(string) (string, error) { return "", errors.New("rate limited") }}
	svc, _, _, _ := newTestResumeService(t, llmFake)

	res, err := svc.Chat(context.Background(), &dto.ChatTurnRequest{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, dto.StatusError, res.Status)
	assert.Equal(t, "rate limited", res.Message)
}

var _ contract.TaskStateRepository = brokenStates{}
