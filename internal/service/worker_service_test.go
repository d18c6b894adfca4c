package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"resume-optimizer/internal/constant"
	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/internal/repository/memory"
	"resume-optimizer/pkg/hybrid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipelineLLM answers each pipeline stage by recognising its prompt.
func pipelineLLM(fail string) *fakeLLM {
	return &fakeLLM{answer: func(prompt string) (string, error) {
		switch {
		case strings.HasPrefix(prompt, "Clean the resume"):
			if fail == "clean" {
				return "", errors.New("clean timeout")
			}
			return "Zhang * | Go developer | 5 years", nil
		case strings.HasPrefix(prompt, "List the core skills"):
			if fail == "role" {
				return "", errors.New("role timeout")
			}
			return "- distributed systems", nil
		case strings.HasPrefix(prompt, "Extract short key statements"):
			if fail == "keywords" {
				return "", errors.New("keyword timeout")
			}
			return "backend role<#> Go practice <#><#>", nil
		case strings.HasPrefix(prompt, "Score and optimize"):
			if fail == "evaluate" {
				return "", errors.New("evaluate timeout")
			}
			return "Score: 82/100", nil
		}
		return "", errors.New("unexpected prompt")
	}}
}

func newTestWorker(t *testing.T, llmFake *fakeLLM) (*workerService, *memory.TaskStateRepository, *fakeEvents) {
	t.Helper()
	queue, err := memory.NewChannelTaskQueue(8)
	require.NoError(t, err)
	t.Cleanup(func() { queue.Close() })

	states := memory.NewTaskStateRepository(time.Hour)
	ev := &fakeEvents{}
	w := NewWorkerService(queue, states, llmFake, ev, logger.NewNopLogger()).(*workerService)
	return w, states, ev
}

func testTask() *entity.Task {
	return &entity.Task{
		ID:             "T1",
		DocumentText:   "Zhang San, 138-0000-0000, Go developer",
		JobName:        "Backend Engineer",
		JobDescription: "Build services",
		UserRequest:    "Focus on impact",
	}
}

func TestWorkerProcessSuccess(t *testing.T) {
	llmFake := pipelineLLM("")
	w, states, ev := newTestWorker(t, llmFake)

	require.NoError(t, w.Process(context.Background(), testTask()))

	state, err := states.Get(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskCompleted, state.Status)
	assert.Equal(t, hybrid.Join("Score: 82/100", "Zhang * | Go developer | 5 years"), state.Result)

	reply, doc := hybrid.Split(state.Result)
	assert.Equal(t, "Score: 82/100", reply)
	assert.Equal(t, "Zhang * | Go developer | 5 years", doc)

	final := llmFake.promptContaining("Score and optimize")
	assert.Contains(t, final, "##Resume: Zhang * | Go developer | 5 years")
	assert.Contains(t, final, "##Key statements: backend role; Go practice")
	assert.Contains(t, final, "##Role expectations: - distributed systems")
	assert.Contains(t, final, "##User's note: Focus on impact")
	assert.Contains(t, final, "##Organization and other information: None")

	assert.Equal(t, []string{"started", "completed"}, ev.kinds())
}

func TestWorkerProcessDegradesOptionalStages(t *testing.T) {
	for _, stage := range []string{"role", "keywords"} {
		t.Run(stage, func(t *testing.T) {
			llmFake := pipelineLLM(stage)
			w, states, _ := newTestWorker(t, llmFake)

			require.NoError(t, w.Process(context.Background(), testTask()))

			state, err := states.Get(context.Background(), "T1")
			require.NoError(t, err)
			assert.Equal(t, entity.TaskCompleted, state.Status)

			final := llmFake.promptContaining("Score and optimize")
			if stage == "keywords" {
				assert.Contains(t, final, strings.Join(constant.ResumeKeywordDirections, "; "))
			} else {
				assert.Contains(t, final, "##Role expectations: None")
			}
		})
	}
}

func TestWorkerProcessFailure(t *testing.T) {
	for _, stage := range []string{"clean", "evaluate"} {
		t.Run(stage, func(t *testing.T) {
			w, states, ev := newTestWorker(t, pipelineLLM(stage))

			err := w.Process(context.Background(), testTask())
			require.Error(t, err)

			state, getErr := states.Get(context.Background(), "T1")
			require.NoError(t, getErr)
			assert.Equal(t, entity.TaskFailed, state.Status)
			assert.Contains(t, state.Error, stage+" timeout")
			assert.Empty(t, state.Result)
			assert.Equal(t, []string{"started", "failed"}, ev.kinds())
		})
	}
}

func TestWorkerRunDrainsQueue(t *testing.T) {
	queue, err := memory.NewChannelTaskQueue(8)
	require.NoError(t, err)
	defer queue.Close()

	states := memory.NewTaskStateRepository(time.Hour)
	w := NewWorkerService(queue, states, pipelineLLM(""), &fakeEvents{}, logger.NewNopLogger()).(*workerService)
	w.popTimeout = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, 2) }()

	for _, id := range []string{"A", "B", "C"} {
		task := testTask()
		task.ID = id
		require.NoError(t, queue.Push(ctx, task))
	}

	assert.Eventually(t, func() bool {
		for _, id := range []string{"A", "B", "C"} {
			s, err := states.Get(context.Background(), id)
			if err != nil || s.Status != entity.TaskCompleted {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}
}

// flakyQueue fails the first pops and then reports the queue closed.
type flakyQueue struct {
	*memory.ChannelTaskQueue
	pops atomic.Int32
}

func (q *flakyQueue) Pop(ctx context.Context, timeout time.Duration) (*entity.Task, error) {
	if q.pops.Add(1) <= 2 {
		return nil, errors.New("redis: connection reset")
	}
	q.ChannelTaskQueue.Close()
	return q.ChannelTaskQueue.Pop(ctx, timeout)
}

func TestWorkerRunBacksOffOnQueueErrors(t *testing.T) {
	inner, err := memory.NewChannelTaskQueue(1)
	require.NoError(t, err)
	queue := &flakyQueue{ChannelTaskQueue: inner}

	w := NewWorkerService(queue, memory.NewTaskStateRepository(time.Hour), pipelineLLM(""), &fakeEvents{}, logger.NewNopLogger()).(*workerService)
	w.errorBackoff = 10 * time.Millisecond

	start := time.Now()
	require.NoError(t, w.Run(context.Background(), 1))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.EqualValues(t, 3, queue.pops.Load())
}

// cancelAwareStates rejects writes on a finished context, as a network
// store does.
type cancelAwareStates struct {
	*memory.TaskStateRepository
}

func (s cancelAwareStates) Save(ctx context.Context, state *entity.TaskState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.TaskStateRepository.Save(ctx, state)
}

func TestWorkerProcessShutdownMidPipelineFailsTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	llmFake := &fakeLLM{answer: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Clean the resume") {
			cancel()
			return "", context.Canceled
		}
		return "- distributed systems", nil
	}}

	queue, err := memory.NewChannelTaskQueue(1)
	require.NoError(t, err)
	defer queue.Close()
	states := cancelAwareStates{memory.NewTaskStateRepository(time.Hour)}
	ev := &fakeEvents{}
	w := NewWorkerService(queue, states, llmFake, ev, logger.NewNopLogger())

	require.Error(t, w.Process(ctx, testTask()))

	state, err := states.Get(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskFailed, state.Status)
	assert.Contains(t, state.Error, shutdownReason)
	assert.Equal(t, []string{"started", "failed"}, ev.kinds())
}
