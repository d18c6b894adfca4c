// Package poller tracks one backend task at a time until it reaches a
// terminal status, widening the query interval while the task stays busy.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-optimizer/internal/dto"
	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/pkg/clock"
	"resume-optimizer/pkg/hybrid"
)

const logModule = "POLLER"

// Display texts carried by events.
const (
	ProcessingText = "Your resume is being processed, please wait..."
	RetryingText   = "Failed to reach the server, retrying... (%d attempts)"
	NotFoundText   = "Task processing failed or the task ID is invalid"
	FailedText     = "Processing failed: %s"
	UnknownError   = "unknown error"
	TimedOutText   = "Resume processing timed out, please try again later"
)

var errEmptyResponse = errors.New("empty response from result endpoint")

type State int

const (
	StateIdle State = iota
	StateScheduled
	StatePolling
	StateSucceeded
	StateNotFound
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StatePolling:
		return "polling"
	case StateSucceeded:
		return "succeeded"
	case StateNotFound:
		return "not_found"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Querier fetches the current status of a task.
type Querier interface {
	QueryJob(ctx context.Context, taskID string) (*dto.QueryResultResponse, error)
}

type EventKind int

const (
	// EventProgress: the task is still running. Text replaces the
	// progress message.
	EventProgress EventKind = iota
	// EventRetrying: the query itself failed. Text replaces the progress
	// message; polling continues.
	EventRetrying
	// EventSucceeded carries the split result in Reply and Document.
	EventSucceeded
	// EventNotFound and EventFailed carry the error text in Text.
	EventNotFound
	EventFailed
)

// Terminal reports whether the event ends the task.
func (k EventKind) Terminal() bool {
	return k == EventSucceeded || k == EventNotFound || k == EventFailed
}

// Event is one poll outcome. Generation identifies the handle that
// produced it; a retry of the same task gets a new generation.
type Event struct {
	Kind       EventKind
	TaskID     string
	Generation uint64
	Text       string
	Reply      string
	Document   string
	Attempt    int
}

// Listener receives poll outcomes. Events are delivered outside the
// poller's lock, so a listener may call back into the Poller.
type Listener interface {
	OnPollEvent(ev Event)
}

type ListenerFunc func(ev Event)

func (f ListenerFunc) OnPollEvent(ev Event) { f(ev) }

// Handle is a snapshot of the task being polled.
type Handle struct {
	ID              string
	Generation      uint64
	StartedAt       time.Time
	PollCount       int
	Failures        int
	CurrentInterval time.Duration
}

type handle struct {
	Handle

	attempts int
	ctx      context.Context
	cancel   context.CancelFunc
	delay    clock.Timer
	ticker   clock.Timer
	inFlight bool
}

// Poller owns at most one handle and at most one live timer at a time.
type Poller struct {
	mu       sync.Mutex
	clock    clock.Clock
	querier  Querier
	listener Listener
	schedule Schedule
	logger   logger.ILogger

	state      State
	active     *handle
	generation uint64
}

func New(q Querier, l Listener, clk clock.Clock, s Schedule, log logger.ILogger) *Poller {
	if l == nil {
		l = ListenerFunc(func(Event) {})
	}
	return &Poller{
		clock:    clk,
		querier:  q,
		listener: l,
		schedule: s.normalize(),
		logger:   log,
	}
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Handle returns the active handle, if any.
func (p *Poller) Handle() (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return Handle{}, false
	}
	return p.active.Handle, true
}

// Start begins polling taskID after the initial delay and returns the
// generation its events will carry. Any task already being polled is
// dropped first.
func (p *Poller) Start(taskID string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev := p.active; prev != nil {
		p.active = nil
		p.stopTimersLocked(prev)
		prev.cancel()
		p.logger.Info(logModule, "Replaced active task", map[string]interface{}{"previous": prev.ID, "task_id": taskID})
	}

	p.generation++
	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{
		Handle: Handle{
			ID:              taskID,
			Generation:      p.generation,
			StartedAt:       p.clock.Now(),
			CurrentInterval: p.schedule.Interval,
		},
		ctx:    ctx,
		cancel: cancel,
	}
	p.active = h
	p.state = StateScheduled
	h.delay = p.clock.AfterFunc(p.schedule.InitialDelay, func() { p.fireInitial(h) })

	p.logger.Info(logModule, "Task polling scheduled", map[string]interface{}{
		"task_id":       taskID,
		"initial_delay": p.schedule.InitialDelay.String(),
		"generation":    h.Generation,
	})
	return h.Generation
}

// Cancel stops polling. It is a no-op when nothing is being polled. A query
// already in flight is abandoned and its answer discarded.
func (p *Poller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := p.active
	if h == nil {
		return
	}
	p.active = nil
	p.stopTimersLocked(h)
	h.cancel()
	p.state = StateCancelled
	p.logger.Info(logModule, "Task polling cancelled", map[string]interface{}{"task_id": h.ID, "poll_count": h.PollCount})
}

// Retry restarts polling for taskID from a fresh handle.
func (p *Poller) Retry(taskID string) uint64 {
	p.Cancel()
	return p.Start(taskID)
}

func (p *Poller) fireInitial(h *handle) {
	p.mu.Lock()
	if p.active != h {
		p.mu.Unlock()
		return
	}
	h.delay = nil
	p.state = StatePolling
	p.mu.Unlock()

	p.poll(h)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == h && h.ticker == nil {
		p.armLocked(h)
	}
}

func (p *Poller) poll(h *handle) {
	p.mu.Lock()
	if p.active != h || h.inFlight {
		p.mu.Unlock()
		return
	}
	if reason := p.expiredLocked(h); reason != "" {
		p.finishLocked(h, StateFailed)
		p.mu.Unlock()
		p.logger.Warn(logModule, "Task polling gave up", map[string]interface{}{"task_id": h.ID, "reason": reason})
		p.listener.OnPollEvent(Event{Kind: EventFailed, TaskID: h.ID, Generation: h.Generation, Text: TimedOutText})
		return
	}
	h.inFlight = true
	h.attempts++
	ctx, id := h.ctx, h.ID
	p.mu.Unlock()

	res, err := p.querier.QueryJob(ctx, id)
	if err == nil && res == nil {
		err = errEmptyResponse
	}

	p.mu.Lock()
	h.inFlight = false
	if p.active != h {
		p.mu.Unlock()
		p.logger.Debug(logModule, "Discarded response for inactive task", map[string]interface{}{"task_id": id})
		return
	}
	ev := p.applyLocked(h, res, err)
	p.mu.Unlock()

	p.listener.OnPollEvent(ev)
}

// applyLocked interprets one query outcome. Caller holds mu.
func (p *Poller) applyLocked(h *handle, res *dto.QueryResultResponse, err error) Event {
	if err != nil {
		h.Failures++
		p.logger.Warn(logModule, "Task query failed", map[string]interface{}{
			"task_id":  h.ID,
			"failures": h.Failures,
			"error":    err.Error(),
		})
		if h.Failures > p.schedule.FailureThreshold {
			p.backoffLocked(h)
		}
		return Event{Kind: EventRetrying, TaskID: h.ID, Generation: h.Generation, Text: fmt.Sprintf(RetryingText, h.Failures), Attempt: h.Failures}
	}
	h.Failures = 0

	switch res.Status {
	case dto.StatusSuccess:
		reply, document := hybrid.Split(res.Payload())
		p.finishLocked(h, StateSucceeded)
		p.logger.Info(logModule, "Task completed", map[string]interface{}{
			"task_id":       h.ID,
			"poll_count":    h.PollCount,
			"document_size": len(document),
		})
		return Event{Kind: EventSucceeded, TaskID: h.ID, Generation: h.Generation, Reply: reply, Document: document}

	case dto.StatusProcessing:
		h.PollCount++
		if h.PollCount > p.schedule.ProcessingThreshold {
			p.backoffLocked(h)
		}
		return Event{Kind: EventProgress, TaskID: h.ID, Generation: h.Generation, Text: ProcessingText, Attempt: h.PollCount}

	case dto.StatusNotFound:
		p.finishLocked(h, StateNotFound)
		p.logger.Warn(logModule, "Task not found", map[string]interface{}{"task_id": h.ID})
		return Event{Kind: EventNotFound, TaskID: h.ID, Generation: h.Generation, Text: NotFoundText}

	default:
		msg := res.Message
		if msg == "" {
			msg = UnknownError
		}
		p.finishLocked(h, StateFailed)
		p.logger.Error(logModule, "Task failed", map[string]interface{}{"task_id": h.ID, "status": res.Status, "message": msg})
		return Event{Kind: EventFailed, TaskID: h.ID, Generation: h.Generation, Text: fmt.Sprintf(FailedText, msg)}
	}
}

// backoffLocked widens the interval and replaces the repeating timer.
func (p *Poller) backoffLocked(h *handle) {
	next := p.schedule.next(h.CurrentInterval)
	if next == h.CurrentInterval {
		return
	}
	h.CurrentInterval = next
	p.stopTimersLocked(h)
	p.armLocked(h)
	p.logger.Info(logModule, "Poll interval widened", map[string]interface{}{
		"task_id":  h.ID,
		"interval": next.String(),
	})
}

func (p *Poller) armLocked(h *handle) {
	h.ticker = p.clock.Every(h.CurrentInterval, func() { p.poll(h) })
}

func (p *Poller) stopTimersLocked(h *handle) {
	if h.delay != nil {
		h.delay.Stop()
		h.delay = nil
	}
	if h.ticker != nil {
		h.ticker.Stop()
		h.ticker = nil
	}
}

func (p *Poller) finishLocked(h *handle, s State) {
	p.stopTimersLocked(h)
	h.cancel()
	p.active = nil
	p.state = s
}

func (p *Poller) expiredLocked(h *handle) string {
	if p.schedule.MaxAttempts > 0 && h.attempts >= p.schedule.MaxAttempts {
		return "max attempts reached"
	}
	if p.schedule.MaxDuration > 0 && p.clock.Now().Sub(h.StartedAt) > p.schedule.MaxDuration {
		return "max duration exceeded"
	}
	return ""
}
