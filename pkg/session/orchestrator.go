// Package session coordinates a conversation with the evaluation backend:
// document submissions tracked by a poller, and chat turns carrying a
// bounded summary of everything learned so far.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"resume-optimizer/internal/dto"
	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/pkg/clock"
	"resume-optimizer/pkg/compactor"
	"resume-optimizer/pkg/poller"
)

const logModule = "SESSION"

const (
	UnavailableText  = "Sorry, the service is temporarily unavailable: %s"
	PlaceholderReply = "Request received, processing..."
	SubmitFailedText = "task submission failed"
	DefaultPrompt    = "Please evaluate my resume (%s)"
)

type Config struct {
	Schedule poller.Schedule
	Limits   compactor.Limits
	// Notify, when set, observes every log mutation. It is called without
	// the orchestrator lock held.
	Notify func(Change)
}

// Orchestrator owns the message log, the context record and the poller.
// All methods are safe for concurrent use.
type Orchestrator struct {
	mu       sync.Mutex
	backend  Backend
	clock    clock.Clock
	poller   *poller.Poller
	limits   compactor.Limits
	validate *validator.Validate
	notify   func(Change)
	logger   logger.ILogger

	mode       Mode
	messages   []Message
	record     compactor.Record
	nextID     int64
	processing bool
	idle       chan struct{}

	activeTask string
	activeGen  uint64
	lastTaskID string
	progressID int64

	pending []Change
}

func New(backend Backend, clk clock.Clock, cfg Config, log logger.ILogger) *Orchestrator {
	idle := make(chan struct{})
	close(idle)

	o := &Orchestrator{
		backend:  backend,
		clock:    clk,
		limits:   cfg.Limits,
		validate: validator.New(),
		notify:   cfg.Notify,
		logger:   log,
		mode:     ModeChat,
		idle:     idle,
	}
	o.poller = poller.New(backend, o, clk, cfg.Schedule, log)
	return o
}

// SubmitEvaluation sends a document for evaluation and starts tracking the
// resulting task. It returns once the backend has accepted or rejected the
// submission; the outcome of the task arrives later through the log.
func (o *Orchestrator) SubmitEvaluation(ctx context.Context, sub Submission) error {
	fields := dto.SubmitEvaluationRequest{
		JobName:        sub.RoleTitle,
		JobDescription: sub.RoleDescription,
		MoreInfo:       sub.OrganizationInfo,
		UserRequest:    sub.UserNote,
	}
	prompt := strings.TrimSpace(sub.Prompt)
	if prompt == "" {
		prompt = strings.TrimSpace(sub.UserNote)
	}
	if prompt == "" {
		prompt = fmt.Sprintf(DefaultPrompt, sub.FileName)
	}
	if fields.UserRequest == "" {
		fields.UserRequest = prompt
	}

	if len(sub.Document) == 0 {
		return fmt.Errorf("%w: document is required", ErrValidation)
	}
	if err := o.validate.Struct(fields); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return ErrBusy
	}
	o.appendLocked(Message{Content: prompt, IsUser: true, Mode: ModeDocumentReview})
	o.record = compactor.Merge(o.record, compactor.Patch{
		RoleTitle:        compactor.String(fields.JobName),
		RoleDescription:  compactor.String(fields.JobDescription),
		OrganizationInfo: compactor.String(fields.MoreInfo),
		UserNote:         compactor.String(fields.UserRequest),
	}, o.clock.Now())
	o.setProcessingLocked(true)
	o.mu.Unlock()
	o.flush()

	res, err := o.backend.SubmitJob(ctx, sub.FileName, sub.Document, fields)
	if err == nil && (res == nil || res.Status != dto.StatusSuccess || res.Message == "") {
		msg := SubmitFailedText
		if res != nil && res.Message != "" {
			msg = res.Message
		}
		err = fmt.Errorf("%s", msg)
	}

	o.mu.Lock()
	if err != nil {
		o.setProcessingLocked(false)
		o.appendLocked(Message{Content: fmt.Sprintf(UnavailableText, err.Error()), Mode: ModeDocumentReview, IsError: true})
		o.mu.Unlock()
		o.flush()
		o.logger.Error(logModule, "Submission failed", map[string]interface{}{"file": sub.FileName, "error": err.Error()})
		return fmt.Errorf("submit evaluation: %w", err)
	}

	taskID := res.Message
	o.lastTaskID = taskID
	o.startPollingLocked(taskID)
	o.mu.Unlock()
	o.flush()

	o.logger.Info(logModule, "Submission accepted", map[string]interface{}{"file": sub.FileName, "task_id": taskID})
	return nil
}

// SendTurn sends one conversational turn and returns the reply that was
// appended to the log.
func (o *Orchestrator) SendTurn(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt is empty", ErrValidation)
	}

	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return "", ErrBusy
	}
	mode := o.mode
	req := dto.ChatTurnRequest{
		HistoryChatRecord: compactor.RenderHistory(o.historyLocked(), o.limits.HistoryBudget),
		UserPrompt:        prompt,
		ResOptRecord:      compactor.RenderContext(o.record, o.limits),
	}
	o.appendLocked(Message{Content: prompt, IsUser: true, Mode: mode})
	o.setProcessingLocked(true)
	o.mu.Unlock()
	o.flush()

	o.logger.Debug(logModule, "Sending turn", map[string]interface{}{
		"history_size": compactor.Len(req.HistoryChatRecord),
		"context_size": compactor.Len(req.ResOptRecord),
	})

	res, err := o.backend.SubmitTurn(ctx, req)

	o.mu.Lock()
	o.setProcessingLocked(false)
	if err != nil {
		o.appendLocked(Message{Content: fmt.Sprintf(UnavailableText, err.Error()), Mode: mode, IsError: true})
		o.mu.Unlock()
		o.flush()
		o.logger.Error(logModule, "Turn failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("send turn: %w", err)
	}

	reply := ""
	if res != nil {
		reply = res.Reply()
	}
	if reply == "" {
		reply = PlaceholderReply
	}
	o.appendLocked(Message{Content: reply, Mode: mode})
	o.mu.Unlock()
	o.flush()

	return reply, nil
}

// Cancel stops tracking the active task. The task id is kept so Retry can
// resume it.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	if o.activeTask == "" {
		o.mu.Unlock()
		return
	}
	taskID := o.activeTask
	o.activeTask = ""
	o.activeGen = 0
	o.poller.Cancel()
	o.removeProgressLocked()
	o.setProcessingLocked(false)
	o.mu.Unlock()
	o.flush()

	o.logger.Info(logModule, "Task tracking cancelled", map[string]interface{}{"task_id": taskID})
}

// Retry starts tracking the last submitted task again from a fresh schedule.
func (o *Orchestrator) Retry() error {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return ErrBusy
	}
	if o.lastTaskID == "" {
		o.mu.Unlock()
		return ErrNoTask
	}
	taskID := o.lastTaskID
	o.startPollingLocked(taskID)
	o.mu.Unlock()
	o.flush()

	o.logger.Info(logModule, "Task tracking restarted", map[string]interface{}{"task_id": taskID})
	return nil
}

// SwitchMode changes the mode of subsequent messages and forgets the last
// task.
func (o *Orchestrator) SwitchMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.processing {
		return ErrBusy
	}
	o.mode = m
	o.poller.Cancel()
	o.lastTaskID = ""
	return nil
}

// Reset clears the log and the context record.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.processing {
		return ErrBusy
	}
	o.poller.Cancel()
	o.messages = nil
	o.record = compactor.Record{}
	o.lastTaskID = ""
	o.progressID = 0
	o.logger.Info(logModule, "Session reset", nil)
	return nil
}

// OnPollEvent applies a poller outcome to the log. Events from any handle
// other than the active one are dropped, even for the same task id.
func (o *Orchestrator) OnPollEvent(ev poller.Event) {
	o.mu.Lock()
	if o.activeTask == "" || ev.TaskID != o.activeTask || ev.Generation != o.activeGen {
		o.mu.Unlock()
		o.logger.Debug(logModule, "Dropped stale poll event", map[string]interface{}{
			"task_id":    ev.TaskID,
			"generation": ev.Generation,
		})
		return
	}

	switch ev.Kind {
	case poller.EventProgress, poller.EventRetrying:
		o.updateProgressLocked(ev.Text)

	case poller.EventSucceeded:
		o.removeProgressLocked()
		if ev.Document != "" {
			o.record = compactor.Merge(o.record, compactor.Patch{DocumentText: compactor.String(ev.Document)}, o.clock.Now())
		}
		o.appendLocked(Message{Content: ev.Reply, Mode: ModeDocumentReview, IsFinalResult: true})
		o.finishTaskLocked()

	case poller.EventNotFound, poller.EventFailed:
		o.removeProgressLocked()
		o.appendLocked(Message{Content: ev.Text, Mode: ModeDocumentReview, IsError: true})
		o.finishTaskLocked()
	}
	o.mu.Unlock()
	o.flush()
}

// WaitIdle blocks until nothing is being processed or ctx is done.
func (o *Orchestrator) WaitIdle(ctx context.Context) error {
	o.mu.Lock()
	idle := o.idle
	o.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.messages...)
}

// Visible returns the messages of the current mode.
func (o *Orchestrator) Visible() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []Message
	for _, m := range o.messages {
		if m.Mode == o.mode {
			out = append(out, m)
		}
	}
	return out
}

func (o *Orchestrator) Context() compactor.Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.record
}

func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}

func (o *Orchestrator) Mode() Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mode
}

// ActiveTask returns the id of the task being tracked, or "".
func (o *Orchestrator) ActiveTask() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeTask
}

// CanRetry reports whether Retry would start tracking a task.
func (o *Orchestrator) CanRetry() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastTaskID != "" && !o.processing
}

// Poller exposes the underlying poller for inspection.
func (o *Orchestrator) Poller() *poller.Poller {
	return o.poller
}

func (o *Orchestrator) startPollingLocked(taskID string) {
	o.removeProgressLocked()
	o.activeTask = taskID
	o.setProcessingLocked(true)
	o.progressID = o.appendLocked(Message{Content: poller.ProcessingText, Mode: ModeDocumentReview, IsProgress: true})
	o.activeGen = o.poller.Start(taskID)
}

func (o *Orchestrator) finishTaskLocked() {
	o.activeTask = ""
	o.activeGen = 0
	o.lastTaskID = ""
	o.setProcessingLocked(false)
}

// historyLocked returns the chat-mode conversation, progress entries
// excluded.
func (o *Orchestrator) historyLocked() []compactor.HistoryEntry {
	var entries []compactor.HistoryEntry
	for _, m := range o.messages {
		if m.Mode != ModeChat || m.IsProgress {
			continue
		}
		entries = append(entries, compactor.HistoryEntry{Content: m.Content, IsUser: m.IsUser})
	}
	return entries
}

func (o *Orchestrator) appendLocked(m Message) int64 {
	o.nextID++
	m.ID = o.nextID
	m.Timestamp = o.clock.Now()
	o.messages = append(o.messages, m)
	o.pending = append(o.pending, Change{Kind: MessageAppended, Message: m})
	return m.ID
}

func (o *Orchestrator) updateProgressLocked(text string) {
	for i := range o.messages {
		if o.messages[i].ID == o.progressID && o.messages[i].IsProgress {
			if o.messages[i].Content == text {
				return
			}
			o.messages[i].Content = text
			o.pending = append(o.pending, Change{Kind: MessageUpdated, Message: o.messages[i]})
			return
		}
	}
}

func (o *Orchestrator) removeProgressLocked() {
	if o.progressID == 0 {
		return
	}
	for i, m := range o.messages {
		if m.ID == o.progressID && m.IsProgress {
			o.messages = append(o.messages[:i], o.messages[i+1:]...)
			o.pending = append(o.pending, Change{Kind: MessageRemoved, Message: m})
			break
		}
	}
	o.progressID = 0
}

func (o *Orchestrator) setProcessingLocked(v bool) {
	if o.processing == v {
		return
	}
	o.processing = v
	if v {
		o.idle = make(chan struct{})
	} else {
		close(o.idle)
	}
}

// flush delivers queued changes outside the lock.
func (o *Orchestrator) flush() {
	o.mu.Lock()
	changes := o.pending
	o.pending = nil
	o.mu.Unlock()

	if o.notify == nil {
		return
	}
	for _, c := range changes {
		o.notify(c)
	}
}
