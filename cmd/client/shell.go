package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resume-optimizer/pkg/compactor"
	"resume-optimizer/pkg/session"
)

const helpText = `Commands:
  /review <file>        submit a resume for evaluation
  /mode chat|review     switch the conversation mode
  /cancel               stop waiting for the current evaluation
  /retry                resume waiting for the last evaluation
  /context              show what the assistant knows about your resume
  /reset                start a new conversation
  /quit                 leave
Anything else is sent as a chat message.`

// conversation is the part of the orchestrator the shell drives.
type conversation interface {
	SubmitEvaluation(ctx context.Context, sub session.Submission) error
	SendTurn(ctx context.Context, prompt string) (string, error)
	Cancel()
	Retry() error
	SwitchMode(m session.Mode) error
	Reset() error
	Context() compactor.Record
	Processing() bool
}

type shell struct {
	conv   conversation
	out    *renderer
	in     io.Reader
	limits compactor.Limits
}

func newShell(conv conversation, out *renderer, in io.Reader, limits compactor.Limits) *shell {
	return &shell{conv: conv, out: out, in: in, limits: limits}
}

func (s *shell) run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	s.out.notice("Type /help for commands.")
	for {
		select {
		case <-ctx.Done():
			s.conv.Cancel()
			return nil
		case line, ok := <-lines:
			if !ok {
				s.conv.Cancel()
				return nil
			}
			if quit := s.handle(ctx, strings.TrimSpace(line)); quit {
				s.conv.Cancel()
				return nil
			}
		}
	}
}

// handle executes one input line and reports whether the shell should exit.
func (s *shell) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		if _, err := s.conv.SendTurn(ctx, line); err != nil {
			s.report(err)
		}
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		s.out.plain(helpText)
	case "/cancel":
		s.conv.Cancel()
		s.out.notice("Stopped waiting. Use /retry to resume.")
	case "/retry":
		s.report(s.conv.Retry())
	case "/reset":
		if err := s.conv.Reset(); err != nil {
			s.report(err)
			return false
		}
		s.out.notice("New conversation started.")
	case "/mode":
		mode := session.Mode(arg)
		if arg == "review" {
			mode = session.ModeDocumentReview
		}
		if err := s.conv.SwitchMode(mode); err != nil {
			s.report(err)
			return false
		}
		s.out.notice("Mode: %s", mode)
	case "/context":
		s.out.plain(compactor.RenderContext(s.conv.Context(), s.limits))
	case "/review":
		s.review(ctx, arg)
	default:
		s.out.errorf("Unknown command %s. Type /help.", cmd)
	}
	return false
}

func (s *shell) review(ctx context.Context, path string) {
	if path == "" {
		s.out.errorf("Usage: /review <file>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.out.errorf("Cannot read %s: %v", path, err)
		return
	}
	s.report(s.conv.SubmitEvaluation(ctx, session.Submission{
		FileName: filepath.Base(path),
		Document: data,
	}))
}

func (s *shell) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, session.ErrBusy):
		s.out.errorf("Still working on the previous request. Use /cancel to stop waiting.")
	case errors.Is(err, session.ErrNoTask):
		s.out.errorf("There is no evaluation to retry.")
	case errors.Is(err, session.ErrValidation):
		s.out.errorf("%v", err)
	default:
		// Backend failures are already shown as conversation messages.
	}
}
