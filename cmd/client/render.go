package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"resume-optimizer/pkg/session"

	"github.com/fatih/color"
)

// renderer prints conversation changes as they happen. Progress updates are
// printed as they arrive; removals are silent.
type renderer struct {
	mu  sync.Mutex
	out io.Writer

	user     *color.Color
	reply    *color.Color
	final    *color.Color
	progress *color.Color
	failure  *color.Color
	info     *color.Color
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{
		out:      out,
		user:     color.New(color.FgCyan, color.Bold),
		reply:    color.New(color.FgWhite),
		final:    color.New(color.FgGreen),
		progress: color.New(color.FgYellow),
		failure:  color.New(color.FgRed),
		info:     color.New(color.FgMagenta),
	}
}

func (r *renderer) render(ch session.Change) {
	if ch.Kind == session.MessageRemoved {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m := ch.Message
	switch {
	case m.IsUser:
		r.user.Fprintf(r.out, "You [%s]: %s\n", m.Mode, m.Content)
	case m.IsProgress:
		r.progress.Fprintf(r.out, "… %s\n", m.Content)
	case m.IsError:
		r.failure.Fprintf(r.out, "%s\n", m.Content)
	case m.IsFinalResult:
		r.final.Fprintf(r.out, "\n=== Evaluation ===\n%s\n==================\n\n", strings.TrimSpace(m.Content))
	default:
		r.reply.Fprintf(r.out, "Assistant: %s\n", m.Content)
	}
}

func (r *renderer) notice(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info.Fprintf(r.out, format+"\n", args...)
}

func (r *renderer) errorf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure.Fprintf(r.out, format+"\n", args...)
}

func (r *renderer) plain(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, text)
}
