package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-optimizer/internal/dto"
)

var (
	ErrBusy       = errors.New("session is processing another request")
	ErrValidation = errors.New("invalid request")
	ErrNoTask     = errors.New("no task to retry")
)

type Mode string

const (
	ModeChat           Mode = "chat"
	ModeDocumentReview Mode = "document-review"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeChat, ModeDocumentReview:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrValidation, s)
}

// Message is one entry of the conversation log. Only progress entries are
// ever edited or removed.
type Message struct {
	ID            int64
	Content       string
	IsUser        bool
	Timestamp     time.Time
	Mode          Mode
	IsProgress    bool
	IsError       bool
	IsFinalResult bool
}

type ChangeKind int

const (
	MessageAppended ChangeKind = iota
	MessageUpdated
	MessageRemoved
)

type Change struct {
	Kind    ChangeKind
	Message Message
}

// Submission is one document evaluation request.
type Submission struct {
	FileName         string
	Document         []byte
	RoleTitle        string
	RoleDescription  string
	OrganizationInfo string
	UserNote         string
	// Prompt is the user's own text for the log. Defaults to UserNote, then
	// to a line naming the file.
	Prompt string
}

// Backend is the remote side of a session.
type Backend interface {
	SubmitJob(ctx context.Context, fileName string, document []byte, fields dto.SubmitEvaluationRequest) (*dto.SubmitEvaluationResponse, error)
	QueryJob(ctx context.Context, taskID string) (*dto.QueryResultResponse, error)
	SubmitTurn(ctx context.Context, req dto.ChatTurnRequest) (*dto.ChatTurnResponse, error)
}
