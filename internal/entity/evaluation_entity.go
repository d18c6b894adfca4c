package entity

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation is the durable history record of one submission.
type Evaluation struct {
	Id          uuid.UUID
	TaskId      string
	FileName    string
	JobName     string
	Status      TaskStatus
	Error       string
	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	ElapsedMs   int64
}
