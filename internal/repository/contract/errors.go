package contract

import "errors"

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrQueueClosed  = errors.New("task queue closed")
)
