package entity

import "time"

type TaskStatus string

const (
	TaskQueued    TaskStatus = "queued"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Terminal reports whether no further transition can happen.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task is the unit of work carried by the queue.
type Task struct {
	ID             string    `json:"task_id"`
	FileName       string    `json:"file_name"`
	DocumentText   string    `json:"document_text"`
	JobName        string    `json:"job_name"`
	JobDescription string    `json:"job_description"`
	MoreInfo       string    `json:"more_info"`
	UserRequest    string    `json:"user_request"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// TaskState is the stored progress of a task. Result holds the hybrid
// payload once Status is TaskCompleted.
type TaskState struct {
	TaskID    string     `json:"task_id"`
	Status    TaskStatus `json:"status"`
	Result    string     `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}
