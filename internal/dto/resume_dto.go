package dto

// Task status vocabulary returned by the result endpoint. Anything outside
// these three is a terminal failure.
const (
	StatusSuccess    = "success"
	StatusProcessing = "processing"
	StatusNotFound   = "not_found"
	StatusError      = "error"
	StatusFailed     = "failed"
)

// SubmitEvaluationRequest carries the form fields of a resume upload. The
// document itself travels as the multipart "file" part.
type SubmitEvaluationRequest struct {
	JobName        string `form:"job_name" json:"job_name" validate:"max=200"`
	JobDescription string `form:"job_description" json:"job_description" validate:"max=20000"`
	MoreInfo       string `form:"more_info" json:"more_info" validate:"max=20000"`
	UserRequest    string `form:"user_request" json:"user_request" validate:"max=4000"`
}

type SubmitEvaluationResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"` // task id on success, human text otherwise
}

type QueryResultRequest struct {
	TaskId string `form:"task_id" json:"task_id"`
}

type QueryResultResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message,omitempty"`
	OptimizedContent string `json:"optimized_content,omitempty"`
	TaskId           string `json:"task_id,omitempty"`
}

// Payload is the hybrid content of a successful result.
func (r *QueryResultResponse) Payload() string {
	if r.Message != "" {
		return r.Message
	}
	return r.OptimizedContent
}

type ChatTurnRequest struct {
	HistoryChatRecord string `form:"history_chat_record" json:"history_chat_record" validate:"max=20000"`
	UserPrompt        string `form:"user_prompt" json:"user_prompt" validate:"required,max=4000"`
	ResOptRecord      string `form:"res_opt_record" json:"res_opt_record" validate:"max=20000"`
}

type ChatTurnResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Content string `json:"content,omitempty"`
}

// Reply returns the effective reply text, or "" when the backend sent none.
func (r *ChatTurnResponse) Reply() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Content
}

type EvaluationHistoryResponse struct {
	TaskId      string  `json:"task_id"`
	FileName    string  `json:"file_name"`
	JobName     string  `json:"job_name"`
	Status      string  `json:"status"`
	Error       string  `json:"error,omitempty"`
	SubmittedAt string  `json:"submitted_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
}
