// Package client calls the resume optimization HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resume-optimizer/internal/dto"
	"resume-optimizer/pkg/session"
)

const (
	submitPath = "/resume_optimization"
	resultPath = "/get_resume_optimization_result"
	chatPath   = "/resume_optimization_chat"
)

// StatusError reports a non-2xx answer.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

var _ session.Backend = (*Client)(nil)

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) SubmitJob(ctx context.Context, fileName string, document []byte, fields dto.SubmitEvaluationRequest) (*dto.SubmitEvaluationResponse, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(document); err != nil {
		return nil, fmt.Errorf("write file part: %w", err)
	}
	for name, value := range map[string]string{
		"job_name":        fields.JobName,
		"job_description": fields.JobDescription,
		"more_info":       fields.MoreInfo,
		"user_request":    fields.UserRequest,
	} {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var out dto.SubmitEvaluationResponse
	if err := c.post(ctx, submitPath, w.FormDataContentType(), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) QueryJob(ctx context.Context, taskID string) (*dto.QueryResultResponse, error) {
	var out dto.QueryResultResponse
	if err := c.postForm(ctx, resultPath, url.Values{"task_id": {taskID}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitTurn(ctx context.Context, req dto.ChatTurnRequest) (*dto.ChatTurnResponse, error) {
	var out dto.ChatTurnResponse
	err := c.postForm(ctx, chatPath, url.Values{
		"history_chat_record": {req.HistoryChatRecord},
		"user_prompt":         {req.UserPrompt},
		"res_opt_record":      {req.ResOptRecord},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Status == dto.StatusError {
		msg := out.Message
		if msg == "" {
			msg = "chat failed"
		}
		return nil, errors.New(msg)
	}
	return &out, nil
}

func (c *Client) postForm(ctx context.Context, path string, values url.Values, out interface{}) error {
	return c.post(ctx, path, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()), out)
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage pulls a human message out of an error body, which is either
// {"message": ...} or {"detail": ...}.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Detail != "" {
			return body.Detail
		}
	}
	return strings.TrimSpace(string(raw))
}
