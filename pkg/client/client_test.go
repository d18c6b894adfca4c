package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resume-optimizer/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, submitPath, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cv.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))
		assert.Equal(t, "SRE", r.FormValue("job_name"))
		assert.Equal(t, "be brief", r.FormValue("user_request"))

		_ = json.NewEncoder(w).Encode(dto.SubmitEvaluationResponse{Status: "success", Message: "T1"})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	res, err := c.SubmitJob(context.Background(), "cv.pdf", []byte("%PDF-1.4"), dto.SubmitEvaluationRequest{
		JobName:     "SRE",
		UserRequest: "be brief",
	})
	require.NoError(t, err)
	assert.Equal(t, "T1", res.Message)
}

func TestQueryJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, resultPath, r.URL.Path)
		assert.Equal(t, "T1", r.FormValue("task_id"))
		_, _ = w.Write([]byte(`{"status":"success","message":"reply###$$$简历文本$$$###：doc","task_id":"T1"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, time.Second).QueryJob(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, dto.StatusSuccess, res.Status)
	assert.Equal(t, "reply###$$$简历文本$$$###：doc", res.Payload())
}

func TestSubmitTurn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, chatPath, r.URL.Path)
		assert.Equal(t, "User: hi", r.FormValue("history_chat_record"))
		if r.FormValue("user_prompt") == "fail" {
			_, _ = w.Write([]byte(`{"status":"error","message":"model overloaded"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","message":"hello"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	res, err := c.SubmitTurn(context.Background(), dto.ChatTurnRequest{HistoryChatRecord: "User: hi", UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Reply())

	_, err = c.SubmitTurn(context.Background(), dto.ChatTurnRequest{HistoryChatRecord: "User: hi", UserPrompt: "fail"})
	assert.EqualError(t, err, "model overloaded")
}

func TestStatusErrors(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"fiber":  {`{"status":"error","code":400,"message":"file is required"}`, "server returned 400: file is required"},
		"detail": {`{"detail":"cannot parse pdf"}`, "server returned 400: cannot parse pdf"},
		"plain":  {"bad request\n", "server returned 400: bad request"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, time.Second).QueryJob(context.Background(), "T1")
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, 400, se.Code)
			assert.EqualError(t, err, tc.want)
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL, time.Second).QueryJob(context.Background(), "T1")
	assert.Error(t, err)
}
