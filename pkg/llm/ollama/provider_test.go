package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-optimizer/pkg/llm"
)

func TestOllamaChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatResponse{Message: llm.Message{Role: llm.RoleAssistant, Content: "Score: 82/100"}, Done: true})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "qwen2.5")
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "You review resumes."},
		{Role: llm.RoleUser, Content: "Rate this."},
	}, llm.WithTemperature(0.2), llm.WithMaxTokens(256))
	require.NoError(t, err)

	assert.Equal(t, "Score: 82/100", out)
	assert.Equal(t, "qwen2.5", got.Model)
	assert.False(t, got.Stream)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, 0.2, got.Options.Temperature)
	assert.Equal(t, 256, got.Options.NumPredict)
}

func TestOllamaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'qwen2.5' not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "qwen2.5").Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
