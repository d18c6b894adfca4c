package bootstrap

import (
	"path/filepath"
	"testing"
	"time"

	"resume-optimizer/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderSettings(t *testing.T) {
	ai := config.AIConfig{
		LLMProvider:     "kimi",
		OllamaBaseURL:   "http://ollama",
		DeepSeekAPIKey:  "ds-key",
		MoonshotAPIKey:  "ms-key",
		MoonshotBaseURL: "http://moonshot",
	}
	assert.Equal(t, "http://moonshot", providerBaseURL(ai))
	assert.Equal(t, "ms-key", providerAPIKey(ai))

	ai.LLMProvider = "deepseek"
	assert.Equal(t, "ds-key", providerAPIKey(ai))

	ai.LLMProvider = "ollama"
	assert.Equal(t, "http://ollama", providerBaseURL(ai))
}

func TestNewContainerInMemory(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{LogFilePath: filepath.Join(t.TempDir(), "app.log")},
		Queue: config.QueueConfig{
			Backend:   "memory",
			ResultTTL: time.Hour,
		},
		Ai: config.AIConfig{LLMProvider: "ollama", LLMModel: "qwen2.5"},
	}

	c := NewContainer(nil, cfg)
	defer c.Close()

	require.NotNil(t, c.ResumeController)
	require.NotNil(t, c.WorkerService)
	assert.Nil(t, c.HistoryService)
	assert.True(t, c.InProcessWorkers)
}
