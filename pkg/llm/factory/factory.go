package factory

import (
	"fmt"

	"resume-optimizer/pkg/llm"
	"resume-optimizer/pkg/llm/deepseek"
	"resume-optimizer/pkg/llm/moonshot"
	"resume-optimizer/pkg/llm/ollama"
)

type Settings struct {
	Provider string // "ollama", "deepseek" or "moonshot"
	Model    string
	BaseURL  string // ollama and moonshot
	APIKey   string // deepseek and moonshot
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "ollama":
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, s.Model), nil
	case "deepseek":
		if s.APIKey == "" {
			return nil, fmt.Errorf("deepseek provider requires an API key")
		}
		return deepseek.NewProvider(s.APIKey, s.Model), nil
	case "moonshot", "kimi":
		if s.APIKey == "" {
			return nil, fmt.Errorf("moonshot provider requires an API key")
		}
		return moonshot.NewProvider(s.APIKey, s.BaseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
