package deepseek

import (
	"context"
	"errors"
	"fmt"

	ds "github.com/cohesion-org/deepseek-go"
	"github.com/cohesion-org/deepseek-go/constants"

	"resume-optimizer/pkg/llm"
)

// completer is the subset of the SDK client the provider uses.
type completer interface {
	CreateChatCompletion(ctx context.Context, request *ds.ChatCompletionRequest) (*ds.ChatCompletionResponse, error)
}

type Provider struct {
	client completer
	model  string
}

var _ llm.LLMProvider = (*Provider)(nil)

func NewProvider(apiKey, model string) *Provider {
	if model == "" {
		model = ds.DeepSeekChat
	}
	return &Provider{client: ds.NewClient(apiKey), model: model}
}

func roleOf(role string) string {
	switch role {
	case llm.RoleSystem:
		return constants.ChatMessageRoleSystem
	case llm.RoleAssistant, "model":
		return constants.ChatMessageRoleAssistant
	default:
		return constants.ChatMessageRoleUser
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model, Temperature: 0.3}, options...)

	messages := make([]ds.ChatCompletionMessage, len(history))
	for i, m := range history {
		messages[i] = ds.ChatCompletionMessage{Role: roleOf(m.Role), Content: m.Content}
	}

	req := &ds.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: float32(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("deepseek chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("empty choices from deepseek api")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
