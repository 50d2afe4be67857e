package feedback

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIChat talks to an OpenAI-compatible chat completions endpoint (OpenAI or Groq)
type OpenAIChat struct {
	client *openai.Client
	name   string
}

// NewOpenAIChat creates a chat client. An empty baseURL targets OpenAI.
func NewOpenAIChat(name, apiKey, baseURL string) *OpenAIChat {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIChat{
		client: openai.NewClientWithConfig(cfg),
		name:   name,
	}
}

func (c *OpenAIChat) Name() string { return c.name }

func (c *OpenAIChat) Complete(ctx context.Context, messages []Message, model string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat: %w", c.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
