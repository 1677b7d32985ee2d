package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"research-assistant/internal/session"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1"

	// maxCompletionTokens bounds the length of a generated completion.
	maxCompletionTokens = 800
)

// GroqClient calls Groq's OpenAI-compatible chat completions API.
type GroqClient struct {
	client *openai.Client
}

// NewGroqClient builds a client against the Groq endpoint.
func NewGroqClient(apiKey string) (*GroqClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	cli := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(groqBaseURL),
	)
	return &GroqClient{client: &cli}, nil
}

// Complete sends the conversation history plus the prompt as a trailing user
// message and returns the generated text.
func (c *GroqClient) Complete(ctx context.Context, model string, history []session.Message, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil groq client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, m := range history {
		switch m.Role {
		case session.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case session.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case session.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(model),
		Messages:  messages,
		MaxTokens: openai.Int(maxCompletionTokens),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
