package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"research-assistant/internal/session"
)

// GeminiClient calls the Gemini API through the official SDK.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient builds a client against the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: cli}, nil
}

// Complete sends only the prompt text; Gemini requests carry no
// conversation history.
func (c *GeminiClient) Complete(ctx context.Context, model string, _ []session.Message, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil gemini client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(reqCtx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}
