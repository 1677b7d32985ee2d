// Package llm provides a uniform completion interface over the two
// supported LLM backends, Groq and Gemini.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"research-assistant/internal/session"
)

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderGroq   Provider = "Groq"
	ProviderGemini Provider = "Gemini"
)

// Client is the uniform completion contract both backends implement.
// Groq submits the full conversation history with the prompt appended as a
// user message; Gemini submits the prompt text alone.
type Client interface {
	Complete(ctx context.Context, model string, history []session.Message, prompt string) (string, error)
}

const (
	defaultChatTimeout = 60 * time.Second

	// selectionSeparator splits a display string into provider and model id.
	selectionSeparator = " - "
)

// Selection names the backend and model for one request. It is chosen per
// request and never persisted.
type Selection struct {
	Provider Provider
	Model    string
}

// String renders the selection as its display string.
func (s Selection) String() string {
	return string(s.Provider) + selectionSeparator + s.Model
}

// Selections returns the fixed list of selectable display strings.
func Selections() []string {
	return []string{
		"Groq - llama-3.3-70b-versatile",
		"Groq - llama-3.1-8b-instant",
		"Gemini - gemini-1.5-flash",
		"Gemini - gemini-1.5-pro",
	}
}

// ParseSelection parses a display string such as
// "Groq - llama-3.3-70b-versatile" into a Selection.
func ParseSelection(display string) (Selection, error) {
	provider, model, ok := strings.Cut(display, selectionSeparator)
	if !ok || model == "" {
		return Selection{}, fmt.Errorf("invalid model selection %q", display)
	}
	switch Provider(provider) {
	case ProviderGroq, ProviderGemini:
		return Selection{Provider: Provider(provider), Model: model}, nil
	default:
		return Selection{}, fmt.Errorf("unknown provider %q", provider)
	}
}

// ProviderError tags a completion failure with the backend it came from.
// Its message is the user-visible form recorded in conversation history.
type ProviderError struct {
	Provider Provider
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
