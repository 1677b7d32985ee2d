// Package assistant orchestrates the core operations over an explicit
// session object: ingest uploads, run completions, summarize, answer
// questions, and export the report.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"research-assistant/internal/cache"
	"research-assistant/internal/extract"
	"research-assistant/internal/llm"
	"research-assistant/internal/report"
	"research-assistant/internal/session"
)

const (
	summarizePrompt = "Summarize the following text in bullet points:\n\n%s"
	answerPrompt    = "Answer the following question based on the text:\n\nText: %s\n\nQuestion: %s"
)

// Service dispatches completions to the configured providers and applies
// their results to session state. It is the single writer of conversation
// history.
type Service struct {
	log      *slog.Logger
	clients  map[llm.Provider]llm.Client
	cache    cache.Cache
	cacheTTL time.Duration
}

// New builds a Service. clients holds one entry per configured provider.
func New(log *slog.Logger, clients map[llm.Provider]llm.Client, c cache.Cache, cacheTTL time.Duration) *Service {
	return &Service{log: log, clients: clients, cache: c, cacheTTL: cacheTTL}
}

// Providers reports which backends are configured.
func (s *Service) Providers() map[llm.Provider]bool {
	available := make(map[llm.Provider]bool, len(s.clients))
	for p := range s.clients {
		available[p] = true
	}
	return available
}

// Ingest extracts text from the uploaded files and installs the result on
// the session, consulting the extraction cache first. Cache failures only
// degrade to a recompute.
func (s *Service) Ingest(ctx context.Context, sess *session.Session, files [][]byte) extract.Document {
	key := extract.Digest(files)
	if cached, err := s.cache.GetDocument(ctx, key); err != nil {
		s.log.Warn("extraction cache read failed", "err", err)
	} else if cached != nil {
		s.log.Debug("extraction cache hit", "key", key)
		sess.SetDocument(*cached)
		return *cached
	}

	doc := extract.Extract(files)
	if err := s.cache.SetDocument(ctx, key, &doc, s.cacheTTL); err != nil {
		s.log.Warn("extraction cache write failed", "err", err)
	}
	sess.SetDocument(doc)
	return doc
}

// RunModel sends the prompt to the selected provider and appends the result
// to the session's conversation log. On provider failure the tagged error
// string is what gets appended and returned, alongside the error itself, so
// callers can still surface the failure distinctly.
func (s *Service) RunModel(ctx context.Context, sess *session.Session, sel llm.Selection, prompt string) (string, error) {
	client, ok := s.clients[sel.Provider]
	if !ok {
		return "", fmt.Errorf("provider %s is not configured", sel.Provider)
	}

	output, err := client.Complete(ctx, sel.Model, sess.Messages(), prompt)
	if err != nil {
		perr := &llm.ProviderError{Provider: sel.Provider, Err: err}
		output = perr.Error()
		sess.AppendAssistant(output)
		return output, perr
	}
	sess.AppendAssistant(output)
	return output, nil
}

// Summarize generates a bullet-point summary of the session's extracted
// text and stores it on the session.
func (s *Service) Summarize(ctx context.Context, sess *session.Session, sel llm.Selection) (string, error) {
	prompt := fmt.Sprintf(summarizePrompt, sess.Document().Text)
	summary, err := s.RunModel(ctx, sess, sel, prompt)
	if err == nil || isProviderError(err) {
		sess.SetSummary(summary)
	}
	return summary, err
}

// Ask answers a question against the session's extracted text and records
// the question/answer pair. A provider failure is recorded as the answer.
func (s *Service) Ask(ctx context.Context, sess *session.Session, sel llm.Selection, question string) (string, error) {
	prompt := fmt.Sprintf(answerPrompt, sess.Document().Text, question)
	answer, err := s.RunModel(ctx, sess, sel, prompt)
	if err == nil || isProviderError(err) {
		sess.AppendQA(question, answer)
	}
	return answer, err
}

// Export renders the session's summary, question/answer pairs, conversation
// history, and full text into a PDF report.
func (s *Service) Export(sess *session.Session) ([]byte, error) {
	return report.Build(sess.Summary(), sess.QAPairs(), sess.Messages(), sess.Document().Text)
}

func isProviderError(err error) bool {
	var perr *llm.ProviderError
	return errors.As(err, &perr)
}
