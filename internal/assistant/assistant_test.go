package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"research-assistant/internal/cache"
	"research-assistant/internal/extract"
	"research-assistant/internal/llm"
	"research-assistant/internal/session"
)

func newTestService(clients map[llm.Provider]llm.Client, c cache.Cache) *Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, clients, c, time.Hour)
}

func TestRunModelSuccess(t *testing.T) {
	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, "llama-3.3-70b-versatile", mock.Anything, "Summarize: Hello World.").
		Return("A brief greeting.", nil).Once()

	svc := newTestService(map[llm.Provider]llm.Client{llm.ProviderGroq: mockLLM}, nil)
	sess := session.New()
	sel := llm.Selection{Provider: llm.ProviderGroq, Model: "llama-3.3-70b-versatile"}

	out, err := svc.RunModel(context.Background(), sess, sel, "Summarize: Hello World.")
	require.NoError(t, err)
	assert.Equal(t, "A brief greeting.", out)

	msgs := sess.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, session.Message{Role: session.RoleAssistant, Content: "A brief greeting."}, msgs[1])

	mockLLM.AssertExpectations(t)
}

func TestRunModelProviderFailure(t *testing.T) {
	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("connection refused")).Once()

	svc := newTestService(map[llm.Provider]llm.Client{llm.ProviderGemini: mockLLM}, nil)
	sess := session.New()
	sel := llm.Selection{Provider: llm.ProviderGemini, Model: "gemini-1.5-flash"}

	out, err := svc.RunModel(context.Background(), sess, sel, "prompt")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(out, "Gemini error:"), "expected provider tag prefix, got %q", out)

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, llm.ProviderGemini, perr.Provider)

	// The failure string is still recorded as an assistant message.
	msgs := sess.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, out, msgs[1].Content)
}

func TestRunModelUnconfiguredProvider(t *testing.T) {
	svc := newTestService(map[llm.Provider]llm.Client{}, nil)
	sess := session.New()
	sel := llm.Selection{Provider: llm.ProviderGroq, Model: "llama-3.1-8b-instant"}

	out, err := svc.RunModel(context.Background(), sess, sel, "prompt")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Len(t, sess.Messages(), 1, "no assistant message without a provider call")
}

func TestRunModelSendsHistory(t *testing.T) {
	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("ok", nil).Twice()

	svc := newTestService(map[llm.Provider]llm.Client{llm.ProviderGroq: mockLLM}, nil)
	sess := session.New()
	sel := llm.Selection{Provider: llm.ProviderGroq, Model: "llama-3.3-70b-versatile"}

	_, err := svc.RunModel(context.Background(), sess, sel, "first")
	require.NoError(t, err)
	_, err = svc.RunModel(context.Background(), sess, sel, "second")
	require.NoError(t, err)

	// Second call saw the system message plus the first assistant reply.
	history := mockLLM.Calls[1].Arguments.Get(2).([]session.Message)
	require.Len(t, history, 2)
	assert.Equal(t, session.RoleSystem, history[0].Role)
	assert.Equal(t, session.RoleAssistant, history[1].Role)
}

func TestSummarize(t *testing.T) {
	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.Anything, mock.Anything,
		mock.MatchedBy(func(prompt string) bool {
			return strings.HasPrefix(prompt, "Summarize the following text in bullet points:") &&
				strings.Contains(prompt, "Hello World.")
		})).Return("- a greeting", nil).Once()

	svc := newTestService(map[llm.Provider]llm.Client{llm.ProviderGroq: mockLLM}, nil)
	sess := session.New()
	sess.SetDocument(extract.NewDocument("Hello World."))
	sel := llm.Selection{Provider: llm.ProviderGroq, Model: "llama-3.3-70b-versatile"}

	summary, err := svc.Summarize(context.Background(), sess, sel)
	require.NoError(t, err)
	assert.Equal(t, "- a greeting", summary)
	assert.Equal(t, "- a greeting", sess.Summary())
	mockLLM.AssertExpectations(t)
}

func TestAskAppendsQAPairs(t *testing.T) {
	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("an answer", nil).Times(3)

	svc := newTestService(map[llm.Provider]llm.Client{llm.ProviderGroq: mockLLM}, nil)
	sess := session.New()
	sess.SetDocument(extract.NewDocument("Hello World."))
	sel := llm.Selection{Provider: llm.ProviderGroq, Model: "llama-3.1-8b-instant"}

	initial := len(sess.QAPairs())
	for i := 1; i <= 3; i++ {
		question := fmt.Sprintf("question %d", i)
		answer, err := svc.Ask(context.Background(), sess, sel, question)
		require.NoError(t, err)
		assert.Equal(t, "an answer", answer)
		require.Len(t, sess.QAPairs(), initial+i)
	}

	pairs := sess.QAPairs()
	assert.Equal(t, "question 1", pairs[0].Question)
	assert.Equal(t, "an answer", pairs[0].Answer)
}

func TestAskRecordsFailureAsAnswer(t *testing.T) {
	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("boom")).Once()

	svc := newTestService(map[llm.Provider]llm.Client{llm.ProviderGroq: mockLLM}, nil)
	sess := session.New()
	sess.SetDocument(extract.NewDocument("text"))
	sel := llm.Selection{Provider: llm.ProviderGroq, Model: "llama-3.1-8b-instant"}

	answer, err := svc.Ask(context.Background(), sess, sel, "why?")
	require.Error(t, err)

	pairs := sess.QAPairs()
	require.Len(t, pairs, 1)
	assert.Equal(t, answer, pairs[0].Answer)
	assert.True(t, strings.HasPrefix(pairs[0].Answer, "Groq error:"))
}

func TestIngestCacheMiss(t *testing.T) {
	mockCache := new(cache.MockCache)
	mockCache.On("GetDocument", mock.Anything, mock.Anything).Return(nil, nil).Once()
	mockCache.On("SetDocument", mock.Anything, mock.Anything, mock.Anything, time.Hour).Return(nil).Once()

	svc := newTestService(nil, mockCache)
	sess := session.New()

	doc := svc.Ingest(context.Background(), sess, [][]byte{[]byte("not a pdf")})
	assert.Empty(t, doc.Text)
	assert.Equal(t, doc, sess.Document())
	mockCache.AssertExpectations(t)
}

func TestIngestCacheHit(t *testing.T) {
	cached := extract.NewDocument("Hello World.")
	mockCache := new(cache.MockCache)
	mockCache.On("GetDocument", mock.Anything, mock.Anything).Return(&cached, nil).Once()

	svc := newTestService(nil, mockCache)
	sess := session.New()

	doc := svc.Ingest(context.Background(), sess, [][]byte{[]byte("irrelevant")})
	assert.Equal(t, cached, doc)
	assert.Equal(t, cached, sess.Document())
	mockCache.AssertNotCalled(t, "SetDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestCacheFailureDegradesToRecompute(t *testing.T) {
	mockCache := new(cache.MockCache)
	mockCache.On("GetDocument", mock.Anything, mock.Anything).Return(nil, errors.New("redis down")).Once()
	mockCache.On("SetDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	svc := newTestService(nil, mockCache)
	sess := session.New()

	doc := svc.Ingest(context.Background(), sess, [][]byte{[]byte("bytes")})
	assert.Equal(t, doc, sess.Document())
}

func TestExport(t *testing.T) {
	svc := newTestService(nil, nil)
	sess := session.New()
	sess.SetDocument(extract.NewDocument("Hello World."))
	sess.SetSummary("- a greeting")
	sess.AppendQA("q", "a")

	out, err := svc.Export(sess)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestProviders(t *testing.T) {
	svc := newTestService(map[llm.Provider]llm.Client{llm.ProviderGroq: new(llm.MockClient)}, nil)
	available := svc.Providers()
	assert.True(t, available[llm.ProviderGroq])
	assert.False(t, available[llm.ProviderGemini])
}
