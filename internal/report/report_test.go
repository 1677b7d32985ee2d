package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-assistant/internal/session"
)

func systemOnly() []session.Message {
	return []session.Message{{Role: session.RoleSystem, Content: "You are a helpful research assistant."}}
}

func TestSectionsEmptyInputsYieldNoSections(t *testing.T) {
	secs := sections("", nil, systemOnly(), "")
	assert.Empty(t, secs, "nothing to render should produce no sections")
}

func TestSectionsOrderAndContent(t *testing.T) {
	qa := []session.QAPair{
		{Question: "What is it about?", Answer: "A greeting."},
		{Question: "Who wrote it?", Answer: "Unknown."},
	}
	messages := append(systemOnly(),
		session.Message{Role: session.RoleAssistant, Content: "A brief greeting."},
	)

	secs := sections("- a greeting\n\n- nothing else", qa, messages, "Hello World.")
	require.Len(t, secs, 5)

	assert.Equal(t, headingSummary, secs[0].Heading)
	assert.Equal(t, []string{"- a greeting", "- nothing else"}, secs[0].Lines)

	assert.Equal(t, "Q: What is it about?", secs[1].Heading)
	assert.Equal(t, []string{"A: A greeting."}, secs[1].Lines)
	assert.Equal(t, "Q: Who wrote it?", secs[2].Heading)

	assert.Equal(t, headingHistory, secs[3].Heading)
	assert.Equal(t, []string{"Assistant: A brief greeting."}, secs[3].Lines)

	assert.Equal(t, headingText, secs[4].Heading)
	assert.Equal(t, []string{"Hello World."}, secs[4].Lines)
}

func TestSectionsOmitsIndividualEmptySources(t *testing.T) {
	secs := sections("only a summary", nil, systemOnly(), "")
	require.Len(t, secs, 1)
	assert.Equal(t, headingSummary, secs[0].Heading)

	secs = sections("", nil, systemOnly(), "full text only")
	require.Len(t, secs, 1)
	assert.Equal(t, headingText, secs[0].Heading)
}

func TestHistoryLinesSkipsSystemMessage(t *testing.T) {
	messages := []session.Message{
		{Role: session.RoleSystem, Content: "system prompt"},
		{Role: session.RoleUser, Content: "hi"},
		{Role: session.RoleAssistant, Content: "hello"},
	}
	lines := historyLines(messages)
	assert.Equal(t, []string{"You: hi", "Assistant: hello"}, lines)
}

func TestBuildProducesPDF(t *testing.T) {
	out, err := Build("summary text", nil, systemOnly(), "Hello World.")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "output should be a PDF document")
}

func TestBuildDeterministic(t *testing.T) {
	qa := []session.QAPair{{Question: "q", Answer: "a"}}
	first, err := Build("summary", qa, systemOnly(), "text")
	require.NoError(t, err)
	second, err := Build("summary", qa, systemOnly(), "text")
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical inputs should yield identical bytes")
}
