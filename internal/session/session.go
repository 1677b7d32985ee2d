// Package session owns the append-only conversation state for one user
// session: the role-tagged message log and the question/answer pairs.
package session

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"research-assistant/internal/extract"
)

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation log. Entries are never mutated
// after insertion.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// QAPair is one user question paired with its generated answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

const systemPrompt = "You are a helpful research assistant."

// Session holds the state of one user's interaction. The message log always
// starts with exactly one system message, inserted at creation and never
// removed. All mutating operations append; nothing deletes or reorders.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	messages []Message
	qa       []QAPair
	doc      extract.Document
	summary  string
}

// New creates a session seeded with the single system message.
func New() *Session {
	return &Session{
		ID:       uuid.New(),
		messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// AppendAssistant appends an assistant message to the log.
func (s *Session) AppendAssistant(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: content})
}

// AppendQA records a question/answer pair.
func (s *Session) AppendQA(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qa = append(s.qa, QAPair{Question: question, Answer: answer})
}

// Messages returns a copy of the conversation log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// QAPairs returns a copy of the recorded question/answer pairs.
func (s *Session) QAPairs() []QAPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.qa)
}

// SetDocument installs the extraction result for the current upload set,
// replacing any previous one.
func (s *Session) SetDocument(doc extract.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

// Document returns the current extraction result. The zero Document means
// nothing has been uploaded yet.
func (s *Session) Document() extract.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// SetSummary stores the latest generated summary.
func (s *Session) SetSummary(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
}

// Summary returns the latest generated summary, or "" if none.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}
