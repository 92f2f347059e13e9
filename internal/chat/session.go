package chat

import (
	"sync"

	"github.com/google/uuid"

	"campusdocs-ai/internal/llm"
)

// Turn is one message in a conversation. Assistant turns may carry the
// citations that grounded the answer.
type Turn struct {
	Role    string
	Content string
	Cited   []Citation
}

// Session holds the in-memory state of one conversation. History is
// append-only except for Clear, which the overflow recovery path uses.
// Sessions are not persisted; a restart starts everyone fresh.
type Session struct {
	ID string

	mu           sync.Mutex
	turns        []Turn
	activeModel  string
	pendingQuery string
	alternatives []ModelDescriptor
}

// NewSession creates an empty session on the default model.
func NewSession() *Session {
	return &Session{
		ID:          uuid.New().String(),
		activeModel: DefaultModel,
	}
}

// Lock takes the session for exclusive processing of one query.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// History returns the conversation as LLM messages, oldest first.
// The caller must hold the session lock.
func (s *Session) History() []llm.Message {
	messages := make([]llm.Message, len(s.turns))
	for i, t := range s.turns {
		messages[i] = llm.Message{Role: t.Role, Content: t.Content}
	}
	return messages
}

// Append records a turn. The caller must hold the session lock.
func (s *Session) Append(role, content string, cited []Citation) {
	s.turns = append(s.turns, Turn{Role: role, Content: content, Cited: cited})
}

// Clear wipes the conversation history. The caller must hold the session lock.
func (s *Session) Clear() {
	s.turns = nil
}

// Len returns the number of turns. The caller must hold the session lock.
func (s *Session) Len() int {
	return len(s.turns)
}

// ActiveModel returns the model the session currently runs on.
func (s *Session) ActiveModel() string {
	return s.activeModel
}

// SetActiveModel switches the session to a different model.
func (s *Session) SetActiveModel(model string) {
	s.activeModel = model
}

// SetPending parks a query that could not be answered on the current model,
// together with the alternatives offered to the user.
func (s *Session) SetPending(query string, alternatives []ModelDescriptor) {
	s.pendingQuery = query
	s.alternatives = alternatives
}

// TakePending returns the parked query and clears the pending state.
func (s *Session) TakePending() string {
	q := s.pendingQuery
	s.pendingQuery = ""
	s.alternatives = nil
	return q
}

// PendingAlternatives returns the models offered for the parked query.
func (s *Session) PendingAlternatives() []ModelDescriptor {
	return s.alternatives
}
