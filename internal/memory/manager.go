package memory

import (
	"time"

	"github.com/tomascufaro/whatsup-assistant/internal/llm"
)

// DefaultMaxTurns bounds how many turns (user message + assistant reply) are
// retained per conversation.
const DefaultMaxTurns = 20

// Manager translates between raw storage and the context shape the model
// consumes, and enforces retention. The budget is turn-count based, not
// token based: a conversation of very long messages can still exceed the
// model's token limit.
type Manager struct {
	store    Store
	maxTurns int
}

// NewManager wraps the given store. A non-positive maxTurns falls back to
// DefaultMaxTurns.
func NewManager(store Store, maxTurns int) *Manager {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Manager{store: store, maxTurns: maxTurns}
}

// BuildContext returns the stored turns for chatID as role/content pairs in
// original order, empty for unknown conversations.
func (m *Manager) BuildContext(chatID string) []llm.Message {
	entries := m.store.Get(chatID)
	messages := make([]llm.Message, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, llm.Message{Role: e.Role, Content: e.Content})
	}
	return messages
}

// RecordTurn appends one user entry and one assistant entry, then truncates
// to the most recent maxTurns*2 entries, dropping the oldest first.
//
// The Get/Save pair is not atomic: two concurrent RecordTurn calls for the
// same chat ID race and the last Save wins. Accepted for this workload (one
// human sends one message at a time per conversation).
func (m *Manager) RecordTurn(chatID, userText, assistantText string) {
	now := time.Now()
	entries := m.store.Get(chatID)
	entries = append(entries,
		Entry{Role: llm.RoleUser, Content: userText, Timestamp: now},
		Entry{Role: llm.RoleAssistant, Content: assistantText, Timestamp: now},
	)

	maxEntries := m.maxTurns * 2
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	m.store.Save(chatID, entries)
}

// Clear removes the conversation for chatID.
func (m *Manager) Clear(chatID string) {
	m.store.Clear(chatID)
}
