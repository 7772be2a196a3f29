// Package memory holds per-conversation chat history and builds the bounded
// context window sent to the model. State is in-process only: a restart
// loses all conversations.
package memory

import (
	"sync"
	"time"
)

// Entry is one message exchanged in a conversation. Entries are never
// mutated after creation.
type Entry struct {
	Role      string    `json:"role"` // user or assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the only place conversation state lives, keyed by chat ID. It is
// injected into the Manager so tests can isolate state and a durable backend
// can be swapped in later.
type Store interface {
	// Get returns the stored entries for chatID, empty if unknown.
	Get(chatID string) []Entry
	// Save replaces the full entry sequence for chatID. Last writer wins.
	Save(chatID string, entries []Entry)
	// Clear removes all entries for chatID. No-op if absent.
	Clear(chatID string)
}

// InMemoryStore keeps conversations in a map. The mutex protects the map
// itself; a Get/Save pair is not atomic, so two concurrent writers to the
// same chat ID can lose a turn (see Manager.RecordTurn).
type InMemoryStore struct {
	mu    sync.RWMutex
	chats map[string][]Entry
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{chats: make(map[string][]Entry)}
}

func (s *InMemoryStore) Get(chatID string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.chats[chatID]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

func (s *InMemoryStore) Save(chatID string, entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(entries) == 0 {
		// An empty conversation is equivalent to an absent one.
		delete(s.chats, chatID)
		return
	}
	s.chats[chatID] = entries
}

func (s *InMemoryStore) Clear(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, chatID)
}
