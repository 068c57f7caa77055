// Package history keeps per-chat conversation history in memory.
package history

import "sync"

// Entry is one role-tagged message in a conversation.
type Entry struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Store maps chat ids to bounded message histories. The system prompt is
// never stored; Context prepends it fresh on every call. All state lives for
// the process lifetime only.
type Store struct {
	mu           sync.RWMutex
	systemPrompt string
	maxMessages  int
	chats        map[int64][]Entry
}

// NewStore creates a store that keeps at most maxMessages entries per chat.
func NewStore(systemPrompt string, maxMessages int) *Store {
	if maxMessages <= 0 {
		maxMessages = 20
	}
	return &Store{
		systemPrompt: systemPrompt,
		maxMessages:  maxMessages,
		chats:        make(map[int64][]Entry),
	}
}

// Append adds one entry to a chat's history, creating the chat lazily and
// trimming to the most recent maxMessages entries.
func (s *Store) Append(chatID int64, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.chats[chatID], Entry{Role: role, Content: content})
	if len(msgs) > s.maxMessages {
		trimmed := make([]Entry, s.maxMessages)
		copy(trimmed, msgs[len(msgs)-s.maxMessages:])
		msgs = trimmed
	}
	s.chats[chatID] = msgs
}

// Context returns the system prompt entry followed by the chat's stored
// history, oldest first. The returned slice is a copy.
func (s *Store) Context(chatID int64) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.chats[chatID]
	out := make([]Entry, 0, 1+len(stored))
	out = append(out, Entry{Role: RoleSystem, Content: s.systemPrompt})
	out = append(out, stored...)
	return out
}

// Len reports how many entries a chat currently holds.
func (s *Store) Len(chatID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats[chatID])
}

// Clear removes a chat's history entirely. Clearing an absent chat is a no-op.
func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, chatID)
}
