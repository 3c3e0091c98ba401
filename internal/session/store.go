package session

import (
	"errors"
	"sync"

	"jarvis-backend/internal/models"
)

// DefaultMaxHistory caps each session at the most recent entries so
// context stays relevant and memory stays bounded under session churn.
const DefaultMaxHistory = 20

var ErrNotFound = errors.New("session not found")

// Store holds an ordered, size-bounded message log per session key.
// Sessions live for the process lifetime unless explicitly deleted.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]models.ChatMessage
	maxLen   int
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string][]models.ChatMessage),
		maxLen:   DefaultMaxHistory,
	}
}

// Get returns a copy of the session history, materializing an empty
// entry for unseen keys. It never fails.
func (s *Store) Get(key string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.sessions[key]
	if !ok {
		s.sessions[key] = nil
		return []models.ChatMessage{}
	}
	return append([]models.ChatMessage{}, history...)
}

// Append adds entries in call order, then evicts from the front until the
// session is back under the cap.
func (s *Store) Append(key string, entries ...models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[key], entries...)
	if len(history) > s.maxLen {
		history = history[len(history)-s.maxLen:]
	}
	s.sessions[key] = history
}

// Delete removes the session entirely. It fails with ErrNotFound when the
// key was never materialized.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[key]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, key)
	return nil
}

// Len reports the number of entries in a session without materializing it.
func (s *Store) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[key])
}
