package session

import (
	"encoding/json"
	"sync"
)

// Persisted-per-tab key layout. The two keys are independent on purpose:
// absence of either one is equivalent to "no session".
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store abstracts the tab-local session record. It is purely storage:
// no validation, no cross-tab visibility.
//
// Load returns ErrNoSession when no complete record exists. Malformed stored
// data is treated as absence: implementations clear themselves and return
// ErrStorageCorrupt (which still matches ErrNoSession) instead of failing.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// MemoryStore is an in-process Store for tests and short-lived tabs.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string, 2)}
}

// Load returns the stored session or ErrNoSession.
func (s *MemoryStore) Load() (Session, error) {
	s.mu.Lock()
	token, okToken := s.values[KeyToken]
	userJSON, okUser := s.values[KeyUser]
	s.mu.Unlock()

	if !okToken || !okUser || token == "" {
		return Session{}, ErrNoSession
	}

	var u User
	if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
		_ = s.Clear()
		return Session{}, ErrStorageCorrupt
	}
	u.Role = NormalizeRole(string(u.Role))

	return Session{Token: token, User: u}, nil
}

// Save persists the session under the two-key layout.
func (s *MemoryStore) Save(sess Session) error {
	b, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.values[KeyToken] = sess.Token
	s.values[KeyUser] = string(b)
	s.mu.Unlock()
	return nil
}

// Clear removes both keys.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	delete(s.values, KeyToken)
	delete(s.values, KeyUser)
	s.mu.Unlock()
	return nil
}

// put stores a raw value under a key, bypassing Save's marshalling.
// Test hook for corrupt-storage scenarios.
func (s *MemoryStore) put(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}
