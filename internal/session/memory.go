package session

import (
	"context"
	"errors"
	"sync"

	"github.com/sakif/aptx/internal/model"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.User
	newToken func() (string, error)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.User),
		newToken: NewToken,
	}
}

func (s *MemoryStore) Create(_ context.Context, user model.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return "", err
		}
		if _, taken := s.sessions[token]; taken {
			continue
		}
		s.sessions[token] = user
		return token, nil
	}
	return "", errors.New("session: could not generate a unique token")
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.sessions[token]
	if !ok {
		return nil, ErrNoSession
	}
	return &user, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
