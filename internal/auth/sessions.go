package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned when a user has no registered token.
var ErrNoSession = errors.New("no active session")

// SessionStore keeps the single active token per user.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (string, error)
	Put(ctx context.Context, userID int64, token string, ttl time.Duration) error
	Delete(ctx context.Context, userID int64) error
}

type session struct {
	token     string
	expiresAt time.Time
}

// MemorySessions is a process-local SessionStore.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[int64]session
	now      func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[int64]session), now: time.Now}
}

func (m *MemorySessions) Get(_ context.Context, userID int64) (string, error) {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNoSession
	}
	if !m.now().Before(s.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, userID)
		m.mu.Unlock()
		return "", ErrNoSession
	}
	return s.token, nil
}

func (m *MemorySessions) Put(_ context.Context, userID int64, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = session{token: token, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemorySessions) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
