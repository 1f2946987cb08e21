package mocks

import (
	"context"
	"sync"

	"github.com/Brijesh59/kite/domain"
)

// MockSessionRepository implements domain.SessionRepository for testing.
// Without overrides it keeps sessions in memory.
type MockSessionRepository struct {
	CreateFunc         func(ctx context.Context, session *domain.Session) error
	FindByTokenFunc    func(ctx context.Context, token string) (*domain.Session, error)
	DeleteFunc         func(ctx context.Context, token string) (bool, error)
	DeleteByUserIDFunc func(ctx context.Context, userID string) (int, error)

	mu       sync.Mutex
	sessions map[string]*domain.Session
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]*domain.Session)}
}

// Create stores a session
func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return nil
}

// FindByToken looks a session up by its refresh token
func (m *MockSessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.FindByTokenFunc != nil {
		return m.FindByTokenFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[token]; ok {
		return s, nil
	}
	return nil, domain.ErrSessionNotFound
}

// Delete removes a session and reports whether it existed
func (m *MockSessionRepository) Delete(ctx context.Context, token string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[token]
	delete(m.sessions, token)
	return ok, nil
}

// DeleteByUserID removes every session of a user
func (m *MockSessionRepository) DeleteByUserID(ctx context.Context, userID string) (int, error) {
	if m.DeleteByUserIDFunc != nil {
		return m.DeleteByUserIDFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored sessions
func (m *MockSessionRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)
