package mocks

import (
	"context"

	"github.com/Brijesh59/kite/domain"
)

// MockProfileRepository implements domain.ProfileRepository for testing
type MockProfileRepository struct {
	IsProfileCompletedFunc func(ctx context.Context, userID string) (bool, error)
}

// NewMockProfileRepository creates a new MockProfileRepository with default behaviors
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{}
}

// IsProfileCompleted reports whether the user finished onboarding
func (m *MockProfileRepository) IsProfileCompleted(ctx context.Context, userID string) (bool, error) {
	if m.IsProfileCompletedFunc != nil {
		return m.IsProfileCompletedFunc(ctx, userID)
	}
	// Default behavior: not completed
	return false, nil
}

// Compile-time interface compliance verification
var _ domain.ProfileRepository = (*MockProfileRepository)(nil)
