package mocks

import (
	"context"

	"github.com/Brijesh59/kite/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc                func(ctx context.Context, user *domain.User) error
	FindByIDFunc              func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc           func(ctx context.Context, email string) (*domain.User, error)
	FindByMobileFunc          func(ctx context.Context, mobile string) (*domain.User, error)
	ExistsByEmailOrMobileFunc func(ctx context.Context, email, mobile, excludeID string) (bool, error)
	UpdateFunc                func(ctx context.Context, user *domain.User) error
	ListFunc                  func(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int64, error)
	CountByRoleFunc           func(ctx context.Context, role domain.Role) (int64, error)
	DeleteFunc                func(ctx context.Context, id string) error
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	// Default behavior: success
	return nil
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

// FindByMobile finds a user by mobile number
func (m *MockUserRepository) FindByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	if m.FindByMobileFunc != nil {
		return m.FindByMobileFunc(ctx, mobile)
	}
	return nil, domain.ErrUserNotFound
}

// ExistsByEmailOrMobile reports whether the email or mobile is taken
func (m *MockUserRepository) ExistsByEmailOrMobile(ctx context.Context, email, mobile, excludeID string) (bool, error) {
	if m.ExistsByEmailOrMobileFunc != nil {
		return m.ExistsByEmailOrMobileFunc(ctx, email, mobile, excludeID)
	}
	return false, nil
}

// Update updates an existing user
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

// List returns one page of users
func (m *MockUserRepository) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

// CountByRole counts users holding role
func (m *MockUserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	if m.CountByRoleFunc != nil {
		return m.CountByRoleFunc(ctx, role)
	}
	return 0, nil
}

// Delete removes a user
func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
