package mocks

import (
	"context"

	"github.com/Brijesh59/kite/domain"
)

// MockAdminService implements domain.AdminService interface for testing
type MockAdminService struct {
	ListUsersFunc      func(ctx context.Context, filter domain.UserFilter) (*domain.UserPage, error)
	GetUserFunc        func(ctx context.Context, id string) (*domain.User, error)
	CreateUserFunc     func(ctx context.Context, in domain.CreateUserInput) (*domain.User, error)
	UpdateUserFunc     func(ctx context.Context, id string, in domain.UpdateUserInput) (*domain.User, error)
	DeactivateUserFunc func(ctx context.Context, id string) (*domain.User, error)
	DeleteUserFunc     func(ctx context.Context, id string) error
}

// NewMockAdminService creates a new MockAdminService with default behaviors
func NewMockAdminService() *MockAdminService {
	return &MockAdminService{}
}

// ListUsers returns one page of users
func (m *MockAdminService) ListUsers(ctx context.Context, filter domain.UserFilter) (*domain.UserPage, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, filter)
	}
	return &domain.UserPage{Users: []*domain.User{}, Page: filter.Page, Limit: filter.Limit}, nil
}

// GetUser returns a user by id
func (m *MockAdminService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

// CreateUser creates a user
func (m *MockAdminService) CreateUser(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, in)
	}
	return &domain.User{ID: "user-new", Name: in.Name, Email: in.Email, Role: in.Role, IsActive: true}, nil
}

// UpdateUser changes a user
func (m *MockAdminService) UpdateUser(ctx context.Context, id string, in domain.UpdateUserInput) (*domain.User, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, in)
	}
	return nil, domain.ErrNotFound
}

// DeactivateUser deactivates a user
func (m *MockAdminService) DeactivateUser(ctx context.Context, id string) (*domain.User, error) {
	if m.DeactivateUserFunc != nil {
		return m.DeactivateUserFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

// DeleteUser deletes a user
func (m *MockAdminService) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AdminService = (*MockAdminService)(nil)
