package mocks

import (
	"context"

	"github.com/Brijesh59/kite/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	RegisterFunc       func(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error)
	LoginFunc          func(ctx context.Context, in domain.LoginInput) (*domain.AuthResult, error)
	SendOTPFunc        func(ctx context.Context, target domain.OTPTarget) (bool, error)
	VerifyOTPFunc      func(ctx context.Context, target domain.OTPTarget, code string) (*domain.AuthResult, error)
	ForgotPasswordFunc func(ctx context.Context, email string) (bool, error)
	ResetPasswordFunc  func(ctx context.Context, token, newPassword string) (*domain.AuthResult, error)
	RefreshTokensFunc  func(ctx context.Context, refreshToken string) (*domain.AuthTokens, error)
	LogoutFunc         func(ctx context.Context, refreshToken string) (bool, error)
	GetCurrentUserFunc func(ctx context.Context, userID string) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func defaultResult() *domain.AuthResult {
	return &domain.AuthResult{
		User:   &domain.User{ID: "user-1", Name: "Test User", Email: "test@example.com", Role: domain.RoleUser, IsActive: true},
		Tokens: domain.AuthTokens{AccessToken: "mock_access_token", RefreshToken: "mock_refresh_token"},
	}
}

// Register registers a new user
func (m *MockAuthService) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return defaultResult(), nil
}

// Login authenticates a user
func (m *MockAuthService) Login(ctx context.Context, in domain.LoginInput) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, in)
	}
	return defaultResult(), nil
}

// SendOTP issues a one-time password
func (m *MockAuthService) SendOTP(ctx context.Context, target domain.OTPTarget) (bool, error) {
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, target)
	}
	return true, nil
}

// VerifyOTP consumes a one-time password
func (m *MockAuthService) VerifyOTP(ctx context.Context, target domain.OTPTarget, code string) (*domain.AuthResult, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, target, code)
	}
	return defaultResult(), nil
}

// ForgotPassword starts the password reset flow
func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) (bool, error) {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return true, nil
}

// ResetPassword completes the password reset flow
func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) (*domain.AuthResult, error) {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return defaultResult(), nil
}

// RefreshTokens rotates a refresh token
func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*domain.AuthTokens, error) {
	if m.RefreshTokensFunc != nil {
		return m.RefreshTokensFunc(ctx, refreshToken)
	}
	return &domain.AuthTokens{AccessToken: "new_access_token", RefreshToken: "new_refresh_token"}, nil
}

// Logout deletes a session
func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, refreshToken)
	}
	return true, nil
}

// GetCurrentUser loads the authenticated user
func (m *MockAuthService) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetCurrentUserFunc != nil {
		return m.GetCurrentUserFunc(ctx, userID)
	}
	return defaultResult().User, nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
