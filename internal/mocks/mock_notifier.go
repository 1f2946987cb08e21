package mocks

import (
	"context"
	"sync"

	"github.com/Brijesh59/kite/domain"
)

// Notification is one message captured by MockNotifier
type Notification struct {
	Kind        string
	Destination string
	Payload     string
}

// MockNotifier implements domain.Notifier and records every call
type MockNotifier struct {
	SendWelcomeEmailFunc       func(ctx context.Context, user *domain.User) error
	SendLoginNotificationFunc  func(ctx context.Context, email string, mobile *string) error
	SendPasswordResetEmailFunc func(ctx context.Context, user *domain.User, token string) error
	SendOTPFunc                func(ctx context.Context, channel domain.OTPChannel, destination, code string) error

	mu   sync.Mutex
	sent []Notification
}

// NewMockNotifier creates a new MockNotifier with default behaviors
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// SendWelcomeEmail records a welcome email
func (m *MockNotifier) SendWelcomeEmail(ctx context.Context, user *domain.User) error {
	m.record("welcome", user.Email, user.Name)
	if m.SendWelcomeEmailFunc != nil {
		return m.SendWelcomeEmailFunc(ctx, user)
	}
	return nil
}

// SendLoginNotification records a login notification
func (m *MockNotifier) SendLoginNotification(ctx context.Context, email string, mobile *string) error {
	payload := ""
	if mobile != nil {
		payload = *mobile
	}
	m.record("login", email, payload)
	if m.SendLoginNotificationFunc != nil {
		return m.SendLoginNotificationFunc(ctx, email, mobile)
	}
	return nil
}

// SendPasswordResetEmail records a reset email with its token
func (m *MockNotifier) SendPasswordResetEmail(ctx context.Context, user *domain.User, token string) error {
	m.record("reset", user.Email, token)
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, user, token)
	}
	return nil
}

// SendOTP records an OTP delivery with its code
func (m *MockNotifier) SendOTP(ctx context.Context, channel domain.OTPChannel, destination, code string) error {
	m.record("otp:"+string(channel), destination, code)
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, channel, destination, code)
	}
	return nil
}

// Sent returns a snapshot of the recorded notifications
func (m *MockNotifier) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, len(m.sent))
	copy(out, m.sent)
	return out
}

// Last returns the most recent notification of kind
func (m *MockNotifier) Last(kind string) (Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Kind == kind {
			return m.sent[i], true
		}
	}
	return Notification{}, false
}

func (m *MockNotifier) record(kind, destination, payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Notification{Kind: kind, Destination: destination, Payload: payload})
}

// Compile-time interface compliance verification
var _ domain.Notifier = (*MockNotifier)(nil)
