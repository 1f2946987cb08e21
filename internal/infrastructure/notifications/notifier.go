package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/Brijesh59/kite/domain"
)

// SMSSender sends text messages
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// EmailSender sends HTML email
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Channels joins an SMS and an email sender into a domain.NotificationService
type Channels struct {
	SMSSender
	EmailSender
}

var _ domain.NotificationService = Channels{}

const (
	loginSMS = "Login successful! If this wasn't you, contact support."

	welcomeTmpl = `<h1>Welcome %s!</h1>
<p>Thank you for registering with Kite.</p>
<p>You can now complete your profile to get started.</p>
<p>Best regards,<br/>The Kite Team</p>`

	resetTmpl = `<h1>Password Reset Request</h1>
<p>Hi %s,</p>
<p>You requested to reset your password. Click the link below to reset it:</p>
<p><a href="%s">%s</a></p>
<p>This link expires in 15 minutes.</p>
<p>If you didn't request this, please ignore this email.</p>
<p>Best regards,<br/>The Kite Team</p>`

	loginTmpl = `<p>Dear User,</p>
<p>You have successfully logged in to Kite!</p>
<p>If this was not you, please contact support immediately.</p>
<p>Best regards,<br/>The Kite Team</p>`

	otpTmpl = `<p>Your one-time password is <strong>%s</strong>.</p>
<p>It expires in 10 minutes.</p>`
)

// NotifierImpl renders the auth flow messages and hands them to the delivery channels
type NotifierImpl struct {
	channels  domain.NotificationService
	webAppURL string
}

// NewNotifier creates a new notifier. webAppURL prefixes password-reset links.
func NewNotifier(channels domain.NotificationService, webAppURL string) *NotifierImpl {
	return &NotifierImpl{channels: channels, webAppURL: webAppURL}
}

// SendWelcomeEmail implements domain.Notifier
func (n *NotifierImpl) SendWelcomeEmail(ctx context.Context, user *domain.User) error {
	return n.channels.SendEmail(ctx, user.Email, "Welcome!", fmt.Sprintf(welcomeTmpl, user.Name))
}

// SendLoginNotification implements domain.Notifier. The SMS is sent only when a mobile is known.
func (n *NotifierImpl) SendLoginNotification(ctx context.Context, email string, mobile *string) error {
	err := n.channels.SendEmail(ctx, email, "Login Notification", loginTmpl)
	if mobile != nil && *mobile != "" {
		err = errors.Join(err, n.channels.SendSMS(ctx, *mobile, loginSMS))
	}
	return err
}

// SendPasswordResetEmail implements domain.Notifier
func (n *NotifierImpl) SendPasswordResetEmail(ctx context.Context, user *domain.User, token string) error {
	link := n.ResetURL(token)
	return n.channels.SendEmail(ctx, user.Email, "Reset Your Password", fmt.Sprintf(resetTmpl, user.Name, link, link))
}

// SendOTP implements domain.Notifier
func (n *NotifierImpl) SendOTP(ctx context.Context, channel domain.OTPChannel, destination, code string) error {
	if channel == domain.OTPChannelMobile {
		return n.channels.SendSMS(ctx, destination, fmt.Sprintf("Your Kite OTP is %s. It expires in 10 minutes.", code))
	}
	return n.channels.SendEmail(ctx, destination, "Your OTP Code", fmt.Sprintf(otpTmpl, code))
}

// ResetURL builds the password-reset link for token
func (n *NotifierImpl) ResetURL(token string) string {
	return n.webAppURL + "/auth/reset-password?token=" + token
}

var _ domain.Notifier = (*NotifierImpl)(nil)
