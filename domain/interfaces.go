package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByMobile(ctx context.Context, mobile string) (*User, error)
	// ExistsByEmailOrMobile reports whether another user holds the email or the mobile.
	// excludeID skips one user, for updates.
	ExistsByEmailOrMobile(ctx context.Context, email, mobile, excludeID string) (bool, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	CountByRole(ctx context.Context, role Role) (int64, error)
	Delete(ctx context.Context, id string) error
}

// OTPRepository defines one-time password persistence
type OTPRepository interface {
	Create(ctx context.Context, otp *OneTimePassword) error
	// Consume marks one matching unused, unexpired code as used and sets the
	// user's verified flag for the channel in the same transaction.
	// It returns ErrOTPNotFound when no row could be claimed.
	Consume(ctx context.Context, userID string, channel OTPChannel, code string, now time.Time) error
}

// ResetTokenRepository defines password-reset token persistence
type ResetTokenRepository interface {
	Create(ctx context.Context, token *PasswordResetToken) error
	FindValid(ctx context.Context, token string, now time.Time) (*PasswordResetToken, error)
	// Redeem marks the token used and stores passwordHash on its owner in one
	// transaction. It returns ErrResetTokenNotFound when the token was already claimed.
	Redeem(ctx context.Context, token, passwordHash string, now time.Time) (string, error)
}

// SessionRepository defines refresh-session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByToken(ctx context.Context, token string) (*Session, error)
	// Delete removes the session for token and reports whether this call removed it
	Delete(ctx context.Context, token string) (bool, error)
	DeleteByUserID(ctx context.Context, userID string) (int, error)
}

// ProfileRepository answers profile-completion lookups
type ProfileRepository interface {
	IsProfileCompleted(ctx context.Context, userID string) (bool, error)
}

// AuthService defines authentication business logic
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	SendOTP(ctx context.Context, target OTPTarget) (bool, error)
	VerifyOTP(ctx context.Context, target OTPTarget, code string) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) (bool, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*AuthResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) (bool, error)
	GetCurrentUser(ctx context.Context, userID string) (*User, error)
}

// AdminService defines admin user management
type AdminService interface {
	ListUsers(ctx context.Context, filter UserFilter) (*UserPage, error)
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*User, error)
	DeactivateUser(ctx context.Context, id string) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService signs and verifies the JWTs used by the auth flows
type TokenService interface {
	IssueAccessToken(claims TokenClaims) (string, time.Time, error)
	IssueRefreshToken(claims TokenClaims) (string, time.Time, error)
	VerifyAccessToken(token string) (*TokenClaims, error)
	VerifyRefreshToken(token string) (*TokenClaims, error)
	IssueResetToken(userID string) (string, time.Time, error)
	VerifyResetToken(token string) (string, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// NotificationService defines raw delivery channels
type NotificationService interface {
	SendSMS(ctx context.Context, to, message string) error
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Notifier sends the auth flow messages. Callers treat every method as best-effort.
type Notifier interface {
	SendWelcomeEmail(ctx context.Context, user *User) error
	SendLoginNotification(ctx context.Context, email string, mobile *string) error
	SendPasswordResetEmail(ctx context.Context, user *User, token string) error
	SendOTP(ctx context.Context, channel OTPChannel, destination, code string) error
}

// PolicyService manages route access policies. Add and Remove report whether the policy set changed.
type PolicyService interface {
	AddPolicy(role, resource, action string) (bool, error)
	RemovePolicy(role, resource, action string) (bool, error)
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() ([][]string, error)
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
}
