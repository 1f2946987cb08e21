package domain

import "time"

// Role is one of the closed set of platform roles
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleOrganiser Role = "ORGANISER"
	RoleArtist    Role = "ARTIST"
	RoleUser      Role = "USER"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganiser, RoleArtist, RoleUser:
		return true
	}
	return false
}

// OTPChannel is the delivery channel of a one-time password
type OTPChannel string

const (
	OTPChannelEmail  OTPChannel = "EMAIL"
	OTPChannelMobile OTPChannel = "MOBILE"
)

// TokenTypeResetPassword is the only password-reset token type
const TokenTypeResetPassword = "RESET_PASSWORD"

// User represents a user in the system
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Mobile           *string   `json:"mobile"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	IsActive         bool      `json:"isActive"`
	IsEmailVerified  bool      `json:"isEmailVerified"`
	IsMobileVerified bool      `json:"isMobileVerified"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// OneTimePassword is a short-lived numeric code bound to a user and a channel
type OneTimePassword struct {
	ID        string
	UserID    string
	Channel   OTPChannel
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Session represents one live refresh token
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// PasswordResetToken is a single-use credential for the forgot-password flow
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	Type      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// AuthTokens is an access/refresh pair
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User   *User      `json:"user"`
	Tokens AuthTokens `json:"tokens"`
}

// TokenClaims are the identity claims carried by access and refresh tokens
type TokenClaims struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// RegisterInput is the payload of a self-service registration
type RegisterInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}

// LoginInput carries one identity selector and one credential.
// Audience is AudienceAdmin when the caller declared the admin client type.
type LoginInput struct {
	Email    string
	Mobile   string
	Password string
	OTP      string
	Audience Audience
}

// OTPTarget selects a user by email or by mobile
type OTPTarget struct {
	Email  string
	Mobile string
}

// Channel returns the OTP channel implied by the selector
func (t OTPTarget) Channel() OTPChannel {
	if t.Email != "" {
		return OTPChannelEmail
	}
	return OTPChannelMobile
}

// UserFilter narrows an admin user listing
type UserFilter struct {
	Page   int
	Limit  int
	Search string
	Role   Role
}

// UserPage is one page of users
type UserPage struct {
	Users      []*User `json:"users"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// CreateUserInput is an admin-created user
type CreateUserInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
	Role     Role
}

// UpdateUserInput holds the fields an admin may change; nil means unchanged
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Mobile   *string
	Role     *Role
	IsActive *bool
}
