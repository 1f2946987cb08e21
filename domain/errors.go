package domain

import (
	"errors"
	"net/http"
)

// Store errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrOTPNotFound        = errors.New("otp not found or already used")
	ErrSessionNotFound    = errors.New("session not found")
	ErrResetTokenNotFound = errors.New("reset token not found or already used")
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ErrorKind classifies a failure for the transport boundary
type ErrorKind string

const (
	KindBadRequest            ErrorKind = "BAD_REQUEST"
	KindAlreadyExists         ErrorKind = "ALREADY_EXISTS"
	KindInvalidCredentials    ErrorKind = "INVALID_CREDENTIALS"
	KindInvalidOtp            ErrorKind = "INVALID_OTP"
	KindMissingCredential     ErrorKind = "MISSING_CREDENTIAL"
	KindInsufficientPrivilege ErrorKind = "INSUFFICIENT_PRIVILEGE"
	KindInvalidRefreshToken   ErrorKind = "INVALID_REFRESH_TOKEN"
	KindInvalidOrExpiredToken ErrorKind = "INVALID_OR_EXPIRED_TOKEN"
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindLastAdmin             ErrorKind = "LAST_ADMIN"
	KindInvalidRole           ErrorKind = "INVALID_ROLE"
	KindNoToken               ErrorKind = "NO_TOKEN"
	KindAccessTokenInvalid    ErrorKind = "ACCESS_TOKEN_INVALID"
	KindAuthRequired          ErrorKind = "AUTHENTICATION_REQUIRED"
	KindForbidden             ErrorKind = "FORBIDDEN"
	KindInvalidPolicy         ErrorKind = "INVALID_POLICY"
	KindPolicyNotFound        ErrorKind = "POLICY_NOT_FOUND"
	KindPolicyExists          ErrorKind = "POLICY_EXISTS"
	KindInternal              ErrorKind = "INTERNAL"
)

// AppError is a failure with a client-safe message and an HTTP status.
// Two AppErrors match under errors.Is when their kinds are equal; every
// sentinel owns its kind.
type AppError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind
}

// WithStatus returns a copy of e reported with another status
func (e *AppError) WithStatus(status int) *AppError {
	cp := *e
	cp.Status = status
	return &cp
}

// WithMessage returns a copy of e with another message
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	return &cp
}

// NewBadRequest builds a 400 error carrying msg
func NewBadRequest(msg string) *AppError {
	return &AppError{Kind: KindBadRequest, Status: http.StatusBadRequest, Message: msg}
}

// Service errors
var (
	ErrAlreadyExists = &AppError{
		Kind: KindAlreadyExists, Status: http.StatusBadRequest,
		Message: "User already exists with this email or mobile",
	}
	ErrInvalidCredentials = &AppError{
		Kind: KindInvalidCredentials, Status: http.StatusUnauthorized,
		Message: "Invalid credentials",
	}
	ErrInvalidOtp = &AppError{
		Kind: KindInvalidOtp, Status: http.StatusUnauthorized,
		Message: "Invalid or expired OTP",
	}
	ErrMissingCredential = &AppError{
		Kind: KindMissingCredential, Status: http.StatusUnauthorized,
		Message: "Password or OTP is required",
	}
	ErrInsufficientPrivilege = &AppError{
		Kind: KindInsufficientPrivilege, Status: http.StatusForbidden,
		Message: "Access denied. Admin privileges required.",
	}
	ErrInvalidRefreshToken = &AppError{
		Kind: KindInvalidRefreshToken, Status: http.StatusUnauthorized,
		Message: "Invalid refresh token",
	}
	ErrInvalidOrExpiredToken = &AppError{
		Kind: KindInvalidOrExpiredToken, Status: http.StatusBadRequest,
		Message: "Invalid or expired reset token",
	}
	ErrNotFound = &AppError{
		Kind: KindNotFound, Status: http.StatusBadRequest,
		Message: "User not found",
	}
	ErrLastAdmin = &AppError{
		Kind: KindLastAdmin, Status: http.StatusBadRequest,
		Message: "Cannot delete the last admin user",
	}
	ErrInvalidRole = &AppError{
		Kind: KindInvalidRole, Status: http.StatusBadRequest,
		Message: "Invalid role",
	}
)

// Policy errors
var (
	ErrInvalidPolicy = &AppError{
		Kind: KindInvalidPolicy, Status: http.StatusBadRequest,
		Message: "Role, resource and action are required",
	}
	ErrPolicyNotFound = &AppError{
		Kind: KindPolicyNotFound, Status: http.StatusNotFound,
		Message: "Policy not found",
	}
	ErrPolicyExists = &AppError{
		Kind: KindPolicyExists, Status: http.StatusConflict,
		Message: "Policy already exists",
	}
)

// Authorization errors
var (
	ErrNoToken = &AppError{
		Kind: KindNoToken, Status: http.StatusUnauthorized,
		Message: "No token provided, authorization denied",
	}
	ErrAccessTokenInvalid = &AppError{
		Kind: KindAccessTokenInvalid, Status: http.StatusUnauthorized,
		Message: "Access Token is invalid or expired",
	}
	ErrAuthenticationRequired = &AppError{
		Kind: KindAuthRequired, Status: http.StatusUnauthorized,
		Message: "Authentication required",
	}
	ErrInsufficientPermissions = &AppError{
		Kind: KindForbidden, Status: http.StatusForbidden,
		Message: "Insufficient permissions",
	}
)

// ErrInternal is reported for every failure without a client-safe message
var ErrInternal = &AppError{
	Kind: KindInternal, Status: http.StatusInternalServerError,
	Message: "Something went wrong",
}
