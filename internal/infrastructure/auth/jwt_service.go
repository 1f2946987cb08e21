package auth

import (
	"errors"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const resetPurpose = "password_reset"

// ResetTokenTTL is the lifetime of password-reset tokens
const ResetTokenTTL = 15 * time.Minute

// Claims is the signed payload of every token this service issues
type Claims struct {
	UserID  string `json:"id"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs claims with secret and an expiry of now+ttl.
// A random jti keeps tokens issued within the same second distinct.
func Issue(claims Claims, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm and expiry. Every failure is ErrInvalidToken.
func Verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// JWTServiceImpl implements domain.TokenService
type JWTServiceImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService creates a new JWT service. Access and refresh tokens use distinct secrets.
func NewJWTService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTServiceImpl {
	return &JWTServiceImpl{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccessToken implements domain.TokenService
func (j *JWTServiceImpl) IssueAccessToken(c domain.TokenClaims) (string, time.Time, error) {
	return Issue(identityClaims(c), j.accessSecret, j.accessTTL)
}

// IssueRefreshToken implements domain.TokenService
func (j *JWTServiceImpl) IssueRefreshToken(c domain.TokenClaims) (string, time.Time, error) {
	return Issue(identityClaims(c), j.refreshSecret, j.refreshTTL)
}

// VerifyAccessToken implements domain.TokenService
func (j *JWTServiceImpl) VerifyAccessToken(token string) (*domain.TokenClaims, error) {
	return j.verifyIdentity(token, j.accessSecret)
}

// VerifyRefreshToken implements domain.TokenService
func (j *JWTServiceImpl) VerifyRefreshToken(token string) (*domain.TokenClaims, error) {
	return j.verifyIdentity(token, j.refreshSecret)
}

// IssueResetToken implements domain.TokenService
func (j *JWTServiceImpl) IssueResetToken(userID string) (string, time.Time, error) {
	return Issue(Claims{UserID: userID, Purpose: resetPurpose}, j.accessSecret, ResetTokenTTL)
}

// VerifyResetToken implements domain.TokenService
func (j *JWTServiceImpl) VerifyResetToken(token string) (string, error) {
	claims, err := Verify(token, j.accessSecret)
	if err != nil {
		return "", err
	}
	if claims.Purpose != resetPurpose {
		return "", domain.ErrInvalidToken
	}
	return claims.UserID, nil
}

// AccessTTL implements domain.TokenService
func (j *JWTServiceImpl) AccessTTL() time.Duration { return j.accessTTL }

// RefreshTTL implements domain.TokenService
func (j *JWTServiceImpl) RefreshTTL() time.Duration { return j.refreshTTL }

func (j *JWTServiceImpl) verifyIdentity(token string, secret []byte) (*domain.TokenClaims, error) {
	claims, err := Verify(token, secret)
	if err != nil {
		return nil, err
	}
	// reset tokens share the access secret and must not pass as identity tokens
	if claims.Purpose != "" {
		return nil, domain.ErrInvalidToken
	}

	tc := &domain.TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   domain.Role(claims.Role),
	}
	if claims.IssuedAt != nil {
		tc.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		tc.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return tc, nil
}

func identityClaims(c domain.TokenClaims) Claims {
	return Claims{UserID: c.UserID, Email: c.Email, Role: string(c.Role)}
}

var _ domain.TokenService = (*JWTServiceImpl)(nil)
