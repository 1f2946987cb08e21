package middleware

import (
	"slices"

	"github.com/Brijesh59/kite/domain"
	"github.com/gin-gonic/gin"
)

// ContextKeyIdentity is the gin context key of the authenticated *Identity
const ContextKeyIdentity = "identity"

// Identity is the caller as stated by a verified access token. It is not re-read from the store.
type Identity struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// AuthMW authenticates requests with access tokens
type AuthMW struct {
	tokenSvc domain.TokenService
	resolver *AudienceResolver
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(tokenSvc domain.TokenService, resolver *AudienceResolver) *AuthMW {
	return &AuthMW{tokenSvc: tokenSvc, resolver: resolver}
}

// Authenticate requires a valid access token and stores the caller's Identity
func (mw *AuthMW) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := mw.resolver.AccessToken(c.Request)
		if token == "" {
			AbortWithError(c, domain.ErrNoToken)
			return
		}

		claims, err := mw.tokenSvc.VerifyAccessToken(token)
		if err != nil {
			AbortWithError(c, domain.ErrAccessTokenInvalid)
			return
		}

		c.Set(ContextKeyIdentity, &Identity{ID: claims.UserID, Email: claims.Email, Role: claims.Role})
		c.Next()
	}
}

// RequireAdmin lets only ADMIN identities through
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			AbortWithError(c, domain.ErrAuthenticationRequired)
			return
		}
		if id.Role != domain.RoleAdmin {
			AbortWithError(c, domain.ErrInsufficientPrivilege)
			return
		}
		c.Next()
	}
}

// RequireRole lets through identities holding one of roles
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			AbortWithError(c, domain.ErrAuthenticationRequired)
			return
		}
		if !slices.Contains(roles, id.Role) {
			AbortWithError(c, domain.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Authenticate
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}

// AbortWithError stops the chain with the {statusCode, message} body of err
func AbortWithError(c *gin.Context, err *domain.AppError) {
	c.AbortWithStatusJSON(err.Status, gin.H{"statusCode": err.Status, "message": err.Message})
}
