package middleware

import (
	"github.com/Brijesh59/kite/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PolicyMW checks the caller's role against the route policies
type PolicyMW struct {
	policies domain.PolicyService
	log      *zap.Logger
}

// NewPolicyMW creates new policy middleware wrapper
func NewPolicyMW(policies domain.PolicyService, log *zap.Logger) *PolicyMW {
	return &PolicyMW{policies: policies, log: log}
}

// Enforce allows the request when a policy grants (role, path, method). Must run after Authenticate.
func (mw *PolicyMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			AbortWithError(c, domain.ErrAuthenticationRequired)
			return
		}

		allowed, err := mw.policies.CheckPermission(string(id.Role), c.Request.URL.Path, c.Request.Method)
		if err != nil {
			mw.log.Error("policy check failed",
				zap.String("role", string(id.Role)),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			AbortWithError(c, domain.ErrInternal)
			return
		}
		if !allowed {
			AbortWithError(c, domain.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}
