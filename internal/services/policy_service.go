package services

import (
	"strings"

	"github.com/Brijesh59/kite/domain"
	"github.com/casbin/casbin/v2"
)

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) RemovePolicy(params ...interface{}) (bool, error) {
	return w.enforcer.RemovePolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

// PolicyServiceImpl implements domain.PolicyService using Casbin.
// The gorm adapter persists every add and remove as it happens.
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: NewCasbinEnforcerWrapper(enforcer),
	}
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) (bool, error) {
	role, resource, action, err := normalizePolicy(role, resource, action)
	if err != nil {
		return false, err
	}
	return p.enforcer.AddPolicy(role, resource, action)
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) (bool, error) {
	role, resource, action, err := normalizePolicy(role, resource, action)
	if err != nil {
		return false, err
	}
	return p.enforcer.RemovePolicy(role, resource, action)
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() ([][]string, error) {
	return p.enforcer.GetPolicy()
}

// normalizePolicy upper-cases role and method and rejects unknown roles
func normalizePolicy(role, resource, action string) (string, string, string, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	resource = strings.TrimSpace(resource)
	action = strings.ToUpper(strings.TrimSpace(action))
	if role == "" || resource == "" || action == "" {
		return "", "", "", domain.ErrInvalidPolicy
	}
	if !domain.Role(role).Valid() {
		return "", "", "", domain.ErrInvalidRole
	}
	return role, resource, action, nil
}
