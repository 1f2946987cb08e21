package auth

import (
	"fmt"

	"github.com/Brijesh59/kite/domain"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// rbacModel matches (role, route, method). A policy action of "*" allows every method.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// DefaultPolicies are seeded when the policy table is empty
var DefaultPolicies = [][]string{
	{string(domain.RoleAdmin), "/api/admin/*", "*"},
}

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService builds an enforcer whose policies live in the casbin_rule table
func NewCasbinService(db *gorm.DB) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}
	e, err := casbin.NewEnforcer(m, adp)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load casbin policies: %w", err)
	}
	return &CasbinService{E: e}, nil
}

// SeedDefaults adds DefaultPolicies when no policy exists yet.
// It reports whether anything was seeded.
func (s *CasbinService) SeedDefaults() (bool, error) {
	policies, err := s.E.GetPolicy()
	if err != nil {
		return false, err
	}
	if len(policies) > 0 {
		return false, nil
	}
	for _, p := range DefaultPolicies {
		if _, err := s.E.AddPolicy(p[0], p[1], p[2]); err != nil {
			return false, fmt.Errorf("failed to seed policy %v: %w", p, err)
		}
	}
	return true, nil
}
