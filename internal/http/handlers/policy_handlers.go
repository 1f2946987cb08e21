package handlers

import (
	"net/http"

	"github.com/Brijesh59/kite/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PolicyHandlers struct {
	policies domain.PolicyService
	log      *zap.Logger
}

func NewPolicyHandlers(policies domain.PolicyService, log *zap.Logger) *PolicyHandlers {
	return &PolicyHandlers{policies: policies, log: log}
}

type policyReq struct {
	Role     string `json:"role"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

func (h *PolicyHandlers) List(c *gin.Context) {
	policies, err := h.policies.GetPolicies()
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]policyReq, 0, len(policies))
	for _, p := range policies {
		if len(p) < 3 {
			continue
		}
		out = append(out, policyReq{Role: p[0], Resource: p[1], Action: p[2]})
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"policies": out}})
}

func (h *PolicyHandlers) Add(c *gin.Context) {
	var r policyReq
	if !bind(c, &r) {
		return
	}
	added, err := h.policies.AddPolicy(r.Role, r.Resource, r.Action)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !added {
		respondError(c, h.log, domain.ErrPolicyExists)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Policy added successfully"})
}

func (h *PolicyHandlers) Remove(c *gin.Context) {
	var r policyReq
	if !bind(c, &r) {
		return
	}
	removed, err := h.policies.RemovePolicy(r.Role, r.Resource, r.Action)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !removed {
		respondError(c, h.log, domain.ErrPolicyNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Policy removed successfully"})
}
