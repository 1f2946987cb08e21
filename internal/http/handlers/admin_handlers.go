package handlers

import (
	"net/http"

	"github.com/Brijesh59/kite/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandlers serves user management for the admin panel
type AdminHandlers struct {
	adminSvc domain.AdminService
	log      *zap.Logger
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(adminSvc domain.AdminService, log *zap.Logger) *AdminHandlers {
	return &AdminHandlers{adminSvc: adminSvc, log: log}
}

// ListUsersQuery are the listing query parameters
type ListUsersQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	Role   string `form:"role"`
}

// CreateUserRequest is an admin-created account
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Mobile   string `json:"mobile" binding:"omitempty,mobile"`
	Password string `json:"password" binding:"required,strongpassword"`
	Role     string `json:"role"`
}

// UpdateUserRequest changes only the fields present in the body
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Mobile   *string `json:"mobile" binding:"omitempty,mobile"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// ListUsers handles GET /users
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	var q ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.adminSvc.ListUsers(c.Request.Context(), domain.UserFilter{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
		Role:   domain.Role(q.Role),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users retrieved successfully",
		"data":    gin.H{"users": page.Users},
		"pagination": gin.H{
			"page":       page.Page,
			"limit":      page.Limit,
			"total":      page.Total,
			"totalPages": page.TotalPages,
		},
	})
}

// GetUser handles GET /users/:id
func (h *AdminHandlers) GetUser(c *gin.Context) {
	user, err := h.adminSvc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User retrieved successfully", "data": gin.H{"user": user}})
}

// CreateUser handles POST /users
func (h *AdminHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.adminSvc.CreateUser(c.Request.Context(), domain.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "data": gin.H{"user": user}})
}

// UpdateUser handles PUT /users/:id
func (h *AdminHandlers) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !bind(c, &req) {
		return
	}

	in := domain.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}

	user, err := h.adminSvc.UpdateUser(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "data": gin.H{"user": user}})
}

// DeactivateUser handles PATCH /users/:id/deactivate
func (h *AdminHandlers) DeactivateUser(c *gin.Context) {
	user, err := h.adminSvc.DeactivateUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated successfully", "data": gin.H{"user": user}})
}

// DeleteUser handles DELETE /users/:id
func (h *AdminHandlers) DeleteUser(c *gin.Context) {
	if err := h.adminSvc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// respond reports a missing user as 404 on every admin route
func (h *AdminHandlers) respond(c *gin.Context, err error) {
	respondErrorAs(c, h.log, err, domain.ErrNotFound, http.StatusNotFound)
}
