package handlers

import (
	"net/http"

	"github.com/Brijesh59/kite/domain"
	"github.com/Brijesh59/kite/internal/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandlers contains authentication-related HTTP handlers
type AuthHandlers struct {
	authSvc     domain.AuthService
	profileRepo domain.ProfileRepository
	audiences   *middleware.AudienceResolver
	log         *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, profileRepo domain.ProfileRepository, audiences *middleware.AudienceResolver, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		authSvc:     authSvc,
		profileRepo: profileRepo,
		audiences:   audiences,
		log:         log,
	}
}

// RegisterRequest represents user registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Mobile   string `json:"mobile" binding:"omitempty,mobile"`
	Password string `json:"password" binding:"required,strongpassword"`
}

// LoginRequest carries an email or mobile plus a password or an OTP
type LoginRequest struct {
	Email      string `json:"email" binding:"omitempty,email"`
	Mobile     string `json:"mobile" binding:"omitempty,mobile"`
	Password   string `json:"password"`
	OTP        string `json:"otp" binding:"omitempty,len=6,number"`
	ClientType string `json:"clientType" binding:"omitempty,oneof=web admin"`
}

// OTPSendRequest selects the OTP recipient
type OTPSendRequest struct {
	Email  string `json:"email" binding:"omitempty,email"`
	Mobile string `json:"mobile" binding:"omitempty,mobile"`
}

// OTPVerifyRequest represents OTP verification request
type OTPVerifyRequest struct {
	Email  string `json:"email" binding:"omitempty,email"`
	Mobile string `json:"mobile" binding:"omitempty,mobile"`
	OTP    string `json:"otp" binding:"required,len=6,number"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,strongpassword"`
}

// RefreshRequest optionally carries the refresh token in the body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

const errMissingSelector = "Either email or mobile number is required"

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), domain.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.audiences.SetAuthCookies(c, domain.AudienceWeb, result.Tokens)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    result,
	})
}

// Login handles password and OTP login. clientType "admin" restricts login to ADMIN users
// and writes the admin cookie pair.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}
	if req.Email == "" && req.Mobile == "" {
		badRequest(c, errMissingSelector)
		return
	}

	audience, _ := domain.ParseAudience(req.ClientType)
	result, err := h.authSvc.Login(c.Request.Context(), domain.LoginInput{
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
		OTP:      req.OTP,
		Audience: audience,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.audiences.SetAuthCookies(c, audience, result.Tokens)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    result,
	})
}

// SendOTP handles OTP generation and delivery
func (h *AuthHandlers) SendOTP(c *gin.Context) {
	var req OTPSendRequest
	if !bind(c, &req) {
		return
	}
	if req.Email == "" && req.Mobile == "" {
		badRequest(c, errMissingSelector)
		return
	}

	if _, err := h.authSvc.SendOTP(c.Request.Context(), domain.OTPTarget{Email: req.Email, Mobile: req.Mobile}); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// VerifyOTP handles OTP verification
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if !bind(c, &req) {
		return
	}
	if req.Email == "" && req.Mobile == "" {
		badRequest(c, errMissingSelector)
		return
	}

	result, err := h.authSvc.VerifyOTP(c.Request.Context(), domain.OTPTarget{Email: req.Email, Mobile: req.Mobile}, req.OTP)
	if err != nil {
		respondErrorAs(c, h.log, err, domain.ErrInvalidOtp, http.StatusBadRequest)
		return
	}

	h.audiences.SetAuthCookies(c, domain.AudienceWeb, result.Tokens)
	c.JSON(http.StatusOK, gin.H{
		"message": "OTP verified successfully",
		"data":    result,
	})
}

// ForgotPassword always answers 200 so that callers cannot probe for accounts
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bind(c, &req) {
		return
	}

	if _, err := h.authSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.log.Error("forgot password failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

// ResetPassword redeems a reset token
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.authSvc.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.audiences.SetAuthCookies(c, domain.AudienceWeb, result.Tokens)
	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successful",
		"data":    result,
	})
}

// Refresh rotates the refresh token found in the cookies or the body
func (h *AuthHandlers) Refresh(c *gin.Context) {
	cred := h.audiences.RefreshToken(c.Request, bodyRefreshToken(c))
	if cred.Token == "" {
		badRequest(c, "Refresh token is required")
		return
	}

	tokens, err := h.authSvc.RefreshTokens(c.Request.Context(), cred.Token)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.audiences.SetAuthCookies(c, cred.Audience, *tokens)
	c.JSON(http.StatusOK, gin.H{
		"message": "Tokens refreshed successfully",
		"data":    gin.H{"tokens": tokens},
	})
}

// Logout deletes the session of the presented refresh token and clears cookies.
// It succeeds whether or not a session existed.
func (h *AuthHandlers) Logout(c *gin.Context) {
	cred := h.audiences.RefreshToken(c.Request, bodyRefreshToken(c))
	if cred.Token != "" {
		if _, err := h.authSvc.Logout(c.Request.Context(), cred.Token); err != nil {
			h.log.Warn("logout failed to remove session", zap.Error(err))
		}
	}

	h.audiences.ClearAuthCookies(c, cred.Audience, cred.FromCookie)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me returns the authenticated user and the profile-completion flag
func (h *AuthHandlers) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		middleware.AbortWithError(c, domain.ErrAuthenticationRequired.WithMessage("User not authenticated"))
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), id.ID)
	if err != nil {
		respondErrorAs(c, h.log, err, domain.ErrNotFound, http.StatusNotFound)
		return
	}

	completed, err := h.profileRepo.IsProfileCompleted(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"user":    user,
			"profile": gin.H{"completed": completed},
		},
	})
}

// bind decodes the JSON body into req and answers 400 with the first validation message
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, validationMessage(err))
		return false
	}
	return true
}

// bodyRefreshToken reads an optional refreshToken field; a missing or invalid body yields ""
func bodyRefreshToken(c *gin.Context) string {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}
