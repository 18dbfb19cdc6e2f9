package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/programming666/personal-blog/internal/i18n"
	"github.com/programming666/personal-blog/internal/middleware"
	"github.com/programming666/personal-blog/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Username          string `json:"username" binding:"required" example:"johndoe"`
	Email             string `json:"email" binding:"required" example:"user@example.com"`
	Password          string `json:"password" binding:"required" example:"password123"`
	PasswordConfirm   string `json:"passwordConfirm" binding:"required" example:"password123"`
	TurnstileResponse string `json:"cf-turnstile-response" example:"0.turnstile-token"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email             string `json:"email" binding:"required" example:"user@example.com"`
	Password          string `json:"password" binding:"required" example:"password123"`
	TurnstileResponse string `json:"cf-turnstile-response" example:"0.turnstile-token"`
}

// AdminLoginRequest represents administrator login request body
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

func (h *AuthHandler) respondAuth(c *gin.Context, status int, key string, resp *service.AuthResponse) {
	c.JSON(status, gin.H{
		"success": true,
		"message": i18n.T(c.GetString("lang"), key),
		"token":   resp.Token,
		"user":    resp.User,
	})
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration"
// @Success 201 {object} service.AuthResponse "Registration successful"
// @Failure 400 {object} Response "Invalid input or account exists"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	// the Turnstile middleware may already have read the body
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badRequest(c, "error.invalid_request")
		return
	}

	resp, err := h.authService.Register(&service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		respondError(c, err, "error.not_found")
		return
	}
	h.respondAuth(c, http.StatusCreated, "auth.registered", resp)
}

// Login handles email and password login
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} service.AuthResponse "Login successful"
// @Failure 401 {object} Response "Invalid credentials"
// @Failure 403 {object} Response "Account disabled"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badRequest(c, "error.invalid_request")
		return
	}

	resp, err := h.authService.Login(&service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		respondError(c, err, "error.not_found")
		return
	}
	h.respondAuth(c, http.StatusOK, "auth.login_success", resp)
}

// AdminLogin signs the configured administrator in
// @Summary Administrator login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Credentials"
// @Success 200 {object} service.AuthResponse "Login successful"
// @Failure 401 {object} Response "Invalid credentials"
// @Router /admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "error.invalid_request")
		return
	}

	resp, err := h.authService.AdminLogin(&service.AdminLoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		respondError(c, err, "error.not_found")
		return
	}
	h.respondAuth(c, http.StatusOK, "auth.login_success", resp)
}

// Me returns the caller
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Identity "Caller"
// @Failure 401 {object} Response "Unauthorized"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    middleware.GetIdentity(c),
	})
}
