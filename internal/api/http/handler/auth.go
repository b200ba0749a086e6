package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/bookworm-server/internal/logger"
	"github.com/dtroode/bookworm-server/internal/model"
)

// AuthService defines registration, login and password change.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (model.AuthResult, error)
	Login(ctx context.Context, email, password string) (model.AuthResult, error)
	ChangePassword(ctx context.Context, callerID, current, next string) error
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Auth handles the /api/auth endpoints.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register handles POST /api/auth/register.
func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Login handles POST /api/auth/login.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Me handles GET /api/auth/me.
func (h *Auth) Me(c *gin.Context) {
	user, ok := caller(c, h.contextManager)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ChangePassword handles PUT /api/auth/password.
func (h *Auth) ChangePassword(c *gin.Context) {
	user, ok := caller(c, h.contextManager)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Password updated successfully"})
}
