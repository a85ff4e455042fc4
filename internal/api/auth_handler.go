package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"promptpilot-backend/internal/core"
	"promptpilot-backend/internal/middleware"
	"promptpilot-backend/internal/models"
)

// AuthHandler exposes the credential proxy over REST.
type AuthHandler struct {
	authService core.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as core.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: as, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure(CodeMissingFields, "Email and password are required"))
		return
	}

	user, customToken, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.respondAuthError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Success: true, User: user, CustomToken: customToken})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure(CodeMissingFields, "Email and password are required"))
		return
	}

	user, customToken, err := h.authService.LoginWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Success: true, User: user, CustomToken: customToken})
}

// GoogleLogin handles POST /api/auth/google.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req models.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure(CodeMissingFields, "Access token is required"))
		return
	}

	user, customToken, err := h.authService.LoginWithGoogle(c.Request.Context(), req.AccessToken)
	if err != nil {
		h.respondAuthError(c, "google login", err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Success: true, User: user, CustomToken: customToken})
}

// DeleteAccount handles DELETE /api/auth/account. Requires a verified
// bearer token; removes the identity record and the profile document.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	uid := c.GetString(middleware.ContextUserID)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, failure(CodeUserNotAuthenticated, "User is not authenticated"))
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), uid); err != nil {
		h.respondAuthError(c, "delete account", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Account deleted"})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, op string, err error) {
	var authErr *core.AuthError
	if errors.As(err, &authErr) {
		if h.logger != nil {
			h.logger.Warn("Credential proxy operation failed",
				zap.String("op", op),
				zap.String("code", authErr.Code),
				zap.Int("status", authErr.Status),
			)
		}
		c.JSON(authErr.Status, failure(authErr.Code, authErr.Message))
		return
	}
	if h.logger != nil {
		h.logger.Error("Credential proxy operation failed unexpectedly", zap.String("op", op), zap.Error(err))
	}
	c.JSON(http.StatusInternalServerError, failure(CodeInternalError, "Internal server error"))
}
