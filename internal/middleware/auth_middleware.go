package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"promptpilot-backend/internal/identity"
)

// Context keys populated by the auth middleware for downstream handlers.
const (
	ContextUserID      = "userID"
	ContextUserEmail   = "userEmail"
	ContextDisplayName = "userDisplayName"
)

// Error codes returned on authentication failure. Every failure path
// answers 401 with the standard failure envelope.
const (
	CodeNoAuthHeader       = "NO_AUTH_HEADER"
	CodeInvalidTokenFormat = "INVALID_TOKEN_FORMAT"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenRevoked       = "TOKEN_REVOKED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeAuthFailed         = "AUTH_FAILED"
)

// errorEnvelope mirrors the failure envelope in internal/api. Defined
// locally to avoid an import cycle with the handler package.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// AuthMiddleware provides Gin middleware for bearer-token authentication.
type AuthMiddleware struct {
	verifier identity.Verifier
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier identity.Verifier) *AuthMiddleware {
	if verifier == nil {
		panic("token verifier is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{verifier: verifier}
}

// VerifyToken requires a valid "Authorization: Bearer <token>" header,
// verifies it against the identity provider, and attaches the caller's
// identity to the request context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, CodeNoAuthHeader, "Authorization header is required")
			return
		}
		m.verify(c, authHeader)
	}
}

// OptionalVerifyToken runs the same verification as VerifyToken but lets
// requests without an Authorization header pass through unauthenticated.
func (m *AuthMiddleware) OptionalVerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		m.verify(c, authHeader)
	}
}

func (m *AuthMiddleware) verify(c *gin.Context, authHeader string) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		abortUnauthorized(c, CodeInvalidTokenFormat, "Authorization header format must be 'Bearer {token}'")
		return
	}
	idToken := parts[1]

	user, err := m.verifier.Verify(c.Request.Context(), idToken)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrExpired):
			abortUnauthorized(c, CodeTokenExpired, "Authentication token has expired")
		case errors.Is(err, identity.ErrRevoked):
			abortUnauthorized(c, CodeTokenRevoked, "Authentication token has been revoked")
		case errors.Is(err, identity.ErrMalformed):
			abortUnauthorized(c, CodeInvalidToken, "Authentication token is invalid")
		default:
			abortUnauthorized(c, CodeAuthFailed, "Authentication failed")
		}
		return
	}

	c.Set(ContextUserID, user.UID)
	c.Set(ContextUserEmail, user.Email)
	c.Set(ContextDisplayName, user.DisplayName)

	c.Next()
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope{
		Success: false,
		Error:   message,
		Code:    code,
	})
}
