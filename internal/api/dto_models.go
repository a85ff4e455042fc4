package api

import "promptpilot-backend/internal/models"

// Error codes owned by the handler layer. Middleware owns the token
// verification codes; the credential proxy surfaces provider codes through
// core.AuthError.
const (
	CodeUserNotAuthenticated = "USER_NOT_AUTHENTICATED"
	CodeProfileNotFound      = "PROFILE_NOT_FOUND"
	CodeDocNotFound          = "DOC_NOT_FOUND"
	CodeInvalidBody          = "INVALID_BODY"
	CodeMissingFields        = "MISSING_FIELDS"
	CodeInternalError        = "INTERNAL_ERROR"
)

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// AuthResponse is the uniform credential-proxy success envelope. The custom
// token is minted by the privileged backend and redeemed by the client-side
// SDK for a real session.
type AuthResponse struct {
	Success     bool             `json:"success"`
	User        *models.Identity `json:"user,omitempty"`
	CustomToken string           `json:"customToken,omitempty"`
}

// ProfileResponse wraps a profile document read.
type ProfileResponse struct {
	Success bool                   `json:"success"`
	Profile map[string]interface{} `json:"profile"`
}

// ItemResponse wraps a single sub-collection item.
type ItemResponse struct {
	Success bool                 `json:"success"`
	Item    *models.DocumentItem `json:"item"`
}

// ListResponse wraps a sub-collection listing.
type ListResponse struct {
	Success bool                   `json:"success"`
	Items   []*models.DocumentItem `json:"items"`
	Count   int                    `json:"count"`
}

// UsageResponse wraps the quota counters.
type UsageResponse struct {
	Success bool               `json:"success"`
	Usage   *models.QuotaUsage `json:"usage"`
}

// MessageResponse is a minimal success envelope for writes with no payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func failure(code, message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: message, Code: code}
}
