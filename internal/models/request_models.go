package models

// RegisterRequest represents the request body for creating a new account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName,omitempty"`
}

// LoginRequest represents the request body for email/password sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries the OAuth access token obtained out-of-band by
// the extension's consent flow.
type GoogleLoginRequest struct {
	AccessToken string `json:"accessToken" binding:"required"`
}
