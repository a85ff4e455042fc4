package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"promptpilot-backend/internal/apiclient"
	"promptpilot-backend/internal/models"
	"promptpilot-backend/internal/state"
)

const handlerTimeout = 30 * time.Second

// SignOutFunc tears down the local session (SDK sign-out plus any cached
// credentials). Errors are logged, not surfaced: logout must always leave
// the client logged out.
type SignOutFunc func(ctx context.Context) error

// BackgroundHandlers implements the background side of the bridge: each
// message type maps to a backend call plus a broadcaster update.
type BackgroundHandlers struct {
	api         *apiclient.Client
	broadcaster *state.Broadcaster
	signOut     SignOutFunc
	logger      *zap.Logger
}

// NewBackgroundHandlers wires the handler set and registers it on the
// dispatcher.
func NewBackgroundHandlers(d *Dispatcher, api *apiclient.Client, b *state.Broadcaster, signOut SignOutFunc, logger *zap.Logger) *BackgroundHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &BackgroundHandlers{api: api, broadcaster: b, signOut: signOut, logger: logger}
	d.Register(MessageRegisterUser, h.handleRegister)
	d.Register(MessageLoginWithEmail, h.handleLoginWithEmail)
	d.Register(MessageLoginWithGoogle, h.handleLoginWithGoogle)
	d.Register(MessageLogout, h.handleLogout)
	d.Register(MessageCheckAuthState, h.handleCheckAuthState)
	d.Register(MessageDeleteAccount, h.handleDeleteAccount)
	d.Register(MessageUpdateProfile, h.handleUpdateProfile)
	return h
}

// AuthResult is the success payload for credential messages.
type AuthResult struct {
	User        *models.Identity `json:"user"`
	CustomToken string           `json:"customToken,omitempty"`
}

func (h *BackgroundHandlers) handleRegister(payload json.RawMessage) (interface{}, *Error) {
	var creds CredentialsPayload
	if err := json.Unmarshal(payload, &creds); err != nil {
		return nil, &Error{Code: CodeBadPayload, Message: "malformed register payload"}
	}
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	user, token, err := h.api.Register(ctx, creds.Email, creds.Password, creds.DisplayName)
	if err != nil {
		return nil, h.toBridgeError(err)
	}
	h.broadcaster.ManualUpdateAuthState(user)
	return AuthResult{User: user, CustomToken: token}, nil
}

func (h *BackgroundHandlers) handleLoginWithEmail(payload json.RawMessage) (interface{}, *Error) {
	var creds CredentialsPayload
	if err := json.Unmarshal(payload, &creds); err != nil {
		return nil, &Error{Code: CodeBadPayload, Message: "malformed login payload"}
	}
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	user, token, err := h.api.LoginWithEmail(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, h.toBridgeError(err)
	}
	h.broadcaster.ManualUpdateAuthState(user)
	return AuthResult{User: user, CustomToken: token}, nil
}

func (h *BackgroundHandlers) handleLoginWithGoogle(payload json.RawMessage) (interface{}, *Error) {
	var google GooglePayload
	if err := json.Unmarshal(payload, &google); err != nil || google.AccessToken == "" {
		return nil, &Error{Code: CodeBadPayload, Message: "malformed google login payload"}
	}
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	user, token, err := h.api.LoginWithGoogle(ctx, google.AccessToken)
	if err != nil {
		return nil, h.toBridgeError(err)
	}
	h.broadcaster.ManualUpdateAuthState(user)
	return AuthResult{User: user, CustomToken: token}, nil
}

// handleLogout signs out locally and forces the broadcaster to logged-out
// immediately. Sign-out failures are logged but never block the state
// transition.
func (h *BackgroundHandlers) handleLogout(json.RawMessage) (interface{}, *Error) {
	if h.signOut != nil {
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()
		if err := h.signOut(ctx); err != nil {
			h.logger.Warn("sign-out failed, forcing logged-out state anyway", zap.Error(err))
		}
	}
	h.broadcaster.ManualUpdateAuthState(nil)
	return map[string]bool{"success": true}, nil
}

func (h *BackgroundHandlers) handleCheckAuthState(json.RawMessage) (interface{}, *Error) {
	auth := h.broadcaster.Auth()
	return auth, nil
}

func (h *BackgroundHandlers) handleDeleteAccount(json.RawMessage) (interface{}, *Error) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	if err := h.api.DeleteAccount(ctx); err != nil {
		return nil, h.toBridgeError(err)
	}
	if h.signOut != nil {
		if err := h.signOut(ctx); err != nil {
			h.logger.Warn("sign-out after account deletion failed", zap.Error(err))
		}
	}
	h.broadcaster.ManualUpdateAuthState(nil)
	return map[string]bool{"success": true}, nil
}

func (h *BackgroundHandlers) handleUpdateProfile(payload json.RawMessage) (interface{}, *Error) {
	var profile ProfilePayload
	if err := json.Unmarshal(payload, &profile); err != nil || profile.Fields == nil {
		return nil, &Error{Code: CodeBadPayload, Message: "malformed profile payload"}
	}
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	if err := h.api.SetProfile(ctx, profile.Fields); err != nil {
		return nil, h.toBridgeError(err)
	}
	return map[string]bool{"success": true}, nil
}

// toBridgeError keeps backend codes intact and wraps everything else as a
// reachability failure.
func (h *BackgroundHandlers) toBridgeError(err error) *Error {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return &Error{Code: apiErr.Code, Message: apiErr.Message}
	}
	h.logger.Error("backend call failed", zap.Error(err))
	return &Error{Code: CodeBackendUnreachable, Message: "could not reach the backend"}
}
