// Package bridge carries typed auth messages between the extension's UI
// surfaces and the background context. Payloads stay JSON so either side can
// evolve independently of the other's release cadence.
package bridge

import (
	"encoding/json"
	"fmt"
)

// MessageType names an auth operation the UI can request.
type MessageType string

const (
	MessageRegisterUser    MessageType = "REGISTER_USER"
	MessageLoginWithEmail  MessageType = "LOGIN_WITH_EMAIL"
	MessageLoginWithGoogle MessageType = "LOGIN_WITH_GOOGLE"
	MessageLogout          MessageType = "LOGOUT"
	MessageCheckAuthState  MessageType = "CHECK_AUTH_STATE"
	MessageDeleteAccount   MessageType = "DELETE_ACCOUNT"
	MessageUpdateProfile   MessageType = "UPDATE_PROFILE"
)

// Error codes owned by the bridge itself. Backend codes pass through
// unchanged inside Error.
const (
	CodeChannelUnreachable = "CHANNEL_UNREACHABLE"
	CodeUnknownMessageType = "UNKNOWN_MESSAGE_TYPE"
	CodeBadPayload         = "BAD_PAYLOAD"
	CodeBackendUnreachable = "BACKEND_UNREACHABLE"
)

// Error is the failure half of a bridge response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Request is one message sent over the channel.
type Request struct {
	ID      string          `json:"id"`
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response answers exactly one Request, matched by ID.
type Response struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data,omitempty"`
	Err  *Error          `json:"error,omitempty"`
}

// Channel is the transport between UI and background contexts. Send blocks
// until the peer answers or the transport fails.
type Channel interface {
	Send(req Request) (Response, error)
}

// CredentialsPayload carries email/password operations.
type CredentialsPayload struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// GooglePayload carries the OAuth access token from the consent flow.
type GooglePayload struct {
	AccessToken string `json:"accessToken"`
}

// ProfilePayload carries profile field updates.
type ProfilePayload struct {
	Fields map[string]interface{} `json:"fields"`
}
