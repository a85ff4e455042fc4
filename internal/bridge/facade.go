package bridge

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// AttemptState tracks the lifecycle of the most recent credential attempt
// made through a Facade.
type AttemptState string

const (
	AttemptIdle       AttemptState = "idle"
	AttemptRequesting AttemptState = "requesting"
	AttemptSuccess    AttemptState = "success"
	AttemptFailure    AttemptState = "failure"
)

// Facade is the UI side of the bridge: it builds requests, tags them with
// unique IDs, and tracks the current attempt so views can render spinners
// and inline errors without their own bookkeeping.
type Facade struct {
	channel Channel

	mu      sync.Mutex
	state   AttemptState
	lastErr *Error
	newID   func() string
}

// NewFacade creates a Facade over the given channel.
func NewFacade(channel Channel) *Facade {
	return &Facade{
		channel: channel,
		state:   AttemptIdle,
		newID:   uuid.NewString,
	}
}

// State returns the current attempt state and the error from the last
// failed attempt, if any.
func (f *Facade) State() (AttemptState, *Error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.lastErr
}

// Register sends REGISTER_USER.
func (f *Facade) Register(email, password, displayName string) (*AuthResult, *Error) {
	return f.credentialCall(MessageRegisterUser, CredentialsPayload{
		Email: email, Password: password, DisplayName: displayName,
	})
}

// LoginWithEmail sends LOGIN_WITH_EMAIL.
func (f *Facade) LoginWithEmail(email, password string) (*AuthResult, *Error) {
	return f.credentialCall(MessageLoginWithEmail, CredentialsPayload{Email: email, Password: password})
}

// LoginWithGoogle sends LOGIN_WITH_GOOGLE with the consent-flow token.
func (f *Facade) LoginWithGoogle(accessToken string) (*AuthResult, *Error) {
	return f.credentialCall(MessageLoginWithGoogle, GooglePayload{AccessToken: accessToken})
}

// Logout sends LOGOUT. It never fails from the caller's perspective beyond
// channel loss; the background forces logged-out state regardless.
func (f *Facade) Logout() *Error {
	_, err := f.send(MessageLogout, nil)
	return err
}

// CheckAuthState sends CHECK_AUTH_STATE and returns the raw state payload.
func (f *Facade) CheckAuthState() (json.RawMessage, *Error) {
	return f.send(MessageCheckAuthState, nil)
}

// DeleteAccount sends DELETE_ACCOUNT.
func (f *Facade) DeleteAccount() *Error {
	_, err := f.send(MessageDeleteAccount, nil)
	return err
}

// UpdateProfile sends UPDATE_PROFILE.
func (f *Facade) UpdateProfile(fields map[string]interface{}) *Error {
	_, err := f.send(MessageUpdateProfile, ProfilePayload{Fields: fields})
	return err
}

func (f *Facade) credentialCall(t MessageType, payload interface{}) (*AuthResult, *Error) {
	f.setState(AttemptRequesting, nil)
	data, err := f.send(t, payload)
	if err != nil {
		f.setState(AttemptFailure, err)
		return nil, err
	}
	var result AuthResult
	if uerr := json.Unmarshal(data, &result); uerr != nil {
		badResp := &Error{Code: CodeBadPayload, Message: "malformed response payload"}
		f.setState(AttemptFailure, badResp)
		return nil, badResp
	}
	f.setState(AttemptSuccess, nil)
	return &result, nil
}

func (f *Facade) send(t MessageType, payload interface{}) (json.RawMessage, *Error) {
	var encoded json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Code: CodeBadPayload, Message: "failed to encode request payload"}
		}
		encoded = raw
	}
	req := Request{ID: f.newID(), Type: t, Payload: encoded}
	resp, err := f.channel.Send(req)
	if err != nil {
		// Transport loss, not a backend rejection. Happens when the
		// background context was torn down under the UI.
		return nil, &Error{Code: CodeChannelUnreachable, Message: "background context is unreachable"}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Data, nil
}

func (f *Facade) setState(s AttemptState, err *Error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
	f.lastErr = err
}
