package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"

	"promptpilot-backend/internal/db"
	"promptpilot-backend/internal/models"
)

// Default provider endpoints. Struct fields so tests point them at stubs.
const (
	defaultPasswordSignInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
	defaultUserInfoURL       = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// SDK error-kind helpers, held as vars so white-box tests can steer
// classification without fabricating SDK-internal error values.
var (
	isUserNotFound       = auth.IsUserNotFound
	isEmailAlreadyExists = auth.IsEmailAlreadyExists
)

// authService implements AuthService against the Firebase Admin SDK plus
// the two provider REST endpoints the Admin SDK has no equivalent for.
type authService struct {
	admin    IdentityAdmin
	profiles db.ProfileRepository
	apiKey   string

	httpClient        *http.Client
	passwordSignInURL string
	userInfoURL       string
}

// NewAuthService creates an AuthService. apiKey is the public web API key
// used for the Identity Toolkit password-verification endpoint; the
// privileged SDK cannot verify a plaintext password itself, so that step is
// delegated by design.
func NewAuthService(admin IdentityAdmin, profiles db.ProfileRepository, apiKey string) (AuthService, error) {
	if admin == nil {
		return nil, errors.New("identity admin client is required for AuthService")
	}
	if apiKey == "" {
		return nil, errors.New("web API key is required for AuthService")
	}
	return &authService{
		admin:             admin,
		profiles:          profiles,
		apiKey:            apiKey,
		httpClient:        &http.Client{Timeout: 15 * time.Second},
		passwordSignInURL: defaultPasswordSignInURL,
		userInfoURL:       defaultUserInfoURL,
	}, nil
}

// Register creates a new identity record and mints a custom token for the
// client-side SDK to redeem. Duplicate emails are rejected before any
// record is created.
func (s *authService) Register(ctx context.Context, email, password, displayName string) (*models.Identity, string, error) {
	if email == "" || password == "" {
		return nil, "", newAuthError(http.StatusBadRequest, "MISSING_FIELDS", "Email and password are required")
	}

	// Pre-check so the conflict surfaces cleanly; CreateUser below still
	// rejects duplicates that slip through between check and create.
	if _, err := s.admin.GetUserByEmail(ctx, email); err == nil {
		return nil, "", newAuthError(http.StatusBadRequest, "EMAIL_EXISTS", "An account with this email already exists")
	} else if !isUserNotFound(err) {
		return nil, "", newAuthError(http.StatusBadRequest, "REGISTRATION_FAILED", "Could not verify email availability")
	}

	params := (&auth.UserToCreate{}).Email(email).Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}

	rec, err := s.admin.CreateUser(ctx, params)
	if err != nil {
		if isEmailAlreadyExists(err) {
			return nil, "", newAuthError(http.StatusBadRequest, "EMAIL_EXISTS", "An account with this email already exists")
		}
		return nil, "", newAuthError(http.StatusBadRequest, "REGISTRATION_FAILED", humanizeProviderError(err))
	}

	token, err := s.admin.CustomToken(ctx, rec.UID)
	if err != nil {
		return nil, "", newAuthError(http.StatusInternalServerError, "TOKEN_MINT_FAILED", "Account created but session token could not be issued")
	}

	return models.IdentityFromUserRecord(rec), token, nil
}

// signInWithPasswordResponse is the subset of the Identity Toolkit response
// the proxy cares about.
type signInWithPasswordResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type identityToolkitError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// LoginWithPassword verifies the credentials against the Identity Toolkit
// REST endpoint, then fetches the canonical record and mints a fresh custom
// token.
func (s *authService) LoginWithPassword(ctx context.Context, email, password string) (*models.Identity, string, error) {
	if email == "" || password == "" {
		return nil, "", newAuthError(http.StatusBadRequest, "MISSING_FIELDS", "Email and password are required")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode sign-in payload: %w", err)
	}

	url := s.passwordSignInURL + "?key=" + s.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", newAuthError(http.StatusInternalServerError, "PROVIDER_UNREACHABLE", "Could not reach the authentication service")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sign-in response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var itErr identityToolkitError
		_ = json.Unmarshal(body, &itErr)
		return nil, "", mapSignInFailure(itErr.Error.Message)
	}

	var signIn signInWithPasswordResponse
	if err := json.Unmarshal(body, &signIn); err != nil {
		return nil, "", fmt.Errorf("failed to decode sign-in response: %w", err)
	}

	rec, err := s.admin.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", newAuthError(http.StatusUnauthorized, "AUTH_FAILED", "Could not load the account record")
	}

	token, err := s.admin.CustomToken(ctx, rec.UID)
	if err != nil {
		return nil, "", newAuthError(http.StatusInternalServerError, "TOKEN_MINT_FAILED", "Signed in but session token could not be issued")
	}

	return models.IdentityFromUserRecord(rec), token, nil
}

// mapSignInFailure translates Identity Toolkit failure reasons into
// user-facing errors. The raw reason may carry a trailing explanation after
// " : " which is stripped for matching.
func mapSignInFailure(reason string) *AuthError {
	if i := strings.Index(reason, " :"); i > 0 {
		reason = reason[:i]
	}
	switch reason {
	case "EMAIL_NOT_FOUND":
		return newAuthError(http.StatusUnauthorized, "EMAIL_NOT_FOUND", "No account exists with this email")
	case "INVALID_PASSWORD":
		return newAuthError(http.StatusUnauthorized, "INVALID_PASSWORD", "Incorrect password")
	case "INVALID_LOGIN_CREDENTIALS":
		return newAuthError(http.StatusUnauthorized, "INVALID_LOGIN_CREDENTIALS", "Invalid email or password")
	case "USER_DISABLED":
		return newAuthError(http.StatusUnauthorized, "USER_DISABLED", "This account has been disabled")
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return newAuthError(http.StatusUnauthorized, "TOO_MANY_ATTEMPTS_TRY_LATER", "Too many failed attempts, please try again later")
	default:
		return newAuthError(http.StatusUnauthorized, "LOGIN_FAILED", "Login failed")
	}
}

// googleUserInfo is the Google OAuth2 userinfo response subset used for
// federated login.
type googleUserInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// LoginWithGoogle exchanges an out-of-band OAuth access token for the
// caller's Google profile, reconciles or creates the matching identity
// record, and mints a custom token.
func (s *authService) LoginWithGoogle(ctx context.Context, accessToken string) (*models.Identity, string, error) {
	if accessToken == "" {
		return nil, "", newAuthError(http.StatusBadRequest, "MISSING_FIELDS", "Access token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", newAuthError(http.StatusInternalServerError, "PROVIDER_UNREACHABLE", "Could not reach the Google identity service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", newAuthError(http.StatusUnauthorized, "GOOGLE_AUTH_FAILED", "Google rejected the access token")
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, "", newAuthError(http.StatusUnauthorized, "GOOGLE_AUTH_FAILED", "Could not parse the Google profile response")
	}
	if info.Email == "" {
		return nil, "", newAuthError(http.StatusUnauthorized, "GOOGLE_AUTH_FAILED", "Google profile did not include an email address")
	}

	rec, err := s.admin.GetUserByEmail(ctx, info.Email)
	switch {
	case err == nil:
		rec, err = s.reconcileGoogleProfile(ctx, rec, info)
		if err != nil {
			return nil, "", newAuthError(http.StatusUnauthorized, "GOOGLE_AUTH_FAILED", "Could not update the account profile")
		}
	case isUserNotFound(err):
		params := (&auth.UserToCreate{}).Email(info.Email).EmailVerified(info.EmailVerified)
		if info.Name != "" {
			params = params.DisplayName(info.Name)
		}
		if info.Picture != "" {
			params = params.PhotoURL(info.Picture)
		}
		rec, err = s.admin.CreateUser(ctx, params)
		if err != nil {
			return nil, "", newAuthError(http.StatusUnauthorized, "GOOGLE_AUTH_FAILED", humanizeProviderError(err))
		}
	default:
		return nil, "", newAuthError(http.StatusUnauthorized, "GOOGLE_AUTH_FAILED", "Could not look up the account record")
	}

	token, err := s.admin.CustomToken(ctx, rec.UID)
	if err != nil {
		return nil, "", newAuthError(http.StatusInternalServerError, "TOKEN_MINT_FAILED", "Signed in but session token could not be issued")
	}

	return models.IdentityFromUserRecord(rec), token, nil
}

// reconcileGoogleProfile syncs displayName and photoURL from the federated
// profile onto an existing record, only when they actually differ.
func (s *authService) reconcileGoogleProfile(ctx context.Context, rec *auth.UserRecord, info googleUserInfo) (*auth.UserRecord, error) {
	update := &auth.UserToUpdate{}
	changed := false
	if info.Name != "" && info.Name != rec.DisplayName {
		update = update.DisplayName(info.Name)
		changed = true
	}
	if info.Picture != "" && info.Picture != rec.PhotoURL {
		update = update.PhotoURL(info.Picture)
		changed = true
	}
	if !changed {
		return rec, nil
	}
	return s.admin.UpdateUser(ctx, rec.UID, update)
}

// DeleteAccount removes the identity record and the user's profile
// document. A missing profile is not an error; the identity deletion is the
// authoritative step.
func (s *authService) DeleteAccount(ctx context.Context, uid string) error {
	if uid == "" {
		return newAuthError(http.StatusBadRequest, "MISSING_FIELDS", "User ID is required")
	}
	if err := s.admin.DeleteUser(ctx, uid); err != nil {
		return newAuthError(http.StatusBadRequest, "DELETE_FAILED", humanizeProviderError(err))
	}
	if s.profiles != nil {
		if err := s.profiles.Delete(ctx, uid); err != nil && !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("account deleted but profile cleanup failed: %w", err)
		}
	}
	return nil
}

// humanizeProviderError strips the SDK's internal prefix noise from provider
// errors so the message is presentable.
func humanizeProviderError(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, "): "); i > 0 && i+3 < len(msg) {
		msg = msg[i+3:]
	}
	if msg == "" {
		return "The identity provider rejected the request"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
