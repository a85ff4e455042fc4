// Package apiclient is the extension background context's HTTP client for
// the backend proxy. It speaks the uniform success/failure envelopes and
// surfaces backend rejections as typed APIErrors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"promptpilot-backend/internal/api"
	"promptpilot-backend/internal/models"
)

// TokenSource supplies a fresh ID token for protected calls. The client
// never caches tokens; the identity SDK owns refresh.
type TokenSource func(ctx context.Context) (string, error)

// APIError is a backend rejection decoded from the failure envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Client calls the backend proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// New creates a Client. tokens may be nil for a client that only uses the
// public credential endpoints.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokens:     tokens,
	}
}

// Register calls POST /api/auth/register.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*models.Identity, string, error) {
	body := models.RegisterRequest{Email: email, Password: password, DisplayName: displayName}
	var out api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, false, &out); err != nil {
		return nil, "", err
	}
	return out.User, out.CustomToken, nil
}

// LoginWithEmail calls POST /api/auth/login.
func (c *Client) LoginWithEmail(ctx context.Context, email, password string) (*models.Identity, string, error) {
	body := models.LoginRequest{Email: email, Password: password}
	var out api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, false, &out); err != nil {
		return nil, "", err
	}
	return out.User, out.CustomToken, nil
}

// LoginWithGoogle calls POST /api/auth/google with an access token obtained
// from the consent flow.
func (c *Client) LoginWithGoogle(ctx context.Context, accessToken string) (*models.Identity, string, error) {
	body := models.GoogleLoginRequest{AccessToken: accessToken}
	var out api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/google", body, false, &out); err != nil {
		return nil, "", err
	}
	return out.User, out.CustomToken, nil
}

// DeleteAccount calls DELETE /api/auth/account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	var out api.MessageResponse
	return c.do(ctx, http.MethodDelete, "/api/auth/account", nil, true, &out)
}

// GetProfile calls GET /api/data/profile.
func (c *Client) GetProfile(ctx context.Context) (map[string]interface{}, error) {
	var out api.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/api/data/profile", nil, true, &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

// SetProfile calls PUT /api/data/profile.
func (c *Client) SetProfile(ctx context.Context, fields map[string]interface{}) error {
	var out api.MessageResponse
	return c.do(ctx, http.MethodPut, "/api/data/profile", fields, true, &out)
}

// DeleteProfile calls DELETE /api/data/profile.
func (c *Client) DeleteProfile(ctx context.Context) error {
	var out api.MessageResponse
	return c.do(ctx, http.MethodDelete, "/api/data/profile", nil, true, &out)
}

// ListItems calls GET /api/data/collections/{name}. limit <= 0 leaves the
// backend default in effect.
func (c *Client) ListItems(ctx context.Context, collection string, limit int) ([]*models.DocumentItem, error) {
	path := "/api/data/collections/" + url.PathEscape(collection)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out api.ListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, true, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// AddItem calls POST /api/data/collections/{name}.
func (c *Client) AddItem(ctx context.Context, collection string, fields map[string]interface{}) (*models.DocumentItem, error) {
	path := "/api/data/collections/" + url.PathEscape(collection)
	var out api.ItemResponse
	if err := c.do(ctx, http.MethodPost, path, fields, true, &out); err != nil {
		return nil, err
	}
	return out.Item, nil
}

// UpdateItem calls PUT /api/data/collections/{name}/{id}.
func (c *Client) UpdateItem(ctx context.Context, collection, itemID string, fields map[string]interface{}) error {
	path := "/api/data/collections/" + url.PathEscape(collection) + "/" + url.PathEscape(itemID)
	var out api.MessageResponse
	return c.do(ctx, http.MethodPut, path, fields, true, &out)
}

// DeleteItem calls DELETE /api/data/collections/{name}/{id}.
func (c *Client) DeleteItem(ctx context.Context, collection, itemID string) error {
	path := "/api/data/collections/" + url.PathEscape(collection) + "/" + url.PathEscape(itemID)
	var out api.MessageResponse
	return c.do(ctx, http.MethodDelete, path, nil, true, &out)
}

// GetUsage calls GET /api/data/usage.
func (c *Client) GetUsage(ctx context.Context) (*models.QuotaUsage, error) {
	var out api.UsageResponse
	if err := c.do(ctx, http.MethodGet, "/api/data/usage", nil, true, &out); err != nil {
		return nil, err
	}
	return out.Usage, nil
}

// RecordOptimization calls POST /api/data/usage/optimizations and returns
// the new daily count.
func (c *Client) RecordOptimization(ctx context.Context) (int, error) {
	var out struct {
		Success                bool `json:"success"`
		DailyOptimizationCount int  `json:"dailyOptimizationCount"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/data/usage/optimizations", nil, true, &out); err != nil {
		return 0, err
	}
	return out.DailyOptimizationCount, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, authed bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if c.tokens == nil {
			return fmt.Errorf("no token source configured for protected call %s %s", method, path)
		}
		token, err := c.tokens(ctx)
		if err != nil {
			return fmt.Errorf("failed to obtain id token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: http.StatusText(resp.StatusCode)}
		var envelope api.ErrorResponse
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Code != "" {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Error
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response for %s %s: %w", method, path, err)
		}
	}
	return nil
}
