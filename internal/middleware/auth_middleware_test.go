package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"promptpilot-backend/internal/identity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	user *identity.User
	err  error
}

func (v *stubVerifier) Verify(ctx context.Context, idToken string) (*identity.User, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.user, nil
}

func newAuthRouter(v identity.Verifier, optional bool) *gin.Engine {
	router := gin.New()
	mw := NewAuthMiddleware(v)
	handler := func(c *gin.Context) {
		uid, _ := c.Get(ContextUserID)
		c.JSON(http.StatusOK, gin.H{"uid": uid})
	}
	if optional {
		router.GET("/t", mw.OptionalVerifyToken(), handler)
	} else {
		router.GET("/t", mw.VerifyToken(), handler)
	}
	return router
}

func doRequest(t *testing.T, router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a valid envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestVerifyTokenMissingHeader(t *testing.T) {
	router := newAuthRouter(&stubVerifier{}, false)
	rec := doRequest(t, router, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Code != CodeNoAuthHeader {
		t.Errorf("code = %q, want %q", env.Code, CodeNoAuthHeader)
	}
	if env.Success {
		t.Error("success should be false on failure")
	}
}

func TestVerifyTokenBadFormat(t *testing.T) {
	router := newAuthRouter(&stubVerifier{}, false)
	for _, header := range []string{"tok123", "Basic tok123", "Bearer", "Bearer "} {
		rec := doRequest(t, router, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Code != CodeInvalidTokenFormat {
			t.Errorf("header %q: code = %q, want %q", header, env.Code, CodeInvalidTokenFormat)
		}
	}
}

func TestVerifyTokenFailureClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"expired", identity.ErrExpired, CodeTokenExpired},
		{"revoked", identity.ErrRevoked, CodeTokenRevoked},
		{"malformed", identity.ErrMalformed, CodeInvalidToken},
		{"other", identity.ErrVerification, CodeAuthFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newAuthRouter(&stubVerifier{err: tc.err}, false)
			rec := doRequest(t, router, "Bearer tok123")
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if env := decodeEnvelope(t, rec); env.Code != tc.code {
				t.Errorf("code = %q, want %q", env.Code, tc.code)
			}
		})
	}
}

func TestVerifyTokenSuccessAttachesIdentity(t *testing.T) {
	v := &stubVerifier{user: &identity.User{UID: "uid-1", Email: "a@b.c", DisplayName: "Ada"}}
	router := newAuthRouter(v, false)
	rec := doRequest(t, router, "Bearer tok123")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["uid"] != "uid-1" {
		t.Errorf("uid = %v, want uid-1", body["uid"])
	}
}

func TestOptionalVerifyToken(t *testing.T) {
	// No header passes through unauthenticated.
	router := newAuthRouter(&stubVerifier{err: identity.ErrExpired}, true)
	rec := doRequest(t, router, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status without header = %d, want 200", rec.Code)
	}

	// A header that is present is still verified strictly.
	rec = doRequest(t, router, "Bearer tok123")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status with bad token = %d, want 401", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != CodeTokenExpired {
		t.Errorf("code = %q, want %q", env.Code, CodeTokenExpired)
	}
}
