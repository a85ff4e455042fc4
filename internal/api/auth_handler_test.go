package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"promptpilot-backend/internal/core"
	"promptpilot-backend/internal/models"
)

// fakeAuthService returns canned results per operation.
type fakeAuthService struct {
	user  *models.Identity
	token string
	err   error

	deletedUID string
}

func (f *fakeAuthService) Register(ctx context.Context, email, password, displayName string) (*models.Identity, string, error) {
	return f.user, f.token, f.err
}

func (f *fakeAuthService) LoginWithPassword(ctx context.Context, email, password string) (*models.Identity, string, error) {
	return f.user, f.token, f.err
}

func (f *fakeAuthService) LoginWithGoogle(ctx context.Context, accessToken string) (*models.Identity, string, error) {
	return f.user, f.token, f.err
}

func (f *fakeAuthService) DeleteAccount(ctx context.Context, uid string) error {
	f.deletedUID = uid
	return f.err
}

func newAuthRouter(uid string, svc core.AuthService) *gin.Engine {
	router := gin.New()
	h := NewAuthHandler(svc, zap.NewNop())
	g := router.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/google", h.GoogleLogin)
	g.DELETE("/account", authAs(uid), h.DeleteAccount)
	return router
}

func TestRegisterCreated(t *testing.T) {
	svc := &fakeAuthService{
		user:  &models.Identity{UID: "uid-1", Email: "a@b.c"},
		token: "custom-token",
	}
	router := newAuthRouter("", svc)

	rec := perform(router, http.MethodPost, "/api/auth/register", `{"email":"a@b.c","password":"hunter22"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.User.UID != "uid-1" || resp.CustomToken != "custom-token" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRegisterMissingBodyFields(t *testing.T) {
	router := newAuthRouter("", &fakeAuthService{})
	rec := perform(router, http.MethodPost, "/api/auth/register", `{"email":"a@b.c"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env := decodeError(t, rec); env.Code != CodeMissingFields {
		t.Errorf("code = %q, want %q", env.Code, CodeMissingFields)
	}
}

func TestLoginSurfacesProviderCode(t *testing.T) {
	svc := &fakeAuthService{err: &core.AuthError{
		Status: http.StatusUnauthorized, Code: "INVALID_PASSWORD", Message: "Incorrect password",
	}}
	router := newAuthRouter("", svc)

	rec := perform(router, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	env := decodeError(t, rec)
	if env.Code != "INVALID_PASSWORD" || env.Success {
		t.Errorf("envelope = %+v", env)
	}
}

func TestLoginUnexpectedErrorIsInternal(t *testing.T) {
	svc := &fakeAuthService{err: context.DeadlineExceeded}
	router := newAuthRouter("", svc)

	rec := perform(router, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"pw"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if env := decodeError(t, rec); env.Code != CodeInternalError {
		t.Errorf("code = %q, want %q", env.Code, CodeInternalError)
	}
}

func TestDeleteAccountUsesVerifiedUID(t *testing.T) {
	svc := &fakeAuthService{}
	router := newAuthRouter("uid-1", svc)

	rec := perform(router, http.MethodDelete, "/api/auth/account", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if svc.deletedUID != "uid-1" {
		t.Errorf("deletedUID = %q, want the verified uid", svc.deletedUID)
	}
}

func TestDeleteAccountUnauthenticated(t *testing.T) {
	router := newAuthRouter("", &fakeAuthService{})
	rec := perform(router, http.MethodDelete, "/api/auth/account", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
