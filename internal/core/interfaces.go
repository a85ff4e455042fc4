package core

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"promptpilot-backend/internal/models"
)

// IdentityAdmin is the subset of the Firebase Admin SDK auth client used by
// the credential proxy. *auth.Client satisfies it; tests substitute fakes.
type IdentityAdmin interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	CustomToken(ctx context.Context, uid string) (string, error)
}

// AuthService implements the credential proxy operations. Each login-style
// operation returns the canonical identity record plus a freshly minted
// custom token the client exchanges for a real session.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*models.Identity, string, error)
	LoginWithPassword(ctx context.Context, email, password string) (*models.Identity, string, error)
	LoginWithGoogle(ctx context.Context, accessToken string) (*models.Identity, string, error)
	DeleteAccount(ctx context.Context, uid string) error
}

// ProfileService implements the per-user profile document operations.
type ProfileService interface {
	Get(ctx context.Context, uid string) (map[string]interface{}, error)
	// Set upserts: merges the supplied fields, stamping updatedAt always and
	// createdAt only on first creation.
	Set(ctx context.Context, uid string, fields map[string]interface{}) error
	Delete(ctx context.Context, uid string) error
}

// DocumentService implements the named sub-collection operations.
type DocumentService interface {
	List(ctx context.Context, uid, collection string, limit int) ([]*models.DocumentItem, error)
	Add(ctx context.Context, uid, collection string, fields map[string]interface{}) (*models.DocumentItem, error)
	Update(ctx context.Context, uid, collection, itemID string, fields map[string]interface{}) error
	Delete(ctx context.Context, uid, collection, itemID string) error
}

// UsageService implements the quota usage operations.
type UsageService interface {
	Get(ctx context.Context, uid string) (*models.QuotaUsage, error)
	RecordOptimization(ctx context.Context, uid string) (int, error)
}
