package db

import (
	"context"

	"promptpilot-backend/internal/models"
)

// ProfileRepository defines storage operations for the per-user profile
// document. Payloads are opaque field maps; the service layer owns the
// timestamp stamping and merge semantics.
type ProfileRepository interface {
	Get(ctx context.Context, uid string) (map[string]interface{}, error)
	// Set merges the supplied fields into the profile document, creating it
	// if absent.
	Set(ctx context.Context, uid string, fields map[string]interface{}) error
	Delete(ctx context.Context, uid string) error
}

// CollectionRepository defines storage operations for named sub-collections
// under a user's namespace.
type CollectionRepository interface {
	// List returns up to limit items ordered by creation time descending.
	List(ctx context.Context, uid, collection string, limit int) ([]*models.DocumentItem, error)
	Get(ctx context.Context, uid, collection, itemID string) (*models.DocumentItem, error)
	// Add stores a new item with a generated ID and returns that ID.
	Add(ctx context.Context, uid, collection string, fields map[string]interface{}) (string, error)
	// Update merges the supplied fields into an existing item.
	Update(ctx context.Context, uid, collection, itemID string, fields map[string]interface{}) error
	Delete(ctx context.Context, uid, collection, itemID string) error
}

// UsageRepository defines storage operations for the per-user quota counters.
type UsageRepository interface {
	Get(ctx context.Context, uid string) (*models.QuotaUsage, error)
	IncrementOptimizations(ctx context.Context, uid string) (int, error)
}
