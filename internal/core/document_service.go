package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promptpilot-backend/internal/db"
	"promptpilot-backend/internal/models"
)

// DefaultListLimit caps sub-collection listings when the caller does not
// supply a limit.
const DefaultListLimit = 50

// documentService implements DocumentService over a CollectionRepository.
type documentService struct {
	items db.CollectionRepository
	now   func() time.Time
}

// NewDocumentService creates a DocumentService instance.
func NewDocumentService(items db.CollectionRepository) DocumentService {
	if items == nil {
		panic("CollectionRepository is required for DocumentService")
	}
	return &documentService{items: items, now: func() time.Time { return time.Now().UTC() }}
}

func (s *documentService) List(ctx context.Context, uid, collection string, limit int) ([]*models.DocumentItem, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	items, err := s.items.List(ctx, uid, collection, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list '%s' for user '%s': %w", collection, uid, err)
	}
	return items, nil
}

func (s *documentService) Add(ctx context.Context, uid, collection string, fields map[string]interface{}) (*models.DocumentItem, error) {
	now := s.now()
	stamped := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		stamped[k] = v
	}
	stamped["createdAt"] = now
	stamped["updatedAt"] = now

	id, err := s.items.Add(ctx, uid, collection, stamped)
	if err != nil {
		return nil, fmt.Errorf("failed to add item to '%s' for user '%s': %w", collection, uid, err)
	}

	return &models.DocumentItem{ID: id, Data: stamped, CreatedAt: now, UpdatedAt: now}, nil
}

// Update merges the supplied fields into an existing item. The existence
// check and the write are not transactional; a concurrent delete between
// the two can still race.
func (s *documentService) Update(ctx context.Context, uid, collection, itemID string, fields map[string]interface{}) error {
	if _, err := s.items.Get(ctx, uid, collection, itemID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: item '%s' in '%s'", ErrDocNotFound, itemID, collection)
		}
		return fmt.Errorf("failed to check item existence ('%s' in '%s'): %w", itemID, collection, err)
	}

	stamped := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		stamped[k] = v
	}
	stamped["updatedAt"] = s.now()

	if err := s.items.Update(ctx, uid, collection, itemID, stamped); err != nil {
		return fmt.Errorf("failed to update item '%s' in '%s' for user '%s': %w", itemID, collection, uid, err)
	}
	return nil
}

func (s *documentService) Delete(ctx context.Context, uid, collection, itemID string) error {
	if _, err := s.items.Get(ctx, uid, collection, itemID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: item '%s' in '%s'", ErrDocNotFound, itemID, collection)
		}
		return fmt.Errorf("failed to check item existence ('%s' in '%s'): %w", itemID, collection, err)
	}
	if err := s.items.Delete(ctx, uid, collection, itemID); err != nil {
		return fmt.Errorf("failed to delete item '%s' in '%s' for user '%s': %w", itemID, collection, uid, err)
	}
	return nil
}
