package core

import (
	"context"
	"fmt"

	"promptpilot-backend/internal/db"
	"promptpilot-backend/internal/models"
)

// usageService implements UsageService over a UsageRepository. The daily
// rollover of the optimization counter belongs to an external scheduled
// writer; this service only reads and increments.
type usageService struct {
	usage db.UsageRepository
}

// NewUsageService creates a UsageService instance.
func NewUsageService(usage db.UsageRepository) UsageService {
	if usage == nil {
		panic("UsageRepository is required for UsageService")
	}
	return &usageService{usage: usage}
}

func (s *usageService) Get(ctx context.Context, uid string) (*models.QuotaUsage, error) {
	quota, err := s.usage.Get(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage for user '%s': %w", uid, err)
	}
	return quota, nil
}

func (s *usageService) RecordOptimization(ctx context.Context, uid string) (int, error) {
	count, err := s.usage.IncrementOptimizations(ctx, uid)
	if err != nil {
		return 0, fmt.Errorf("failed to record optimization for user '%s': %w", uid, err)
	}
	return count, nil
}
