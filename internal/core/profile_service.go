package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promptpilot-backend/internal/db"
)

// profileService implements ProfileService over a ProfileRepository.
type profileService struct {
	profiles db.ProfileRepository
	now      func() time.Time
}

// NewProfileService creates a ProfileService instance.
func NewProfileService(profiles db.ProfileRepository) ProfileService {
	if profiles == nil {
		panic("ProfileRepository is required for ProfileService")
	}
	return &profileService{profiles: profiles, now: func() time.Time { return time.Now().UTC() }}
}

func (s *profileService) Get(ctx context.Context, uid string) (map[string]interface{}, error) {
	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user '%s'", ErrProfileNotFound, uid)
		}
		return nil, fmt.Errorf("failed to get profile for user '%s': %w", uid, err)
	}
	return profile, nil
}

// Set upserts the profile document. The supplied fields are merged
// non-destructively; updatedAt is stamped on every call and createdAt only
// on first creation. The existence check and the write are separate reads
// and last write wins, matching the store's merge semantics.
func (s *profileService) Set(ctx context.Context, uid string, fields map[string]interface{}) error {
	stamped := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		stamped[k] = v
	}

	now := s.now()
	stamped["updatedAt"] = now

	if _, err := s.profiles.Get(ctx, uid); err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("failed to check profile existence for user '%s': %w", uid, err)
		}
		stamped["createdAt"] = now
	}

	if err := s.profiles.Set(ctx, uid, stamped); err != nil {
		return fmt.Errorf("failed to upsert profile for user '%s': %w", uid, err)
	}
	return nil
}

func (s *profileService) Delete(ctx context.Context, uid string) error {
	if _, err := s.profiles.Get(ctx, uid); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: user '%s'", ErrProfileNotFound, uid)
		}
		return fmt.Errorf("failed to check profile existence for user '%s': %w", uid, err)
	}
	if err := s.profiles.Delete(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete profile for user '%s': %w", uid, err)
	}
	return nil
}
