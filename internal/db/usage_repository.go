package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"promptpilot-backend/internal/models"
)

// usageField is the map field on the user document holding quota counters.
const usageField = "usage"

// firestoreUsageRepository implements UsageRepository using Firestore.
// Counters live under the "usage" field of users/{uid}; the daily reset of
// dailyOptimizationCount is performed by an external scheduled writer.
type firestoreUsageRepository struct {
	client *firestore.Client
}

// NewFirestoreUsageRepository creates a new Firestore-backed UsageRepository.
func NewFirestoreUsageRepository(client *firestore.Client) UsageRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for UsageRepository.")
	}
	return &firestoreUsageRepository{client: client}
}

func (r *firestoreUsageRepository) Get(ctx context.Context, uid string) (*models.QuotaUsage, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for Get operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// A user with no document yet simply has zero usage.
			return &models.QuotaUsage{}, nil
		}
		return nil, fmt.Errorf("failed to get usage for user '%s': %w", uid, err)
	}

	var doc struct {
		Usage models.QuotaUsage `firestore:"usage"`
	}
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode usage for user '%s': %w", uid, err)
	}
	return &doc.Usage, nil
}

func (r *firestoreUsageRepository) IncrementOptimizations(ctx context.Context, uid string) (int, error) {
	if uid == "" {
		return 0, errors.New("uid cannot be empty for IncrementOptimizations operation")
	}

	docRef := r.client.Collection(usersCollection).Doc(uid)
	_, err := docRef.Set(ctx, map[string]interface{}{
		usageField: map[string]interface{}{
			"dailyOptimizationCount": firestore.Increment(1),
		},
	}, firestore.MergeAll)
	if err != nil {
		return 0, fmt.Errorf("failed to increment optimization count for user '%s': %w", uid, err)
	}

	usage, err := r.Get(ctx, uid)
	if err != nil {
		return 0, err
	}
	return usage.DailyOptimizationCount, nil
}
