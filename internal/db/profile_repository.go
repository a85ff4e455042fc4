package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// ErrNotFound is the common error for a document missing from Firestore.
var ErrNotFound = errors.New("document not found")

// firestoreProfileRepository implements ProfileRepository using Firestore.
// The profile lives at users/{uid}.
type firestoreProfileRepository struct {
	client *firestore.Client
}

// NewFirestoreProfileRepository creates a new Firestore-backed ProfileRepository.
func NewFirestoreProfileRepository(client *firestore.Client) ProfileRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ProfileRepository.")
	}
	return &firestoreProfileRepository{client: client}
}

func (r *firestoreProfileRepository) Get(ctx context.Context, uid string) (map[string]interface{}, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for Get operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("profile for user '%s' not found: %w", uid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile for user '%s': %w", uid, err)
	}
	if !docSnap.Exists() {
		return nil, fmt.Errorf("profile for user '%s' not found: %w", uid, ErrNotFound)
	}
	return docSnap.Data(), nil
}

func (r *firestoreProfileRepository) Set(ctx context.Context, uid string, fields map[string]interface{}) error {
	if uid == "" {
		return errors.New("uid cannot be empty for Set operation")
	}
	// MergeAll keeps fields that are not part of this write, so partial
	// profile updates never clobber the rest of the document.
	_, err := r.client.Collection(usersCollection).Doc(uid).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to set profile for user '%s': %w", uid, err)
	}
	return nil
}

func (r *firestoreProfileRepository) Delete(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("uid cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(uid).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete profile for user '%s': %w", uid, err)
	}
	return nil
}
