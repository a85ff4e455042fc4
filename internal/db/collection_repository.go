package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"promptpilot-backend/internal/models"
)

// firestoreCollectionRepository implements CollectionRepository using
// Firestore. Items live at users/{uid}/{collection}/{itemID}.
type firestoreCollectionRepository struct {
	client *firestore.Client
}

// NewFirestoreCollectionRepository creates a new Firestore-backed CollectionRepository.
func NewFirestoreCollectionRepository(client *firestore.Client) CollectionRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for CollectionRepository.")
	}
	return &firestoreCollectionRepository{client: client}
}

func (r *firestoreCollectionRepository) itemsRef(uid, collection string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(uid).Collection(collection)
}

func (r *firestoreCollectionRepository) List(ctx context.Context, uid, collection string, limit int) ([]*models.DocumentItem, error) {
	if uid == "" || collection == "" {
		return nil, errors.New("uid and collection cannot be empty for List operation")
	}

	query := r.itemsRef(uid, collection).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	items := []*models.DocumentItem{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate '%s' items for user '%s': %w", collection, uid, err)
		}
		items = append(items, itemFromSnapshot(doc))
	}
	return items, nil
}

func (r *firestoreCollectionRepository) Get(ctx context.Context, uid, collection, itemID string) (*models.DocumentItem, error) {
	if uid == "" || collection == "" || itemID == "" {
		return nil, errors.New("uid, collection and itemID cannot be empty for Get operation")
	}
	docSnap, err := r.itemsRef(uid, collection).Doc(itemID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("item '%s' in '%s' not found for user '%s': %w", itemID, collection, uid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item '%s' in '%s' for user '%s': %w", itemID, collection, uid, err)
	}
	if !docSnap.Exists() {
		return nil, fmt.Errorf("item '%s' in '%s' not found for user '%s': %w", itemID, collection, uid, ErrNotFound)
	}
	return itemFromSnapshot(docSnap), nil
}

func (r *firestoreCollectionRepository) Add(ctx context.Context, uid, collection string, fields map[string]interface{}) (string, error) {
	if uid == "" || collection == "" {
		return "", errors.New("uid and collection cannot be empty for Add operation")
	}
	docRef := r.itemsRef(uid, collection).NewDoc()
	if _, err := docRef.Create(ctx, fields); err != nil {
		return "", fmt.Errorf("failed to add item to '%s' for user '%s': %w", collection, uid, err)
	}
	return docRef.ID, nil
}

func (r *firestoreCollectionRepository) Update(ctx context.Context, uid, collection, itemID string, fields map[string]interface{}) error {
	if uid == "" || collection == "" || itemID == "" {
		return errors.New("uid, collection and itemID cannot be empty for Update operation")
	}
	_, err := r.itemsRef(uid, collection).Doc(itemID).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update item '%s' in '%s' for user '%s': %w", itemID, collection, uid, err)
	}
	return nil
}

func (r *firestoreCollectionRepository) Delete(ctx context.Context, uid, collection, itemID string) error {
	if uid == "" || collection == "" || itemID == "" {
		return errors.New("uid, collection and itemID cannot be empty for Delete operation")
	}
	_, err := r.itemsRef(uid, collection).Doc(itemID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete item '%s' in '%s' for user '%s': %w", itemID, collection, uid, err)
	}
	return nil
}

// itemFromSnapshot splits the stamped timestamps out of the opaque payload.
func itemFromSnapshot(doc *firestore.DocumentSnapshot) *models.DocumentItem {
	data := doc.Data()
	item := &models.DocumentItem{ID: doc.Ref.ID, Data: data}
	if t, ok := data["createdAt"].(time.Time); ok {
		item.CreatedAt = t
	}
	if t, ok := data["updatedAt"].(time.Time); ok {
		item.UpdatedAt = t
	}
	return item
}
