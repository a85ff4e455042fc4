package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"promptpilot-backend/internal/db"
)

// fakeProfileRepo is an in-memory ProfileRepository with merge semantics.
type fakeProfileRepo struct {
	docs    map[string]map[string]interface{}
	getErr  error
	setErr  error
	setHits int
}

func (f *fakeProfileRepo) Get(ctx context.Context, uid string) (map[string]interface{}, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[uid]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

func (f *fakeProfileRepo) Set(ctx context.Context, uid string, fields map[string]interface{}) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setHits++
	doc, ok := f.docs[uid]
	if !ok {
		doc = make(map[string]interface{})
		f.docs[uid] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (f *fakeProfileRepo) Delete(ctx context.Context, uid string) error {
	if _, ok := f.docs[uid]; !ok {
		return db.ErrNotFound
	}
	delete(f.docs, uid)
	return nil
}

func newTestProfileService(repo *fakeProfileRepo, now time.Time) *profileService {
	svc := NewProfileService(repo).(*profileService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestProfileSetStampsCreatedAtOnce(t *testing.T) {
	repo := &fakeProfileRepo{docs: map[string]map[string]interface{}{}}
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestProfileService(repo, first)

	if err := svc.Set(context.Background(), "uid-1", map[string]interface{}{"theme": "dark"}); err != nil {
		t.Fatalf("first Set: %v", err)
	}
	doc := repo.docs["uid-1"]
	if doc["createdAt"] != first || doc["updatedAt"] != first {
		t.Fatalf("first write: createdAt=%v updatedAt=%v, want both %v", doc["createdAt"], doc["updatedAt"], first)
	}

	second := first.Add(time.Hour)
	svc.now = func() time.Time { return second }
	if err := svc.Set(context.Background(), "uid-1", map[string]interface{}{"theme": "light"}); err != nil {
		t.Fatalf("second Set: %v", err)
	}
	doc = repo.docs["uid-1"]
	if doc["createdAt"] != first {
		t.Errorf("createdAt = %v, want to stay %v", doc["createdAt"], first)
	}
	if doc["updatedAt"] != second {
		t.Errorf("updatedAt = %v, want to advance to %v", doc["updatedAt"], second)
	}
	if doc["theme"] != "light" {
		t.Errorf("theme = %v, want light", doc["theme"])
	}
}

func TestProfileSetMergesFields(t *testing.T) {
	repo := &fakeProfileRepo{docs: map[string]map[string]interface{}{
		"uid-1": {"theme": "dark", "locale": "en"},
	}}
	svc := newTestProfileService(repo, time.Now().UTC())

	if err := svc.Set(context.Background(), "uid-1", map[string]interface{}{"theme": "light"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	doc := repo.docs["uid-1"]
	if doc["locale"] != "en" {
		t.Errorf("locale = %v, untouched fields must survive a partial update", doc["locale"])
	}
	if doc["theme"] != "light" {
		t.Errorf("theme = %v, want light", doc["theme"])
	}
}

func TestProfileGetNotFound(t *testing.T) {
	svc := newTestProfileService(&fakeProfileRepo{docs: map[string]map[string]interface{}{}}, time.Now().UTC())
	_, err := svc.Get(context.Background(), "uid-ghost")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestProfileDeleteNotFound(t *testing.T) {
	repo := &fakeProfileRepo{docs: map[string]map[string]interface{}{}}
	svc := newTestProfileService(repo, time.Now().UTC())
	if err := svc.Delete(context.Background(), "uid-ghost"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}
