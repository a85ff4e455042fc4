package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"promptpilot-backend/internal/models"
)

// MembershipWatcher mirrors the externally written membership block of the
// user document into broadcaster state via a Firestore snapshot stream. The
// payment processor's webhook writer owns the stored record; this watcher
// never writes.
type MembershipWatcher struct {
	client      *firestore.Client
	broadcaster *Broadcaster
	logger      *zap.Logger
}

// NewMembershipWatcher creates a watcher bound to a broadcaster.
func NewMembershipWatcher(client *firestore.Client, b *Broadcaster, logger *zap.Logger) *MembershipWatcher {
	if client == nil || b == nil {
		panic("MembershipWatcher requires a Firestore client and a Broadcaster")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MembershipWatcher{client: client, broadcaster: b, logger: logger}
}

// Watch streams document snapshots for users/{uid} until ctx is cancelled,
// pushing each decoded membership state into the broadcaster. Returns nil
// on cancellation.
func (w *MembershipWatcher) Watch(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("uid cannot be empty for Watch")
	}

	snaps := w.client.Collection("users").Doc(uid).Snapshots(ctx)
	defer snaps.Stop()

	for {
		snap, err := snaps.Next()
		if err != nil {
			if errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
				return nil
			}
			return fmt.Errorf("membership snapshot stream for user '%s': %w", uid, err)
		}

		var data map[string]interface{}
		if snap.Exists() {
			data = snap.Data()
		}
		m := DecodeMembership(data, time.Now().UTC())
		w.logger.Debug("Membership snapshot mirrored",
			zap.String("uid", uid), zap.String("status", m.Status))
		w.broadcaster.UpdateMembership(m)
	}
}

// DecodeMembership extracts the membership block from a user document's
// field map. Absent or unreadable data decodes as a free membership. A pro
// membership whose expiresAt is already in the past is downgraded in the
// mirrored copy only; correcting the stored record is the webhook writer's
// responsibility.
func DecodeMembership(data map[string]interface{}, now time.Time) *models.Membership {
	m := &models.Membership{Status: models.MembershipFree}
	raw, ok := data["membership"].(map[string]interface{})
	if !ok {
		return m
	}

	m.Status = asString(raw["status"], models.MembershipFree)
	m.Plan = asString(raw["plan"], "")
	m.SubscriptionID = asString(raw["subscriptionId"], "")
	m.SubscriptionStatus = asString(raw["subscriptionStatus"], "")
	m.CustomerID = asString(raw["customerId"], "")
	m.CancelAtPeriodEnd = asBool(raw["cancelAtPeriodEnd"])
	m.StartedAt = asTime(raw["startedAt"])
	m.ExpiresAt = asTime(raw["expiresAt"])
	m.LastVerifiedAt = asTime(raw["lastVerifiedAt"])

	if m.Expired(now) {
		m.Status = models.MembershipFree
	}
	return m
}

func asString(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asTime(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return &parsed
		}
	}
	return nil
}
