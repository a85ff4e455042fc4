package state

import (
	"testing"
	"time"

	"promptpilot-backend/internal/models"
)

func TestDecodeMembershipAbsentBlockIsFree(t *testing.T) {
	now := time.Now().UTC()
	for _, data := range []map[string]interface{}{
		nil,
		{},
		{"membership": "not a map"},
	} {
		m := DecodeMembership(data, now)
		if m.Status != models.MembershipFree {
			t.Errorf("data %v: status = %q, want free", data, m.Status)
		}
	}
}

func TestDecodeMembershipFullBlock(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	expires := now.Add(30 * 24 * time.Hour)
	data := map[string]interface{}{
		"membership": map[string]interface{}{
			"status":             "pro",
			"plan":               "pro_monthly",
			"subscriptionId":     "sub_123",
			"subscriptionStatus": "active",
			"customerId":         "cus_456",
			"cancelAtPeriodEnd":  true,
			"expiresAt":          expires,
			"startedAt":          now.Format(time.RFC3339),
		},
	}

	m := DecodeMembership(data, now)
	if m.Status != models.MembershipPro || m.Plan != "pro_monthly" {
		t.Errorf("status/plan = %q/%q", m.Status, m.Plan)
	}
	if m.SubscriptionID != "sub_123" || m.SubscriptionStatus != models.SubscriptionActive || m.CustomerID != "cus_456" {
		t.Errorf("subscription fields = %+v", m)
	}
	if !m.CancelAtPeriodEnd {
		t.Error("cancelAtPeriodEnd not decoded")
	}
	if m.ExpiresAt == nil || !m.ExpiresAt.Equal(expires) {
		t.Errorf("expiresAt = %v, want %v", m.ExpiresAt, expires)
	}
	if m.StartedAt == nil || !m.StartedAt.Equal(now) {
		t.Errorf("startedAt = %v, want RFC3339 string decoded to %v", m.StartedAt, now)
	}
}

func TestDecodeMembershipDowngradesExpiredPro(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	lapsed := now.Add(-time.Hour)
	data := map[string]interface{}{
		"membership": map[string]interface{}{
			"status":    "pro",
			"expiresAt": lapsed,
		},
	}

	m := DecodeMembership(data, now)
	if m.Status != models.MembershipFree {
		t.Errorf("status = %q, want downgraded to free", m.Status)
	}
	// The stored expiry survives in the mirror for display purposes.
	if m.ExpiresAt == nil || !m.ExpiresAt.Equal(lapsed) {
		t.Errorf("expiresAt = %v, want %v preserved", m.ExpiresAt, lapsed)
	}
}

func TestMembershipExpired(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name string
		m    *models.Membership
		want bool
	}{
		{"nil", nil, false},
		{"free never expires", &models.Membership{Status: models.MembershipFree, ExpiresAt: &past}, false},
		{"pro without expiry", &models.Membership{Status: models.MembershipPro}, false},
		{"pro lapsed", &models.Membership{Status: models.MembershipPro, ExpiresAt: &past}, true},
		{"pro current", &models.Membership{Status: models.MembershipPro, ExpiresAt: &future}, false},
	}
	for _, tc := range cases {
		if got := tc.m.Expired(now); got != tc.want {
			t.Errorf("%s: Expired = %v, want %v", tc.name, got, tc.want)
		}
	}
}
