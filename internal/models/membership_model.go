package models

import "time"

// Membership status values. The payment processor's webhook writer owns the
// stored record; this process only mirrors it.
const (
	MembershipFree  = "free"
	MembershipPro   = "pro"
	MembershipTrial = "trial"
)

// Subscription status values as reported by the payment provider.
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// Membership is the externally owned subscription/entitlement record,
// mirrored read-only out of the user document.
type Membership struct {
	Status             string     `json:"status" firestore:"status"`
	Plan               string     `json:"plan,omitempty" firestore:"plan,omitempty"`
	StartedAt          *time.Time `json:"startedAt,omitempty" firestore:"startedAt,omitempty"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty" firestore:"expiresAt,omitempty"`
	SubscriptionID     string     `json:"subscriptionId,omitempty" firestore:"subscriptionId,omitempty"`
	SubscriptionStatus string     `json:"subscriptionStatus,omitempty" firestore:"subscriptionStatus,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancelAtPeriodEnd" firestore:"cancelAtPeriodEnd"`
	CustomerID         string     `json:"customerId,omitempty" firestore:"customerId,omitempty"`
	LastVerifiedAt     *time.Time `json:"lastVerifiedAt,omitempty" firestore:"lastVerifiedAt,omitempty"`
}

// Expired reports whether a paid membership has lapsed even if the stored
// record has not been corrected yet. Correction is the webhook writer's job;
// readers only downgrade what they display.
func (m *Membership) Expired(now time.Time) bool {
	if m == nil || m.Status != MembershipPro {
		return false
	}
	return m.ExpiresAt != nil && m.ExpiresAt.Before(now)
}
