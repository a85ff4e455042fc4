package models

import (
	"firebase.google.com/go/v4/auth"
)

// Identity is the read-only mirror of the Firebase Auth user record that the
// proxy returns to clients. The identity provider owns the canonical copy;
// nothing here is written back except through explicit profile updates.
type Identity struct {
	UID           string   `json:"uid"`
	Email         string   `json:"email"`
	DisplayName   string   `json:"displayName,omitempty"`
	PhotoURL      string   `json:"photoURL,omitempty"`
	EmailVerified bool     `json:"emailVerified"`
	ProviderIDs   []string `json:"providerData,omitempty"`
	CreatedAt     int64    `json:"createdAt,omitempty"`     // unix millis, from provider metadata
	LastLoginAt   int64    `json:"lastLoginAt,omitempty"`   // unix millis, from provider metadata
}

// IdentityFromUserRecord converts a Firebase Admin SDK user record into the
// envelope shape returned by the credential proxy.
func IdentityFromUserRecord(rec *auth.UserRecord) *Identity {
	if rec == nil {
		return nil
	}
	id := &Identity{
		UID:           rec.UID,
		Email:         rec.Email,
		DisplayName:   rec.DisplayName,
		PhotoURL:      rec.PhotoURL,
		EmailVerified: rec.EmailVerified,
	}
	for _, p := range rec.ProviderUserInfo {
		if p != nil {
			id.ProviderIDs = append(id.ProviderIDs, p.ProviderID)
		}
	}
	if rec.UserMetadata != nil {
		id.CreatedAt = rec.UserMetadata.CreationTimestamp
		id.LastLoginAt = rec.UserMetadata.LastLogInTimestamp
	}
	return id
}
