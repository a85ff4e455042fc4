// Package identity wraps Firebase ID-token verification behind a small
// interface so the auth middleware can be exercised without the Admin SDK.
package identity

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// Sentinel errors for the verification failure classes the middleware maps
// to response codes.
var (
	ErrExpired      = errors.New("id token expired")
	ErrRevoked      = errors.New("id token revoked")
	ErrMalformed    = errors.New("id token malformed")
	ErrVerification = errors.New("id token verification failed")
)

// User is the identity attached to a request after successful verification.
type User struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Verifier verifies a raw bearer token and resolves the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*User, error)
}

// firebaseVerifier is the production implementation backed by the Firebase
// Admin SDK. It verifies the token, then fetches the full user record so
// downstream handlers see the canonical display name and email rather than
// whatever claims happened to be minted into the token.
type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier creates a Verifier using the given Admin SDK auth client.
func NewFirebaseVerifier(client *auth.Client) Verifier {
	if client == nil {
		panic("identity: Firebase Auth client is nil")
	}
	return &firebaseVerifier{client: client}
}

func (v *firebaseVerifier) Verify(ctx context.Context, idToken string) (*User, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		switch {
		case auth.IsIDTokenExpired(err):
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		case auth.IsIDTokenRevoked(err):
			return nil, fmt.Errorf("%w: %v", ErrRevoked, err)
		case auth.IsIDTokenInvalid(err):
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrVerification, err)
		}
	}

	rec, err := v.client.GetUser(ctx, token.UID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching user record: %v", ErrVerification, err)
	}

	return &User{
		UID:         rec.UID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		PhotoURL:    rec.PhotoURL,
	}, nil
}
