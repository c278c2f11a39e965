// Package identity verifies ID tokens issued by the external identity provider.
package identity

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// ErrUnavailable is returned when no identity provider is configured.
var ErrUnavailable = errors.New("identity provider is not configured")

// Verifier checks an ID token and returns the e-mail it was issued for.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (email string, err error)
}

// FirebaseVerifier verifies Firebase Authentication ID tokens.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier initializes the Firebase Admin SDK from a service
// account file.
func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// VerifyIDToken validates the token signature and expiry and returns its
// e-mail claim.
func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return "", errors.New("token has no email claim")
	}
	return email, nil
}

// DisabledVerifier rejects every token. It is used when no provider
// credentials are configured.
type DisabledVerifier struct{}

// VerifyIDToken always fails with ErrUnavailable.
func (DisabledVerifier) VerifyIDToken(context.Context, string) (string, error) {
	return "", ErrUnavailable
}
