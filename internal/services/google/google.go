// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package google verifies Google ID-token assertions for federated sign-in.
package google

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// Identity is the subset of a verified assertion the account flow needs.
type Identity struct {
	Email string
	Name  string
}

// Verifier validates an ID-token assertion from the client.
type Verifier interface {
	Verify(ctx context.Context, assertion string) (*Identity, error)
}

// NewVerifier returns a Verifier that validates tokens against Google's
// published keys and the configured OAuth client ID.
func NewVerifier(clientID string) Verifier {
	return &idTokenVerifier{clientID: clientID}
}

type idTokenVerifier struct {
	clientID string
}

func (v *idTokenVerifier) Verify(ctx context.Context, assertion string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, assertion, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validating Google ID token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		return nil, fmt.Errorf("Google ID token carries no email claim")
	}
	if name == "" {
		name = email
	}

	return &Identity{Email: email, Name: name}, nil
}
