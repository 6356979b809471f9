// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth holds the request-scoped identity helpers.
package auth

import (
	"context"

	"github.com/legaldocs/legaldocs/internal/models"
)

type userContextKey struct{}

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFrom returns the authenticated user, or nil outside the auth gate.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey{}).(*models.User)
	return user
}
