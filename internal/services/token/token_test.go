// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legaldocs/legaldocs/internal/config"
	"github.com/legaldocs/legaldocs/internal/models"
	"github.com/legaldocs/legaldocs/internal/repository"
	"github.com/legaldocs/legaldocs/internal/services/token"
	"github.com/legaldocs/legaldocs/internal/testutil"
)

func newTestService(t *testing.T) (*token.Service, *repository.Repository) {
	t.Helper()
	repo := testutil.NewTestDB(t)
	svc := token.NewService(repo, &config.AuthConfig{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
	})
	return svc, repo
}

func createUser(t *testing.T, repo *repository.Repository) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Asha Verma",
		Email:        "asha@example.com",
		PasswordHash: sql.NullString{String: "$2a$10$hash", Valid: true},
		Provider:     models.ProviderManual,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	svc, _ := newTestService(t)

	signed, err := svc.IssueAccessToken(42)
	require.NoError(t, err)

	userID, err := svc.VerifyAccessToken(signed)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	repo := testutil.NewTestDB(t)
	svc := token.NewService(repo, &config.AuthConfig{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     -time.Minute,
		RefreshTokenTTL:    time.Hour,
	})

	signed, err := svc.IssueAccessToken(42)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestVerifyAccessTokenMalformed(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.VerifyAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, token.ErrMalformed)
}

func TestAccessAndRefreshSecretsAreSeparate(t *testing.T) {
	svc, _ := newTestService(t)

	// A refresh token must not pass the access-token check
	refresh, err := svc.IssueRefreshToken(42)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, token.ErrMalformed)
}

func TestRedeemRefreshToken(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	user := createUser(t, repo)

	refresh, err := svc.IssueRefreshToken(user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RotateRefreshToken(ctx, user.ID, refresh))

	userID, err := svc.RedeemRefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// Redeeming does not consume the token
	_, err = svc.RedeemRefreshToken(ctx, refresh)
	assert.NoError(t, err)
}

func TestRedeemRefreshTokenUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	signed, err := svc.IssueRefreshToken(42)
	require.NoError(t, err)

	// Valid signature but never stored
	_, err = svc.RedeemRefreshToken(context.Background(), signed)
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func TestRedeemRefreshTokenAfterRevoke(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	user := createUser(t, repo)

	refresh, err := svc.IssueRefreshToken(user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RotateRefreshToken(ctx, user.ID, refresh))
	require.NoError(t, svc.RevokeRefreshTokens(ctx, user.ID))

	_, err = svc.RedeemRefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func TestRotateInvalidatesPreviousToken(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	user := createUser(t, repo)

	first, err := svc.IssueRefreshToken(user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RotateRefreshToken(ctx, user.ID, first))

	second, err := svc.IssueRefreshToken(user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RotateRefreshToken(ctx, user.ID, second))

	_, err = svc.RedeemRefreshToken(ctx, first)
	assert.ErrorIs(t, err, token.ErrInvalid)

	_, err = svc.RedeemRefreshToken(ctx, second)
	assert.NoError(t, err)
}
