// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legaldocs/legaldocs/internal/models"
	"github.com/legaldocs/legaldocs/internal/repository"
	"github.com/legaldocs/legaldocs/internal/testutil"
)

func newUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Asha Verma",
		Email:        email,
		PasswordHash: sql.NullString{String: "$2a$10$hash", Valid: true},
		Provider:     models.ProviderManual,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestCreateUser(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := newUser(t, repo, "asha@example.com")
	assert.NotZero(t, user.ID)
	assert.False(t, user.IsValid)
	assert.NotZero(t, user.CreatedAt)

	got, err := repo.GetUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, models.ProviderManual, got.Provider)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := testutil.NewTestDB(t)

	newUser(t, repo, "asha@example.com")
	err := repo.CreateUser(context.Background(), &models.User{
		Name:     "Someone Else",
		Email:    "asha@example.com",
		Provider: models.ProviderManual,
	})
	assert.Error(t, err)
}

func TestGetUserNotFound(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserExists(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()

	exists, err := repo.UserExists(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	newUser(t, repo, "asha@example.com")

	exists, err = repo.UserExists(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMarkUserVerified(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := newUser(t, repo, "asha@example.com")
	require.NoError(t, repo.MarkUserVerified(ctx, user.ID))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsValid)
}

func TestResetPasswordToken(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := newUser(t, repo, "asha@example.com")
	require.NoError(t, repo.SetResetPasswordToken(ctx, user.ID, "hash123", time.Now().Add(15*time.Minute)))

	got, err := repo.GetUserByResetToken(ctx, "hash123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// Changing the password consumes the challenge
	require.NoError(t, repo.UpdateUserPassword(ctx, user.ID, "$2a$10$newhash"))
	_, err = repo.GetUserByResetToken(ctx, "hash123")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetUserByResetTokenExpired(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := newUser(t, repo, "asha@example.com")
	require.NoError(t, repo.SetResetPasswordToken(ctx, user.ID, "hash123", time.Now().Add(-time.Minute)))

	_, err := repo.GetUserByResetToken(ctx, "hash123")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSetUserDepartment(t *testing.T) {
	repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := newUser(t, repo, "asha@example.com")
	require.NoError(t, repo.SetUserDepartment(ctx, user.ID, "Legal"))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Legal", got.Department.String)

	assert.ErrorIs(t, repo.SetUserDepartment(ctx, 9999, "Legal"), repository.ErrNotFound)
}
