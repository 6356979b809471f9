// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"github.com/legaldocs/legaldocs/internal/models"
)

// RotateRefreshToken replaces all refresh-token rows for a user with exactly
// one row holding the new token. Delete-then-insert in one transaction; a
// race between two logins for the same user resolves to the last writer,
// which matches "most recent login wins".
func (r *Repository) RotateRefreshToken(ctx context.Context, userID int64, token string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO refresh_tokens (user_id, token) VALUES (?, ?)`, userID, token); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteRefreshTokens removes all refresh-token rows for a user (logout).
func (r *Repository) DeleteRefreshTokens(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
	return err
}

// GetRefreshToken looks up a stored refresh-token row by its token string.
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM refresh_tokens WHERE token = ?`, token); err != nil {
		return nil, wrapError(err)
	}
	return &row, nil
}

// CountRefreshTokens returns the number of refresh-token rows for a user.
func (r *Repository) CountRefreshTokens(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM refresh_tokens WHERE user_id = ?`, userID); err != nil {
		return 0, err
	}
	return count, nil
}
