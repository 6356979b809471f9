// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/legaldocs/legaldocs/internal/models"
)

// CreateEmailVerificationToken creates a new email verification token,
// superseding any earlier challenge for the same user.
func (r *Repository) CreateEmailVerificationToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM email_verification_tokens WHERE user_id = ?`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO email_verification_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`,
		userID, tokenHash, expiresAt); err != nil {
		return err
	}
	return tx.Commit()
}

// GetEmailVerificationToken retrieves an email verification token by hash.
func (r *Repository) GetEmailVerificationToken(ctx context.Context, tokenHash string) (*models.EmailVerificationToken, error) {
	var token models.EmailVerificationToken
	err := r.db.GetContext(ctx, &token, `SELECT * FROM email_verification_tokens WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// DeleteEmailVerificationToken deletes a token by ID.
func (r *Repository) DeleteEmailVerificationToken(ctx context.Context, tokenID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM email_verification_tokens WHERE id = ?`, tokenID)
	return err
}

// CountEmailVerificationTokens returns the number of challenges for a user.
func (r *Repository) CountEmailVerificationTokens(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM email_verification_tokens WHERE user_id = ?`, userID); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteExpiredEmailVerificationTokens deletes expired tokens and reports
// how many rows went away.
func (r *Repository) DeleteExpiredEmailVerificationTokens(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_verification_tokens WHERE expires_at < ?`, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
