// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/legaldocs/legaldocs/internal/models"
)

// CreateUser inserts a new user and fills in its assigned ID.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, provider, is_valid) VALUES (?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, user.Provider, user.IsValid)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return r.db.GetContext(ctx, user, `SELECT * FROM users WHERE id = ?`, id)
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UserExists checks if a user with the given email exists.
func (r *Repository) UserExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE email = ?`, email); err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkUserVerified flips the verified flag for a user.
func (r *Repository) MarkUserVerified(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_valid = 1 WHERE id = ?`, id)
	return err
}

// UpdateUserPassword replaces a user's password hash and clears any pending
// reset challenge.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_password_token = NULL, reset_password_expires = NULL WHERE id = ?`,
		passwordHash, id)
	return err
}

// SetResetPasswordToken stores the hashed reset challenge and its expiry.
func (r *Repository) SetResetPasswordToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_password_token = ?, reset_password_expires = ? WHERE id = ?`,
		tokenHash, expiresAt, id)
	return err
}

// GetUserByResetToken retrieves the user holding an unexpired reset challenge.
func (r *Repository) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE reset_password_token = ? AND reset_password_expires > ?`,
		tokenHash, time.Now())
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// SetUserDepartment sets the department field for a user.
func (r *Repository) SetUserDepartment(ctx context.Context, id int64, department string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET department = ? WHERE id = ?`, department, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
