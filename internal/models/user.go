// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models holds the database row types.
package models

import (
	"database/sql"
	"time"
)

// Providers for user accounts.
const (
	ProviderManual = "manual"
	ProviderGoogle = "google"
)

type User struct { //nolint:govet // fieldalignment not critical for models
	ID                   int64          `db:"id" json:"id"`
	Name                 string         `db:"name" json:"name"`
	Email                string         `db:"email" json:"email"`
	PasswordHash         sql.NullString `db:"password_hash" json:"-"`
	Provider             string         `db:"provider" json:"provider"`
	IsValid              bool           `db:"is_valid" json:"is_valid"`
	Department           sql.NullString `db:"department" json:"-"`
	ResetPasswordToken   sql.NullString `db:"reset_password_token" json:"-"`
	ResetPasswordExpires sql.NullTime   `db:"reset_password_expires" json:"-"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
}

// SafeUser is the projection returned to clients.
type SafeUser struct { //nolint:govet // fieldalignment not critical for models
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Provider   string    `json:"provider"`
	IsValid    bool      `json:"is_valid"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Safe returns the client-facing projection of the user.
func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Provider:   u.Provider,
		IsValid:    u.IsValid,
		Department: u.Department.String,
		CreatedAt:  u.CreatedAt,
	}
}
