// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and verifies the access/refresh token pair.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/legaldocs/legaldocs/internal/config"
	"github.com/legaldocs/legaldocs/internal/repository"
)

var (
	// ErrExpired means the token was well-formed but past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrMalformed means the token failed parsing or signature checks.
	ErrMalformed = errors.New("token malformed")
	// ErrInvalid means the refresh token has no stored row (revoked or rotated away).
	ErrInvalid = errors.New("refresh token not recognized")
)

// Claims carries the authenticated user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// Service signs short-lived access tokens and long-lived refresh tokens, and
// maintains the single-active-refresh-token-per-user policy in the store.
type Service struct {
	repo          *repository.Repository
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewService creates a token service from the auth configuration.
func NewService(repo *repository.Repository, cfg *config.AuthConfig) *Service {
	return &Service{
		repo:          repo,
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

// AccessTTL returns the access-token lifetime (for cookie expiry).
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the refresh-token lifetime (for cookie expiry).
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken signs a short-lived token asserting the user id.
func (s *Service) IssueAccessToken(userID int64) (string, error) {
	return sign(userID, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken signs a long-lived token asserting the user id.
// Persisting it is the caller's responsibility (see RotateRefreshToken).
func (s *Service) IssueRefreshToken(userID int64) (string, error) {
	return sign(userID, s.refreshSecret, s.refreshTTL)
}

func sign(userID int64, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique ID so two tokens issued within the same second differ
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccessToken checks signature and expiry and returns the embedded
// user id. Expired and malformed tokens fail distinctly.
func (s *Service) VerifyAccessToken(tokenString string) (int64, error) {
	return verify(tokenString, s.accessSecret)
}

func verify(tokenString string, secret []byte) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !token.Valid {
		return 0, ErrMalformed
	}
	return claims.UserID, nil
}

// RotateRefreshToken replaces all stored refresh-token rows for the user
// with exactly one row holding the new token.
func (s *Service) RotateRefreshToken(ctx context.Context, userID int64, tokenString string) error {
	return s.repo.RotateRefreshToken(ctx, userID, tokenString)
}

// RevokeRefreshTokens deletes all stored refresh-token rows for the user.
func (s *Service) RevokeRefreshTokens(ctx context.Context, userID int64) error {
	return s.repo.DeleteRefreshTokens(ctx, userID)
}

// RedeemRefreshToken validates a presented refresh token against the store
// and its own signature/expiry, returning the embedded user id. The token is
// not rotated: it stays valid until expiry, the next login, or logout.
func (s *Service) RedeemRefreshToken(ctx context.Context, tokenString string) (int64, error) {
	if _, err := s.repo.GetRefreshToken(ctx, tokenString); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrInvalid
		}
		return 0, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return verify(tokenString, s.refreshSecret)
}
