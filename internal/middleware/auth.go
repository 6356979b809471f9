// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware holds the HTTP middleware: the credential gate and
// locale detection.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/legaldocs/legaldocs/internal/apperrors"
	"github.com/legaldocs/legaldocs/internal/auth"
	"github.com/legaldocs/legaldocs/internal/models"
	"github.com/legaldocs/legaldocs/internal/repository"
	"github.com/legaldocs/legaldocs/internal/services/token"
)

// AccessTokenCookie is the cookie the gate reads before falling back to
// the Authorization header.
const AccessTokenCookie = "accessToken"

// UserLoader resolves a verified token subject to a full user record.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Verifier checks an access token and returns its subject.
type Verifier interface {
	VerifyAccessToken(tokenString string) (int64, error)
}

// ExtractToken pulls the access token from the request: the accessToken
// cookie wins, otherwise a Bearer Authorization header. The scheme match is
// case-insensitive. Empty string means no credential was presented.
func ExtractToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(rest)
}

// Authenticate gates a route group: it verifies the presented access token,
// loads the user, requires a verified account, and attaches the user to the
// request context.
func Authenticate(verifier Verifier, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := ExtractToken(c)
			if tokenString == "" {
				return apperrors.New(apperrors.KindAuthentication, "Authentication required")
			}

			userID, err := verifier.VerifyAccessToken(tokenString)
			if err != nil {
				if errors.Is(err, token.ErrExpired) {
					return apperrors.New(apperrors.KindAuthentication, "Token expired")
				}
				return apperrors.New(apperrors.KindAuthentication, "Invalid token")
			}

			user, err := users.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperrors.New(apperrors.KindAuthentication, "Invalid token")
				}
				slog.Error("auth_gate_lookup_failed", "user_id", userID, "error", err)
				return apperrors.Wrap(apperrors.KindInternal, "Internal server error", err)
			}
			if !user.IsValid {
				return apperrors.New(apperrors.KindNotVerified, "Please verify your email first")
			}

			ctx := auth.WithUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
