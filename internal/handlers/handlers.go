// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP endpoints.
package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/legaldocs/legaldocs/internal/apperrors"
	"github.com/legaldocs/legaldocs/internal/config"
	"github.com/legaldocs/legaldocs/internal/models"
	authctx "github.com/legaldocs/legaldocs/internal/auth"
	authsvc "github.com/legaldocs/legaldocs/internal/services/auth"
	"github.com/legaldocs/legaldocs/internal/services/documents"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// Handlers bundles the services behind the HTTP endpoints.
type Handlers struct {
	cfg  *config.Config
	auth *authsvc.Service
	docs *documents.Service
}

func New(cfg *config.Config, auth *authsvc.Service, docs *documents.Service) *Handlers {
	return &Handlers{cfg: cfg, auth: auth, docs: docs}
}

// Health reports liveness.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// currentUser returns the gate-attached user. Routes behind the gate always
// have one; a nil user here is a routing bug.
func (h *Handlers) currentUser(c echo.Context) (*models.User, error) {
	user := authctx.UserFrom(c.Request().Context())
	if user == nil {
		return nil, apperrors.New(apperrors.KindAuthentication, "Authentication required")
	}
	return user, nil
}

// setAuthCookies installs the token pair. In production the cookies cross
// sites (SPA on another origin), so they are Secure with SameSite=None;
// development keeps Lax over plain HTTP.
func (h *Handlers) setAuthCookies(c echo.Context, accessToken, refreshToken string) {
	h.setCookie(c, accessTokenCookie, accessToken, h.cfg.Auth.AccessTokenTTL)
	h.setCookie(c, refreshTokenCookie, refreshToken, h.cfg.Auth.RefreshTokenTTL)
}

func (h *Handlers) clearAuthCookies(c echo.Context) {
	h.setCookie(c, accessTokenCookie, "", -time.Hour)
	h.setCookie(c, refreshTokenCookie, "", -time.Hour)
}

func (h *Handlers) setCookie(c echo.Context, name, value string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.cfg.Auth.CookieDomain,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cfg.Server.IsProduction() {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	} else {
		cookie.MaxAge = -1
	}
	c.SetCookie(cookie)
}

// docID parses the document id path parameter.
func docID(c echo.Context, name string) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).Int64(name, &id).BindError(); err != nil || id <= 0 {
		return 0, apperrors.New(apperrors.KindValidation, "Invalid document id")
	}
	return id, nil
}
