// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legaldocs/legaldocs/internal/config"
	"github.com/legaldocs/legaldocs/internal/handlers"
	"github.com/legaldocs/legaldocs/internal/i18n"
	"github.com/legaldocs/legaldocs/internal/repository"
	authsvc "github.com/legaldocs/legaldocs/internal/services/auth"
	"github.com/legaldocs/legaldocs/internal/services/email"
	"github.com/legaldocs/legaldocs/internal/services/google"
	"github.com/legaldocs/legaldocs/internal/services/token"
	"github.com/legaldocs/legaldocs/internal/testutil"
)

type capturingSender struct {
	bodies []string
}

func (c *capturingSender) Send(_ context.Context, _, _, body string) error {
	c.bodies = append(c.bodies, body)
	return nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, assertion string) (*google.Identity, error) {
	if assertion != "valid-google-token" {
		return nil, errors.New("invalid assertion")
	}
	return &google.Identity{Email: "ravi@example.com", Name: "Ravi Iyer"}, nil
}

type fixture struct {
	h      *handlers.Handlers
	cfg    *config.Config
	repo   *repository.Repository
	sender *capturingSender
	e      *echo.Echo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	require.NoError(t, i18n.Init())

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "development", BaseURL: "http://api.example.com", FrontendURL: "http://app.example.com"},
		Auth: config.AuthConfig{
			AccessTokenSecret:  "access-secret",
			RefreshTokenSecret: "refresh-secret",
			AccessTokenTTL:     15 * time.Minute,
			RefreshTokenTTL:    7 * 24 * time.Hour,
		},
	}

	repo := testutil.NewTestDB(t)
	tokens := token.NewService(repo, &cfg.Auth)
	sender := &capturingSender{}
	mailer := email.NewServiceWithSender(sender, cfg.Server.BaseURL, cfg.Server.FrontendURL)
	accounts := authsvc.NewService(repo, tokens, mailer, stubVerifier{})

	return &fixture{
		h:      handlers.New(cfg, accounts, nil),
		cfg:    cfg,
		repo:   repo,
		sender: sender,
		e:      echo.New(),
	}
}

func (f *fixture) jsonRequest(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return f.e.NewContext(req, rec), rec
}

func (f *fixture) register(t *testing.T) {
	t.Helper()
	c, rec := f.jsonRequest(http.MethodPost, "/api/user/register",
		`{"email":"asha@example.com","password":"secret123","name":"Asha Verma"}`)
	require.NoError(t, f.h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func (f *fixture) verify(t *testing.T) {
	t.Helper()
	body := f.sender.bodies[len(f.sender.bodies)-1]
	idx := strings.Index(body, "token=")
	require.GreaterOrEqual(t, idx, 0)
	tok := body[idx+len("token="):]
	if end := strings.IndexAny(tok, " \n\r"); end >= 0 {
		tok = tok[:end]
	}

	c, rec := f.jsonRequest(http.MethodGet, "/api/user/verify-email?token="+tok, "")
	require.NoError(t, f.h.VerifyEmail(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestRegisterHandler(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	var resp struct {
		Message string `json:"message"`
		User    struct {
			Email   string `json:"email"`
			IsValid bool   `json:"is_valid"`
		} `json:"user"`
	}
	c, rec := f.jsonRequest(http.MethodPost, "/api/user/register",
		`{"email":"second@example.com","password":"secret123","name":"Second User"}`)
	require.NoError(t, f.h.Register(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "verify")
	assert.Equal(t, "second@example.com", resp.User.Email)
	assert.False(t, resp.User.IsValid)
}

func TestLoginHandlerSetsCookies(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	f.verify(t)

	c, rec := f.jsonRequest(http.MethodPost, "/api/user/login",
		`{"email":"asha@example.com","password":"secret123"}`)
	require.NoError(t, f.h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(rec, "accessToken")
	refresh := cookieByName(rec, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.False(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestLoginHandlerProductionCookiePolicy(t *testing.T) {
	f := newFixture(t)
	f.cfg.Server.Environment = "production"
	f.register(t)
	f.verify(t)

	c, rec := f.jsonRequest(http.MethodPost, "/api/user/login",
		`{"email":"asha@example.com","password":"secret123"}`)
	require.NoError(t, f.h.Login(c))

	access := cookieByName(rec, "accessToken")
	require.NotNil(t, access)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteNoneMode, access.SameSite)
}

func TestLoginHandlerRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	f.verify(t)

	c, _ := f.jsonRequest(http.MethodPost, "/api/user/login",
		`{"email":"asha@example.com","password":"wrong"}`)
	err := f.h.Login(c)
	require.Error(t, err)
}

func TestRefreshHandler(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	f.verify(t)

	c, rec := f.jsonRequest(http.MethodPost, "/api/user/login",
		`{"email":"asha@example.com","password":"secret123"}`)
	require.NoError(t, f.h.Login(c))
	refresh := cookieByName(rec, "refreshToken")
	require.NotNil(t, refresh)

	req := httptest.NewRequest(http.MethodPost, "/api/user/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh.Value})
	rec2 := httptest.NewRecorder()
	require.NoError(t, f.h.Refresh(f.e.NewContext(req, rec2)))

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotNil(t, cookieByName(rec2, "accessToken"))
}

func TestRefreshHandlerWithoutCookie(t *testing.T) {
	f := newFixture(t)

	c, _ := f.jsonRequest(http.MethodPost, "/api/user/refresh", "")
	assert.Error(t, f.h.Refresh(c))
}

func TestGoogleSignInHandler(t *testing.T) {
	f := newFixture(t)

	c, rec := f.jsonRequest(http.MethodPost, "/api/user/google", `{"token":"valid-google-token"}`)
	require.NoError(t, f.h.GoogleSignIn(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, cookieByName(rec, "accessToken"))
	assert.NotNil(t, cookieByName(rec, "refreshToken"))
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	c, rec := f.jsonRequest(http.MethodGet, "/health", "")
	require.NoError(t, f.h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
