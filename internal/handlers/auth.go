// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legaldocs/legaldocs/internal/apperrors"
	authsvc "github.com/legaldocs/legaldocs/internal/services/auth"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates a new account and sends the verification email. The
// account is created even when the email cannot be delivered; the response
// says which case occurred.
func (h *Handlers) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.KindValidation, "Check your details")
	}

	result, err := h.auth.Register(c.Request().Context(), authsvc.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}

	message := "User registered. Please verify your email."
	if !result.EmailSent {
		message = "User registered, but the verification email could not be sent. Use resend."
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": message,
		"user":    result.User.Safe(),
	})
}

// VerifyEmail consumes the emailed verification token.
func (h *Handlers) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return apperrors.New(apperrors.KindValidation, "Token is required")
	}
	if err := h.auth.VerifyEmail(c.Request().Context(), token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Email verified successfully"})
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendVerification issues a fresh verification token.
func (h *Handlers) ResendVerification(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.KindValidation, "Email is required")
	}
	if err := h.auth.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Verification email sent"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with email and password and installs the token pair
// as cookies. The tokens also appear in the body for non-browser clients.
func (h *Handlers) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.KindValidation, "Invalid Credentials")
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Login successful",
		"user":        result.User.Safe(),
		"accessToken": result.AccessToken,
	})
}

type googleRequest struct {
	Token string `json:"token"`
}

// GoogleSignIn authenticates with a Google ID token, provisioning the
// account on first use.
func (h *Handlers) GoogleSignIn(c echo.Context) error {
	var req googleRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.KindValidation, "No token provided")
	}

	result, err := h.auth.GoogleSignIn(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Login successful",
		"user":        result.User.Safe(),
		"accessToken": result.AccessToken,
	})
}

// Logout revokes the stored refresh tokens and clears both cookies.
func (h *Handlers) Logout(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.Request().Context(), user.ID); err != nil {
		return err
	}
	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Refresh exchanges the refresh token cookie for a new access token.
func (h *Handlers) Refresh(c echo.Context) error {
	refreshToken := ""
	if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	accessToken, err := h.auth.Refresh(c.Request().Context(), refreshToken)
	if err != nil {
		return err
	}

	h.setCookie(c, accessTokenCookie, accessToken, h.cfg.Auth.AccessTokenTTL)
	return c.JSON(http.StatusOK, echo.Map{"accessToken": accessToken})
}

// ForgotPassword emails a password reset link.
func (h *Handlers) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.KindValidation, "Email is required")
	}
	if err := h.auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reset email sent"})
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

// ChangePassword consumes the reset token from the path and sets the new
// password.
func (h *Handlers) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.KindValidation, "Password not provided")
	}
	if err := h.auth.ChangePassword(c.Request().Context(), c.Param("token"), req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}
