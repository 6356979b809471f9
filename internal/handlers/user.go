// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legaldocs/legaldocs/internal/apperrors"
)

// FetchUserData returns the authenticated user's profile.
func (h *Handlers) FetchUserData(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user.Safe()})
}

type completeProfileRequest struct {
	Department string `json:"department"`
}

// CompleteProfile records the user's department, which gates the
// department document listing.
func (h *Handlers) CompleteProfile(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req completeProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.KindValidation, "Department is required")
	}

	updated, err := h.auth.CompleteProfile(c.Request().Context(), user.ID, req.Department)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile completed",
		"user":    updated.Safe(),
	})
}
