// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type summaryRequest struct {
	Language string `json:"language"`
}

// GetSummary returns the document summary in the requested language,
// generating it on first request and serving the cache afterwards.
func (h *Handlers) GetSummary(c echo.Context) error {
	return h.summarize(c, false)
}

// RegenerateSummary bypasses the cache and produces a fresh summary.
func (h *Handlers) RegenerateSummary(c echo.Context) error {
	return h.summarize(c, true)
}

func (h *Handlers) summarize(c echo.Context, regenerate bool) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	id, err := docID(c, "id")
	if err != nil {
		return err
	}

	// An absent body means the default language
	var req summaryRequest
	_ = c.Bind(&req)

	summary, err := h.docs.Summary(c.Request().Context(), user.ID, id, req.Language, regenerate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"summary": summary})
}
