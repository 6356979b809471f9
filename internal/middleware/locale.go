// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/legaldocs/legaldocs/internal/i18n"
)

// Locale detects the caller's preferred language from the Accept-Language
// header and stores it in the request context for localized responses.
func Locale(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		lang := i18n.MatchLanguage(c.Request().Header.Get("Accept-Language"))
		ctx := i18n.WithLocale(c.Request().Context(), lang)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
