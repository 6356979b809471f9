// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/legaldocs/legaldocs/internal/apperrors"
	"github.com/legaldocs/legaldocs/internal/config"
	"github.com/legaldocs/legaldocs/internal/middleware"
)

// setupMiddleware installs the shared middleware chain.
func setupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxBodySize)))
	e.Use(requestLogger())
	e.Use(middleware.Locale)

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.Server.FrontendURL},
		AllowCredentials: true,
	}))
}

// requestLogger emits one structured line per request.
func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
				slog.Warn("http_request", attrs...)
				return nil
			}
			slog.Info("http_request", attrs...)
			return nil
		},
	})
}

// errorHandler translates application errors into JSON responses. Untyped
// errors become opaque 500s; their detail stays in the log.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	case apperrors.KindOf(err) != apperrors.KindInternal:
		status = apperrors.KindOf(err).HTTPStatus()
		message = apperrors.MessageOf(err)
	default:
		slog.Error("request_failed", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
	}

	if writeErr := c.JSON(status, echo.Map{"message": message}); writeErr != nil {
		slog.Error("response_write_failed", "error", writeErr)
	}
}
