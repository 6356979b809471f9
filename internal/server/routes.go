// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"github.com/labstack/echo/v4"

	"github.com/legaldocs/legaldocs/internal/handlers"
	"github.com/legaldocs/legaldocs/internal/middleware"
	"github.com/legaldocs/legaldocs/internal/repository"
	"github.com/legaldocs/legaldocs/internal/services/token"
)

// setupRoutes wires the HTTP surface. Everything under the gate requires a
// valid access token and a verified account.
func setupRoutes(e *echo.Echo, h *handlers.Handlers, tokens *token.Service, repo *repository.Repository) {
	e.GET("/health", h.Health)

	gate := middleware.Authenticate(tokens, repo)

	user := e.Group("/api/user")
	user.POST("/register", h.Register)
	user.POST("/login", h.Login)
	user.POST("/google", h.GoogleSignIn)
	user.GET("/verify-email", h.VerifyEmail)
	user.POST("/resend-verification", h.ResendVerification)
	user.POST("/refresh", h.Refresh)
	user.POST("/forgot-password", h.ForgotPassword)
	user.POST("/change-password/:token", h.ChangePassword)
	user.POST("/logout", h.Logout, gate)
	user.GET("/fetch-user-data", h.FetchUserData, gate)
	user.POST("/complete-profile", h.CompleteProfile, gate)

	docs := e.Group("/api/docs", gate)
	docs.POST("/upload", h.UploadDocument)
	docs.GET("/get-all-docs", h.ListDocuments)
	docs.GET("/get-dept-docs", h.ListDepartmentDocuments)
	docs.GET("/:id/preview", h.PreviewDocument)
	docs.POST("/:id/delete", h.DeleteDocument)

	summary := e.Group("/api/summary", gate)
	summary.POST("/:id", h.GetSummary)
	summary.POST("/regenerate/:id", h.RegenerateSummary)

	chat := e.Group("/api/chat", gate)
	chat.POST("/chunk/:id", h.StartConversation)
	chat.POST("/:convId/:docId", h.Chat)
}
