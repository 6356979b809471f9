// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server assembles the application and runs the HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/legaldocs/legaldocs/internal/config"
	"github.com/legaldocs/legaldocs/internal/database"
	"github.com/legaldocs/legaldocs/internal/handlers"
	"github.com/legaldocs/legaldocs/internal/i18n"
	"github.com/legaldocs/legaldocs/internal/repository"
	"github.com/legaldocs/legaldocs/internal/services/ai"
	authsvc "github.com/legaldocs/legaldocs/internal/services/auth"
	"github.com/legaldocs/legaldocs/internal/services/documents"
	"github.com/legaldocs/legaldocs/internal/services/email"
	"github.com/legaldocs/legaldocs/internal/services/google"
	"github.com/legaldocs/legaldocs/internal/services/reminder"
	"github.com/legaldocs/legaldocs/internal/services/storage"
	"github.com/legaldocs/legaldocs/internal/services/token"
)

const shutdownTimeout = 10 * time.Second

// Run builds the application from the configuration and serves until the
// context is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	setupLogger(cfg.Log)

	if err := i18n.Init(); err != nil {
		return fmt.Errorf("failed to init i18n: %w", err)
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repository.New(db)

	mailer, err := email.NewService(&cfg.SMTP, cfg.Server.BaseURL, cfg.Server.FrontendURL)
	if err != nil {
		return fmt.Errorf("failed to build mailer: %w", err)
	}

	store, err := storage.NewService(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to build storage: %w", err)
	}

	tokens := token.NewService(repo, &cfg.Auth)
	verifier := google.NewVerifier(cfg.Auth.GoogleClientID)
	accounts := authsvc.NewService(repo, tokens, mailer, verifier)
	docs := documents.NewService(repo, store, ai.NewClient(cfg.AI))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler
	setupMiddleware(e, cfg)
	setupRoutes(e, handlers.New(cfg, accounts, docs), tokens, repo)

	if cfg.Reminder.Enabled {
		go reminder.NewService(repo, mailer, cfg.Reminder).Run(ctx)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_started", "addr", addr, "environment", cfg.Server.Environment)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
