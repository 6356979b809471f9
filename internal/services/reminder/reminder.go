// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package reminder runs the daily deadline notification loop.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/legaldocs/legaldocs/internal/config"
	"github.com/legaldocs/legaldocs/internal/repository"
	"github.com/legaldocs/legaldocs/internal/services/email"
)

// Service polls for documents due tomorrow and mails their owners once per
// document. The same loop sweeps expired email verification challenges.
type Service struct {
	repo     *repository.Repository
	mailer   *email.Service
	sendHour int
	now      func() time.Time
}

func NewService(repo *repository.Repository, mailer *email.Service, cfg config.ReminderConfig) *Service {
	return &Service{
		repo:     repo,
		mailer:   mailer,
		sendHour: cfg.SendHour,
		now:      time.Now,
	}
}

// Run blocks until the context is cancelled, firing once per day at the
// configured hour.
func (s *Service) Run(ctx context.Context) {
	slog.Info("reminder_loop_started", "send_hour", s.sendHour)
	for {
		timer := time.NewTimer(time.Until(s.nextRun()))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("reminder_loop_stopped")
			return
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// nextRun returns the next occurrence of the send hour.
func (s *Service) nextRun() time.Time {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.sendHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce performs a single reminder pass: notify owners of documents due
// tomorrow, then sweep expired verification challenges.
func (s *Service) RunOnce(ctx context.Context) {
	tomorrow := s.now().AddDate(0, 0, 1)
	due, err := s.repo.ListDueReminders(ctx, tomorrow)
	if err != nil {
		slog.Error("reminder_query_failed", "error", err)
		return
	}

	for _, reminder := range due {
		if err := s.mailer.SendDeadlineReminder(ctx, reminder.Email, reminder.Title, reminder.LastDate); err != nil {
			slog.Warn("reminder_email_failed", "doc_id", reminder.DocID, "error", err)
			continue
		}
		if err := s.repo.MarkReminderSent(ctx, reminder.DocID); err != nil {
			slog.Error("reminder_flag_failed", "doc_id", reminder.DocID, "error", err)
			continue
		}
		slog.Info("reminder_sent", "doc_id", reminder.DocID)
	}

	deleted, err := s.repo.DeleteExpiredEmailVerificationTokens(ctx)
	if err != nil {
		slog.Error("token_sweep_failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("expired_tokens_swept", "count", deleted)
	}
}
