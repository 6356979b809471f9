// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/legaldocs/legaldocs/internal/config"
	"github.com/legaldocs/legaldocs/internal/i18n"
	"github.com/legaldocs/legaldocs/internal/services/email"
)

type recordingSender struct {
	to      string
	subject string
	body    string
}

func (r *recordingSender) Send(_ context.Context, to, subject, body string) error {
	r.to, r.subject, r.body = to, subject, body
	return nil
}

func TestGenerateToken(t *testing.T) {
	plaintext, hash, err := email.GenerateToken()
	require.NoError(t, err)

	assert.Len(t, plaintext, email.TokenLength*2) // hex encoded
	assert.NotEqual(t, plaintext, hash)
	assert.Equal(t, hash, email.HashToken(plaintext))

	// Tokens are unique
	other, _, err := email.GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, other)
}

func TestSendVerificationBuildsAPILink(t *testing.T) {
	require.NoError(t, i18n.Init())
	sender := &recordingSender{}
	svc := email.NewServiceWithSender(sender, "http://api.example.com/", "http://app.example.com")

	require.NoError(t, svc.SendVerification(context.Background(), "asha@example.com", "Asha", "tok123"))

	assert.Equal(t, "asha@example.com", sender.to)
	assert.Equal(t, "Verify your email", sender.subject)
	assert.Contains(t, sender.body, "Asha")
	assert.Contains(t, sender.body, "http://api.example.com/api/user/verify-email?token=tok123")
}

func TestSendPasswordResetBuildsFrontendLink(t *testing.T) {
	require.NoError(t, i18n.Init())
	sender := &recordingSender{}
	svc := email.NewServiceWithSender(sender, "http://api.example.com", "http://app.example.com/")

	require.NoError(t, svc.SendPasswordReset(context.Background(), "asha@example.com", "tok123"))

	assert.Contains(t, sender.body, "http://app.example.com/reset-password/tok123")
}

func TestSendDeadlineReminderLocalized(t *testing.T) {
	require.NoError(t, i18n.Init())
	sender := &recordingSender{}
	svc := email.NewServiceWithSender(sender, "http://api.example.com", "http://app.example.com")

	due := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	ctx := i18n.WithLocale(context.Background(), language.Hindi)
	require.NoError(t, svc.SendDeadlineReminder(ctx, "asha@example.com", "contract.pdf", due))

	assert.Contains(t, sender.body, "contract.pdf")
	assert.Contains(t, sender.body, "2026-09-02")
}

func TestNewServiceRequiresSMTPConfig(t *testing.T) {
	_, err := email.NewService(&config.SMTPConfig{From: "noreply@example.com"}, "", "")
	assert.Error(t, err)

	_, err = email.NewService(&config.SMTPConfig{Host: "smtp.example.com"}, "", "")
	assert.Error(t, err)

	_, err = email.NewService(&config.SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"}, "", "")
	assert.NoError(t, err)
}
