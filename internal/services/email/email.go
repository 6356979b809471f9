// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email handles outgoing mail and challenge token generation.
package email

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/legaldocs/legaldocs/internal/config"
	"github.com/legaldocs/legaldocs/internal/i18n"
)

const (
	// TokenLength is the number of random bytes for challenge tokens.
	TokenLength = 32
	// VerificationTokenExpiry is how long email-verification challenges are valid.
	VerificationTokenExpiry = time.Hour
	// ResetTokenExpiry is how long password-reset challenges are valid.
	ResetTokenExpiry = 15 * time.Minute
)

// Sender delivers a single message. The SMTP implementation is swapped out
// in tests.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service composes and sends verification, reset and reminder emails.
type Service struct {
	sender      Sender
	baseURL     string
	frontendURL string
}

// NewService creates an email service delivering via SMTP.
func NewService(cfg *config.SMTPConfig, baseURL, frontendURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return NewServiceWithSender(&smtpSender{cfg: cfg}, baseURL, frontendURL), nil
}

// NewServiceWithSender creates an email service with a custom sender.
func NewServiceWithSender(sender Sender, baseURL, frontendURL string) *Service {
	return &Service{
		sender:      sender,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
	}
}

// GenerateToken generates a new challenge token.
// Returns (plaintext token, SHA256 hash for storage, error).
func GenerateToken() (string, string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	plaintext := hex.EncodeToString(bytes)
	return plaintext, HashToken(plaintext), nil
}

// HashToken computes the SHA256 hash of a token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// SendVerification sends a verification email with the given token.
func (s *Service) SendVerification(ctx context.Context, toEmail, name, token string) error {
	verifyURL := fmt.Sprintf("%s/api/user/verify-email?token=%s", s.baseURL, token)

	subject := i18n.T(ctx, "email_verification_subject")
	body := i18n.TData(ctx, "email_verification_body", map[string]any{
		"Name":      name,
		"VerifyURL": verifyURL,
	})

	return s.sender.Send(ctx, toEmail, subject, body)
}

// SendPasswordReset sends a reset-password link with the given token.
func (s *Service) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)

	subject := i18n.T(ctx, "password_reset_subject")
	body := i18n.TData(ctx, "password_reset_body", map[string]any{
		"ResetURL": resetURL,
	})

	return s.sender.Send(ctx, toEmail, subject, body)
}

// SendDeadlineReminder notifies the owner of a document due tomorrow.
func (s *Service) SendDeadlineReminder(ctx context.Context, toEmail, title string, due time.Time) error {
	subject := i18n.T(ctx, "deadline_reminder_subject")
	body := i18n.TData(ctx, "deadline_reminder_body", map[string]any{
		"Title":   title,
		"DueDate": due.Format("2006-01-02"),
	})

	return s.sender.Send(ctx, toEmail, subject, body)
}

// smtpSender sends mail via SMTP using go-mail.
type smtpSender struct {
	cfg *config.SMTPConfig
}

func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
