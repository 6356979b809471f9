// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements the account lifecycle: registration, email
// verification, login, federated sign-in, token refresh, logout, and
// password reset.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/legaldocs/legaldocs/internal/apperrors"
	"github.com/legaldocs/legaldocs/internal/models"
	"github.com/legaldocs/legaldocs/internal/repository"
	"github.com/legaldocs/legaldocs/internal/services/email"
	"github.com/legaldocs/legaldocs/internal/services/google"
	"github.com/legaldocs/legaldocs/internal/services/token"
)

// emailTimeout bounds a single outbound mail delivery. A slow provider must
// not hold the request open; the primary operation is never rolled back on
// delivery failure.
const emailTimeout = 15 * time.Second

// dummyHash keeps login timing constant when the account does not exist or
// holds no password (federated accounts).
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Service wires the credential store, token service, mailer and federated
// verifier into the account lifecycle operations.
type Service struct {
	repo   *repository.Repository
	tokens *token.Service
	mailer *email.Service
	goog   google.Verifier
}

func NewService(repo *repository.Repository, tokens *token.Service, mailer *email.Service, goog google.Verifier) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		goog:   goog,
	}
}

// RegisterParams holds the parameters for user registration.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
}

// RegisterResult reports the created user and whether the verification
// email actually went out.
type RegisterResult struct {
	User      *models.User
	EmailSent bool
}

// Register creates an unverified user, issues a verification challenge and
// emails it. A failed email delivery degrades the result instead of rolling
// back the user row.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	if params.Email == "" || params.Password == "" || params.Name == "" {
		return nil, apperrors.New(apperrors.KindValidation, "Check your details")
	}
	if _, err := mail.ParseAddress(params.Email); err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "Invalid email address")
	}

	exists, err := s.repo.UserExists(ctx, params.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, apperrors.New(apperrors.KindConflict, "User already exists")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: sql.NullString{String: string(passwordHash), Valid: true},
		Provider:     models.ProviderManual,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	sent, err := s.issueVerification(ctx, user)
	if err != nil {
		return nil, err
	}

	slog.Info("register_success", "user_id", user.ID, "email", user.Email, "verification_email_sent", sent)
	return &RegisterResult{User: user, EmailSent: sent}, nil
}

// issueVerification creates a fresh challenge (superseding older ones) and
// emails it. Only challenge creation failures are fatal.
func (s *Service) issueVerification(ctx context.Context, user *models.User) (bool, error) {
	plaintext, hash, err := email.GenerateToken()
	if err != nil {
		return false, fmt.Errorf("failed to generate verification token: %w", err)
	}

	expiresAt := time.Now().Add(email.VerificationTokenExpiry)
	if err := s.repo.CreateEmailVerificationToken(ctx, user.ID, hash, expiresAt); err != nil {
		return false, fmt.Errorf("failed to store verification token: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, emailTimeout)
	defer cancel()
	if err := s.mailer.SendVerification(sendCtx, user.Email, user.Name, plaintext); err != nil {
		slog.Warn("verification_email_failed", "user_id", user.ID, "error", err)
		return false, nil
	}
	return true, nil
}

// VerifyEmail consumes a one-time verification challenge and flips the
// user's verified flag. Expired challenges fail without being deleted.
func (s *Service) VerifyEmail(ctx context.Context, tokenString string) error {
	challenge, err := s.repo.GetEmailVerificationToken(ctx, email.HashToken(tokenString))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.KindValidation, "Invalid or expired token")
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}
	if challenge.IsExpired() {
		return apperrors.New(apperrors.KindValidation, "Token expired")
	}

	if err := s.repo.MarkUserVerified(ctx, challenge.UserID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	if err := s.repo.DeleteEmailVerificationToken(ctx, challenge.ID); err != nil {
		return fmt.Errorf("failed to delete verification token: %w", err)
	}

	slog.Info("email_verified", "user_id", challenge.UserID)
	return nil
}

// ResendVerification supersedes older challenges with a fresh one and
// emails it.
func (s *Service) ResendVerification(ctx context.Context, emailAddr string) error {
	if emailAddr == "" {
		return apperrors.New(apperrors.KindValidation, "Email is required")
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.KindNotFound, "User not found")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsValid {
		return apperrors.New(apperrors.KindValidation, "Email is already verified")
	}

	sent, err := s.issueVerification(ctx, user)
	if err != nil {
		return err
	}
	if !sent {
		return apperrors.New(apperrors.KindUpstream, "Could not send verification email")
	}
	return nil
}

// LoginResult carries the authenticated user and the issued token pair.
type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Login verifies the credentials, requires a verified account, and issues a
// fresh token pair, rotating the stored refresh token. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	if emailAddr == "" || password == "" {
		return nil, apperrors.New(apperrors.KindValidation, "Invalid Credentials")
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform a bcrypt comparison
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", emailAddr, "reason", "user_not_found")
			return nil, apperrors.New(apperrors.KindAuthentication, "Invalid Credentials")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	storedHash := dummyHash
	if user.PasswordHash.Valid {
		storedHash = []byte(user.PasswordHash.String)
	}
	if err := bcrypt.CompareHashAndPassword(storedHash, []byte(password)); err != nil || !user.PasswordHash.Valid {
		slog.Warn("login_failed", "email", emailAddr, "reason", "invalid_password")
		return nil, apperrors.New(apperrors.KindAuthentication, "Invalid Credentials")
	}

	if !user.IsValid {
		return nil, apperrors.New(apperrors.KindNotVerified, "Please verify your email first")
	}

	result, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	slog.Info("login_success", "user_id", user.ID, "email", emailAddr)
	return result, nil
}

// GoogleSignIn verifies the federated assertion, provisions the account on
// first sign-in (verified, no password), and issues a token pair like Login.
func (s *Service) GoogleSignIn(ctx context.Context, assertion string) (*LoginResult, error) {
	if assertion == "" {
		return nil, apperrors.New(apperrors.KindValidation, "No token provided")
	}

	identity, err := s.goog.Verify(ctx, assertion)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindAuthentication, "Invalid Google token", err)
	}

	user, err := s.repo.GetUserByEmail(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		user = &models.User{
			Name:     identity.Name,
			Email:    identity.Email,
			Provider: models.ProviderGoogle,
			IsValid:  true,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("google_signup", "user_id", user.ID, "email", user.Email)
	}

	result, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	slog.Info("login_success", "user_id", user.ID, "email", user.Email, "provider", models.ProviderGoogle)
	return result, nil
}

func (s *Service) issueTokenPair(ctx context.Context, user *models.User) (*LoginResult, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	if err := s.tokens.RotateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout revokes every stored refresh token for the user.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	if err := s.tokens.RevokeRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	slog.Info("logout", "user_id", userID)
	return nil
}

// Refresh exchanges a stored, unexpired refresh token for a new access
// token. The refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.New(apperrors.KindAuthentication, "No refresh token")
	}

	userID, err := s.tokens.RedeemRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrInvalid) || errors.Is(err, token.ErrExpired) || errors.Is(err, token.ErrMalformed) {
			return "", apperrors.Wrap(apperrors.KindAuthentication, "Invalid or expired refresh token", err)
		}
		return "", err
	}

	accessToken, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return accessToken, nil
}

// ForgotPassword issues a reset challenge (stored hashed) and emails the
// reset link.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	if emailAddr == "" {
		return apperrors.New(apperrors.KindValidation, "Email is required")
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.KindNotFound, "User not found")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	plaintext, hash, err := email.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expiresAt := time.Now().Add(email.ResetTokenExpiry)
	if err := s.repo.SetResetPasswordToken(ctx, user.ID, hash, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, emailTimeout)
	defer cancel()
	if err := s.mailer.SendPasswordReset(sendCtx, user.Email, plaintext); err != nil {
		slog.Warn("reset_email_failed", "user_id", user.ID, "error", err)
		return apperrors.Wrap(apperrors.KindUpstream, "Could not send reset email", err)
	}

	slog.Info("reset_requested", "user_id", user.ID)
	return nil
}

// ChangePassword consumes a reset challenge and replaces the password hash.
func (s *Service) ChangePassword(ctx context.Context, resetToken, newPassword string) error {
	if newPassword == "" {
		return apperrors.New(apperrors.KindValidation, "Password not provided")
	}

	user, err := s.repo.GetUserByResetToken(ctx, email.HashToken(resetToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.KindValidation, "User not found or Token Expired")
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdateUserPassword(ctx, user.ID, string(passwordHash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password_reset", "user_id", user.ID)
	return nil
}

// CompleteProfile sets the user's department.
func (s *Service) CompleteProfile(ctx context.Context, userID int64, department string) (*models.User, error) {
	if userID == 0 || department == "" {
		return nil, apperrors.New(apperrors.KindValidation, "User ID and department are required")
	}

	if err := s.repo.SetUserDepartment(ctx, userID, department); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to set department: %w", err)
	}
	return s.repo.GetUserByID(ctx, userID)
}
