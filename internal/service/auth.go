// Package service — account and authentication business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/script-shelf/internal/apperror"
	"github.com/sakif/script-shelf/internal/auth"
	"github.com/sakif/script-shelf/internal/model"
	"github.com/sakif/script-shelf/internal/repository"
)

// MinPasswordLength applies to password changes. Registration only requires
// the field to be present — the original API never length-checked it there,
// and existing clients depend on that.
const MinPasswordLength = 6

// AuthService orchestrates registration, login, profile management, and the
// GitHub OAuth sign-in. It never touches HTTP: handlers parse requests and
// set headers; this layer owns the rules.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new password-based account.
// Duplicate emails surface as a Conflict (HTTP 400 on the wire — the
// original API used 400, not 409, and clients match on it).
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "Please enter all fields")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", email),
	)

	return user, nil
}

// Login verifies credentials and issues a signed token.
// "No such user" and "wrong password" share one error so responses never
// reveal which half was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", apperror.ValidationFailed("email", "Please enter all fields")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", apperror.ValidationFailed("credentials", "Invalid credentials")
	}

	if user.PasswordHash == "" {
		// OAuth-only account — there is no password to check.
		return "", apperror.ValidationFailed("credentials", "Invalid credentials")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", apperror.ValidationFailed("credentials", "Invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return token, nil
}

// GetProfile returns the account record for the authenticated user.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateEmail changes the authenticated user's email address.
func (s *AuthService) UpdateEmail(ctx context.Context, userID, email string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "Please enter all fields")
	}

	user, err := s.users.UpdateEmail(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user email updated", slog.String("userID", userID))

	return user, nil
}

// ChangePassword verifies the current password and stores a hash of the new
// one. The new password must be at least MinPasswordLength characters.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperror.ValidationFailed("password", "Please enter all fields")
	}
	if len(newPassword) < MinPasswordLength {
		return apperror.ValidationFailed("newPassword",
			fmt.Sprintf("New password must be at least %d characters", MinPasswordLength))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.PasswordHash == "" {
		return apperror.ValidationFailed("currentPassword", "Current password is incorrect")
	}
	if err := s.passwords.Verify(user.PasswordHash, currentPassword); err != nil {
		return apperror.ValidationFailed("currentPassword", "Current password is incorrect")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/auth: hashing new password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("user password changed", slog.String("userID", userID))

	return nil
}

// LoginWithGitHub completes the OAuth sign-in: upserts the account keyed on
// the stable GitHub ID and issues the same signed token password logins get.
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (string, error) {
	if ghUser == nil {
		return "", fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		Email:    ghUser.Email,
		GitHubID: &ghUser.ID,
	}

	if err := s.users.UpsertGitHub(ctx, user); err != nil {
		return "", fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", ghUser.Login),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
