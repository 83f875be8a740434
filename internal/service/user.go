package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
	"github.com/stridehq/stride/internal/validation"
)

var (
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrActiveSubscription = errors.New("cancel your paid subscription before deleting the account")
)

type UserService struct {
	cfg    *config.Config
	users  repository.UserRepository
	tokens repository.TokenRepository
	subs   *SubscriptionService
	files  *FileService
	email  *EmailService
}

func NewUserService(
	cfg *config.Config,
	users repository.UserRepository,
	tokens repository.TokenRepository,
	subs *SubscriptionService,
	files *FileService,
	email *EmailService,
) *UserService {
	return &UserService{
		cfg:    cfg,
		users:  users,
		tokens: tokens,
		subs:   subs,
		files:  files,
		email:  email,
	}
}

// User loads a user with the presigned avatar URL populated.
func (s *UserService) User(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.AvatarURL = s.files.AvatarURL(ctx, userID)
	return user, nil
}

// UpdatePassword changes the password. Accounts created via OAuth or
// magic link have no current password; they may set one directly.
func (s *UserService) UpdatePassword(userID, currentPassword, newPassword string) error {
	user, err := s.users.ByID(userID)
	if err != nil {
		return err
	}

	if user.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(currentPassword)); err != nil {
			return ErrWrongPassword
		}
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	hashStr := string(hash)
	user.PasswordHash = &hashStr

	return s.users.Update(user)
}

// RequestEmailChange stores the pending address and emails a
// confirmation link to it. The change only lands on confirmation.
func (s *UserService) RequestEmailChange(ctx context.Context, userID, newEmail string) error {
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	if err := validation.ValidateEmail(newEmail); err != nil {
		return err
	}

	if existing, err := s.users.ByEmail(newEmail); err == nil && existing.ID != userID {
		return ErrEmailTaken
	}

	user, err := s.users.ByID(userID)
	if err != nil {
		return err
	}

	user.PendingEmail = &newEmail
	if err := s.users.Update(user); err != nil {
		return err
	}

	if err := s.tokens.DeleteByUserAndType(userID, model.TokenTypeEmailChange); err != nil {
		return err
	}

	value, err := randomToken()
	if err != nil {
		return err
	}
	token := &model.Token{
		UserID:    userID,
		Type:      model.TokenTypeEmailChange,
		Token:     value,
		ExpiresAt: time.Now().UTC().Add(s.cfg.TokenEmailChangeExpiry),
	}
	if err := s.tokens.Create(token); err != nil {
		return err
	}

	return s.email.SendEmailChange(ctx, newEmail, value)
}

// ConfirmEmailChange consumes the token and promotes the pending email.
func (s *UserService) ConfirmEmailChange(tokenValue string) (*model.User, error) {
	token, err := s.tokens.ConsumeToken(tokenValue)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if token.Type != model.TokenTypeEmailChange || !token.IsValid() {
		return nil, ErrInvalidToken
	}

	user, err := s.users.ByID(token.UserID)
	if err != nil {
		return nil, err
	}
	if user.PendingEmail == nil || *user.PendingEmail == "" {
		return nil, ErrInvalidToken
	}

	now := time.Now().UTC()
	user.Email = *user.PendingEmail
	user.PendingEmail = nil
	user.EmailVerifiedAt = &now

	if err := s.users.Update(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user and all owned data. Paid
// subscriptions must be cancelled with the billing provider first so
// no one keeps getting charged for a deleted account.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	sub, err := s.subs.Subscription(userID)
	if err != nil {
		return err
	}
	if sub.IsPaid() {
		return ErrActiveSubscription
	}

	if err := s.files.DeleteAllUserFiles(ctx, userID); err != nil {
		slog.Warn("account delete: file cleanup failed", "user_id", userID, "error", err)
	}

	if err := s.users.Delete(userID); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}
