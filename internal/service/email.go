package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/stridehq/stride/internal/config"
)

// EmailService sends transactional mail through Resend. Without an API
// key (development) emails are logged instead of sent, so local flows
// work end to end.
type EmailService struct {
	cfg    *config.Config
	client *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	} else {
		slog.Info("email running in log mode, set RESEND_API_KEY to send")
	}
	return &EmailService{cfg: cfg, client: client}
}

func (s *EmailService) send(ctx context.Context, to, subject, text string) error {
	if s.client == nil {
		slog.Info("email (log mode)", "to", to, "subject", subject, "body", text)
		return nil
	}

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.cfg.AppName, s.cfg.EmailFrom),
		To:      []string{to},
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}
	return nil
}

func (s *EmailService) SendMagicLink(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/auth/magic?token=%s", s.cfg.AppURL, token)
	return s.send(ctx, to,
		fmt.Sprintf("Sign in to %s", s.cfg.AppName),
		magicLinkBody(s.cfg.AppName, link, s.cfg.SupportEmail))
}

func (s *EmailService) SendWelcome(ctx context.Context, to, name string) error {
	return s.send(ctx, to,
		fmt.Sprintf("Welcome to %s", s.cfg.AppName),
		welcomeBody(s.cfg.AppName, name, s.cfg.AppURL, s.cfg.SupportEmail))
}

func (s *EmailService) SendPasswordReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.AppURL, token)
	return s.send(ctx, to,
		fmt.Sprintf("Reset your %s password", s.cfg.AppName),
		passwordResetBody(s.cfg.AppName, link, s.cfg.SupportEmail))
}

func (s *EmailService) SendEmailChange(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/account/email/confirm?token=%s", s.cfg.AppURL, token)
	return s.send(ctx, to,
		fmt.Sprintf("Confirm your new email for %s", s.cfg.AppName),
		emailChangeBody(s.cfg.AppName, link, s.cfg.SupportEmail))
}
