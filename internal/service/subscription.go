package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
	"github.com/stridehq/stride/internal/service/payment"
)

var (
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrNoPaidSubscription = errors.New("no paid subscription")
)

type SubscriptionService struct {
	cfg      *config.Config
	subs     repository.SubscriptionRepository
	provider payment.Provider
}

func NewSubscriptionService(
	cfg *config.Config,
	subs repository.SubscriptionRepository,
	provider payment.Provider,
) *SubscriptionService {
	return &SubscriptionService{
		cfg:      cfg,
		subs:     subs,
		provider: provider,
	}
}

// Subscription returns the user's subscription, creating a free one on
// first access so every user always has a row.
func (s *SubscriptionService) Subscription(userID string) (*model.Subscription, error) {
	sub, err := s.subs.ByUserID(userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	sub = &model.Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		PlanID:    model.SubscriptionPlanFree,
		Status:    model.SubscriptionStatusActive,
		Currency:  "usd",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.subs.Create(sub); err != nil {
		return nil, fmt.Errorf("creating free subscription: %w", err)
	}
	return sub, nil
}

// CheckoutURL starts a hosted checkout for a paid plan and returns the
// redirect URL.
func (s *SubscriptionService) CheckoutURL(ctx context.Context, user *model.User, plan, interval string) (string, error) {
	if plan != model.SubscriptionPlanStandard && plan != model.SubscriptionPlanPremium {
		return "", ErrInvalidPlan
	}
	if interval != model.SubscriptionIntervalMonthly && interval != model.SubscriptionIntervalYearly {
		interval = model.SubscriptionIntervalMonthly
	}

	url, err := s.provider.Checkout(ctx, payment.CheckoutParams{
		UserID:     user.ID,
		Email:      user.Email,
		Plan:       plan,
		Interval:   interval,
		SuccessURL: s.cfg.AppURL + "/billing?checkout=success",
		CancelURL:  s.cfg.AppURL + "/billing",
	})
	if err != nil {
		return "", fmt.Errorf("creating checkout: %w", err)
	}
	return url, nil
}

// PortalURL returns the provider's customer portal for managing an
// existing paid subscription.
func (s *SubscriptionService) PortalURL(ctx context.Context, userID string) (string, error) {
	sub, err := s.Subscription(userID)
	if err != nil {
		return "", err
	}
	if sub.ProviderCustomerID == nil || *sub.ProviderCustomerID == "" {
		return "", ErrNoPaidSubscription
	}
	return s.provider.Portal(ctx, *sub.ProviderCustomerID)
}

// ApplyWebhookEvent mutates the subscription row for a verified
// provider event. The user is resolved from checkout metadata first,
// then by provider subscription or customer ID.
func (s *SubscriptionService) ApplyWebhookEvent(ev *payment.Event) error {
	if ev.Type == payment.EventIgnored {
		return nil
	}

	sub, err := s.resolveSubscription(ev)
	if err != nil {
		return err
	}

	switch ev.Type {
	case payment.EventSubscriptionActive, payment.EventSubscriptionUpdated:
		if ev.Plan != "" {
			sub.PlanID = ev.Plan
		}
		sub.Status = model.SubscriptionStatusActive
		sub.Provider = s.provider.Name()
		if ev.CustomerID != "" {
			sub.ProviderCustomerID = &ev.CustomerID
		}
		if ev.SubscriptionID != "" {
			sub.ProviderSubscriptionID = &ev.SubscriptionID
		}
		if ev.PriceAmount > 0 {
			amount := int(ev.PriceAmount)
			sub.Amount = &amount
		}
		if ev.PriceCurrency != "" {
			sub.Currency = ev.PriceCurrency
		}
		if ev.Interval != "" {
			interval := ev.Interval
			sub.Interval = &interval
		}
		sub.CurrentPeriodEnd = ev.CurrentPeriodEnd

	case payment.EventSubscriptionCanceled:
		return s.downgradeToFree(sub)
	}

	sub.UpdatedAt = time.Now().UTC()
	if err := s.subs.Update(sub); err != nil {
		return fmt.Errorf("updating subscription: %w", err)
	}

	slog.Info("subscription updated from webhook",
		"user_id", sub.UserID, "plan", sub.PlanID, "event", ev.Type)
	return nil
}

func (s *SubscriptionService) resolveSubscription(ev *payment.Event) (*model.Subscription, error) {
	if ev.UserID != "" {
		return s.Subscription(ev.UserID)
	}
	if ev.SubscriptionID != "" {
		sub, err := s.subs.ByProviderSubscriptionID(ev.SubscriptionID)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, err
		}
	}
	if ev.CustomerID != "" {
		sub, err := s.subs.ByProviderCustomerID(ev.CustomerID)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("webhook event has no resolvable subscription (sub=%q customer=%q)",
		ev.SubscriptionID, ev.CustomerID)
}

func (s *SubscriptionService) downgradeToFree(sub *model.Subscription) error {
	sub.PlanID = model.SubscriptionPlanFree
	sub.Status = model.SubscriptionStatusActive
	sub.Provider = ""
	sub.ProviderCustomerID = nil
	sub.ProviderSubscriptionID = nil
	sub.Amount = nil
	sub.Interval = nil
	sub.CurrentPeriodEnd = nil
	sub.UpdatedAt = time.Now().UTC()

	if err := s.subs.Update(sub); err != nil {
		return fmt.Errorf("downgrading to free: %w", err)
	}

	slog.Info("subscription downgraded to free", "user_id", sub.UserID)
	return nil
}

// HandleWebhook verifies and applies a raw provider webhook delivery.
func (s *SubscriptionService) HandleWebhook(r *http.Request, payload []byte) error {
	ev, err := s.provider.Webhook(r, payload)
	if err != nil {
		return err
	}
	return s.ApplyWebhookEvent(ev)
}
