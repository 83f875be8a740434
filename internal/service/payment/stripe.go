package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"
	portalsession "github.com/stripe/stripe-go/v81/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	stripesub "github.com/stripe/stripe-go/v81/subscription"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/model"
)

type Stripe struct {
	webhookSecret string
	prices        map[string]string // "plan:interval" -> price ID
}

func NewStripe(cfg *config.Config) *Stripe {
	stripe.Key = cfg.StripeSecretKey

	return &Stripe{
		webhookSecret: cfg.StripeWebhookSecret,
		prices: map[string]string{
			"standard:monthly": cfg.StripePriceIDStandardMonthly,
			"standard:yearly":  cfg.StripePriceIDStandardYearly,
			"premium:monthly":  cfg.StripePriceIDPremiumMonthly,
			"premium:yearly":   cfg.StripePriceIDPremiumYearly,
		},
	}
}

func (s *Stripe) Name() string {
	return model.ProviderStripe
}

func (s *Stripe) priceID(plan, interval string) (string, error) {
	id := s.prices[plan+":"+interval]
	if id == "" {
		return "", fmt.Errorf("no stripe price configured for %s %s", plan, interval)
	}
	return id, nil
}

// planForPrice reverse-maps a Stripe price ID to plan and interval.
func (s *Stripe) planForPrice(priceID string) (plan, interval string) {
	for key, id := range s.prices {
		if id == priceID && id != "" {
			plan, interval, _ = strings.Cut(key, ":")
			return plan, interval
		}
	}
	return "", ""
}

func (s *Stripe) Checkout(ctx context.Context, params CheckoutParams) (string, error) {
	priceID, err := s.priceID(params.Plan, params.Interval)
	if err != nil {
		return "", err
	}

	checkoutParams := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(params.SuccessURL),
		CancelURL:     stripe.String(params.CancelURL),
		CustomerEmail: stripe.String(params.Email),
		// user_id on the subscription so lifecycle webhooks can be
		// attributed without a checkout session lookup
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": params.UserID},
		},
		Metadata: map[string]string{"user_id": params.UserID},
	}
	checkoutParams.Context = ctx

	sess, err := checkoutsession.New(checkoutParams)
	if err != nil {
		return "", fmt.Errorf("creating stripe checkout: %w", err)
	}
	return sess.URL, nil
}

func (s *Stripe) Portal(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("creating stripe portal session: %w", err)
	}
	return sess.URL, nil
}

func (s *Stripe) Webhook(r *http.Request, payload []byte) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("verifying stripe webhook: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("parsing checkout session: %w", err)
		}
		if sess.Subscription == nil {
			return &Event{Type: EventIgnored}, nil
		}
		// The session carries IDs only; fetch the subscription for
		// plan, price and period details.
		sub, err := stripesub.Get(sess.Subscription.ID, nil)
		if err != nil {
			return nil, fmt.Errorf("fetching stripe subscription %s: %w", sess.Subscription.ID, err)
		}
		ev := s.subscriptionEvent(sub, EventSubscriptionActive)
		if ev.UserID == "" {
			ev.UserID = sess.Metadata["user_id"]
		}
		return ev, nil

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("parsing subscription: %w", err)
		}
		return s.subscriptionEvent(&sub, EventSubscriptionUpdated), nil

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("parsing subscription: %w", err)
		}
		return s.subscriptionEvent(&sub, EventSubscriptionCanceled), nil
	}

	return &Event{Type: EventIgnored}, nil
}

func (s *Stripe) subscriptionEvent(sub *stripe.Subscription, typ EventType) *Event {
	ev := &Event{
		Type:              typ,
		UserID:            sub.Metadata["user_id"],
		SubscriptionID:    sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		ev.CustomerID = sub.Customer.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		ev.CurrentPeriodEnd = &end
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		price := sub.Items.Data[0].Price
		if price != nil {
			ev.Plan, ev.Interval = s.planForPrice(price.ID)
			ev.PriceAmount = price.UnitAmount
			ev.PriceCurrency = string(price.Currency)
		}
	}
	return ev
}
