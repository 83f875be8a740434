// Package payment abstracts billing providers behind a single interface
// so the subscription service never talks to Stripe or Polar directly.
package payment

import (
	"context"
	"net/http"
	"time"
)

type EventType string

const (
	// EventSubscriptionActive fires when a subscription is created or
	// renewed and should be reflected as active.
	EventSubscriptionActive EventType = "subscription.active"
	// EventSubscriptionUpdated fires on plan, interval or cancellation
	// flag changes.
	EventSubscriptionUpdated EventType = "subscription.updated"
	// EventSubscriptionCanceled fires when the provider subscription
	// ends; the user drops back to the free plan.
	EventSubscriptionCanceled EventType = "subscription.canceled"
	// EventIgnored marks webhook deliveries we verify but do not act on.
	EventIgnored EventType = "ignored"
)

// CheckoutParams carries everything a provider needs to start a hosted
// checkout for a paid plan.
type CheckoutParams struct {
	UserID     string
	Email      string
	Plan       string // "standard" or "premium"
	Interval   string // "monthly" or "yearly"
	SuccessURL string
	CancelURL  string
}

// Event is the provider-neutral result of a verified webhook delivery.
// UserID comes from checkout metadata and may be empty on lifecycle
// events; the subscription service then resolves the user by customer
// or subscription ID.
type Event struct {
	Type              EventType
	UserID            string
	CustomerID        string
	SubscriptionID    string
	Plan              string
	Interval          string
	Status            string
	PriceAmount       int64
	PriceCurrency     string
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
}

// Provider is implemented once per billing backend.
type Provider interface {
	// Name identifies the provider in subscription rows ("stripe", "polar").
	Name() string

	// Checkout returns a hosted checkout URL for the given plan.
	Checkout(ctx context.Context, params CheckoutParams) (string, error)

	// Portal returns a customer portal URL where the user can manage
	// payment methods and cancel.
	Portal(ctx context.Context, customerID string) (string, error)

	// Webhook verifies a delivery's signature and maps it to a
	// provider-neutral Event. Invalid signatures return an error.
	Webhook(r *http.Request, payload []byte) (*Event, error)
}
