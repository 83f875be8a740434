package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	polargo "github.com/polarsource/polar-go"
	"github.com/polarsource/polar-go/models/components"
	"github.com/polarsource/polar-go/models/operations"
	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/model"
)

type Polar struct {
	client        *polargo.Polar
	webhookSecret string
	products      map[string]string // "plan:interval" -> product ID
}

func NewPolar(cfg *config.Config) *Polar {
	serverOption := polargo.WithServer(polargo.ServerProduction)
	if cfg.PolarSandboxMode {
		serverOption = polargo.WithServer(polargo.ServerSandbox)
	}

	return &Polar{
		client: polargo.New(
			polargo.WithSecurity(cfg.PolarAPIKey),
			serverOption,
		),
		webhookSecret: cfg.PolarWebhookSecret,
		products: map[string]string{
			"standard:monthly": cfg.PolarProductIDStandardMonthly,
			"standard:yearly":  cfg.PolarProductIDStandardYearly,
			"premium:monthly":  cfg.PolarProductIDPremiumMonthly,
			"premium:yearly":   cfg.PolarProductIDPremiumYearly,
		},
	}
}

func (p *Polar) Name() string {
	return model.ProviderPolar
}

func (p *Polar) Checkout(ctx context.Context, params CheckoutParams) (string, error) {
	productID := p.products[params.Plan+":"+params.Interval]
	if productID == "" {
		return "", fmt.Errorf("no polar product configured for %s %s", params.Plan, params.Interval)
	}

	res, err := p.client.Checkouts.Create(ctx, components.CheckoutCreate{
		Products:      []string{productID},
		SuccessURL:    polargo.String(params.SuccessURL),
		ReturnURL:     polargo.String(params.CancelURL),
		CustomerEmail: polargo.String(params.Email),
		Metadata: map[string]components.CheckoutCreateMetadata{
			"user_id": components.CreateCheckoutCreateMetadataStr(params.UserID),
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating polar checkout: %w", err)
	}
	if res == nil || res.Checkout == nil {
		return "", fmt.Errorf("polar checkout response is nil")
	}
	return res.Checkout.URL, nil
}

func (p *Polar) Portal(ctx context.Context, customerID string) (string, error) {
	sessionCreate := operations.CreateCustomerSessionsCreateCustomerSessionCreateCustomerSessionCustomerIDCreate(
		components.CustomerSessionCustomerIDCreate{
			CustomerID: customerID,
		},
	)
	res, err := p.client.CustomerSessions.Create(ctx, sessionCreate)
	if err != nil {
		return "", fmt.Errorf("creating polar customer session: %w", err)
	}
	if res == nil || res.CustomerSession == nil {
		return "", fmt.Errorf("polar customer session response is nil")
	}
	return res.CustomerSession.CustomerPortalURL, nil
}

// polarSubscription mirrors the subset of Polar's webhook body the
// subscription flow needs.
type polarSubscription struct {
	ID                string            `json:"id"`
	CustomerID        string            `json:"customer_id"`
	ProductID         string            `json:"product_id"`
	Status            string            `json:"status"`
	Amount            *int64            `json:"amount"`
	Currency          *string           `json:"currency"`
	RecurringInterval *string           `json:"recurring_interval"`
	CurrentPeriodEnd  *string           `json:"current_period_end"`
	CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
	Metadata          map[string]string `json:"metadata"`
}

func (p *Polar) Webhook(r *http.Request, payload []byte) (*Event, error) {
	wh, err := standardwebhooks.NewWebhookRaw([]byte(p.webhookSecret))
	if err != nil {
		return nil, fmt.Errorf("creating webhook verifier: %w", err)
	}
	if err := wh.Verify(payload, r.Header); err != nil {
		return nil, fmt.Errorf("verifying polar webhook: %w", err)
	}

	var event struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("parsing polar webhook: %w", err)
	}

	var typ EventType
	switch event.Type {
	case "subscription.created", "subscription.active":
		typ = EventSubscriptionActive
	case "subscription.updated", "subscription.uncanceled":
		typ = EventSubscriptionUpdated
	case "subscription.canceled", "subscription.revoked":
		typ = EventSubscriptionCanceled
	default:
		return &Event{Type: EventIgnored}, nil
	}

	var sub polarSubscription
	if err := json.Unmarshal(event.Data, &sub); err != nil {
		return nil, fmt.Errorf("parsing polar subscription data: %w", err)
	}

	plan, interval := p.planForProduct(sub.ProductID)
	ev := &Event{
		Type:              typ,
		UserID:            sub.Metadata["user_id"],
		CustomerID:        sub.CustomerID,
		SubscriptionID:    sub.ID,
		Plan:              plan,
		Interval:          interval,
		Status:            sub.Status,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Amount != nil {
		ev.PriceAmount = *sub.Amount
	}
	if sub.Currency != nil {
		ev.PriceCurrency = *sub.Currency
	}
	if sub.RecurringInterval != nil {
		// Polar reports "month"/"year"
		switch *sub.RecurringInterval {
		case "month":
			ev.Interval = model.SubscriptionIntervalMonthly
		case "year":
			ev.Interval = model.SubscriptionIntervalYearly
		}
	}
	if sub.CurrentPeriodEnd != nil {
		if end, err := time.Parse(time.RFC3339, *sub.CurrentPeriodEnd); err == nil {
			end = end.UTC()
			ev.CurrentPeriodEnd = &end
		}
	}
	return ev, nil
}

func (p *Polar) planForProduct(productID string) (plan, interval string) {
	for key, id := range p.products {
		if id == productID && id != "" {
			for i := 0; i < len(key); i++ {
				if key[i] == ':' {
					return key[:i], key[i+1:]
				}
			}
		}
	}
	return "", ""
}
