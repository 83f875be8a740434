package payment

import (
	"fmt"

	"github.com/stridehq/stride/internal/config"
)

// NewProvider builds the configured billing provider. PAYMENT_PROVIDER
// selects the backend; credentials come from the matching env vars.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.PaymentProvider {
	case "stripe":
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("payment provider stripe requires STRIPE_SECRET_KEY")
		}
		return NewStripe(cfg), nil
	case "polar":
		if cfg.PolarAPIKey == "" {
			return nil, fmt.Errorf("payment provider polar requires POLAR_API_KEY")
		}
		return NewPolar(cfg), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.PaymentProvider)
	}
}
