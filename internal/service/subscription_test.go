package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/service/payment"
)

func TestSubscriptionAutoCreatesFreeRow(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewSubscriptionService(testConfig(), repo, stubProvider{})

	sub, err := svc.Subscription("u1")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionPlanFree, sub.PlanID)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status)

	again, err := svc.Subscription("u1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID, "second access returns the same row")
}

func TestWebhookUpgradeAndCancel(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewSubscriptionService(testConfig(), repo, stubProvider{})

	periodEnd := time.Now().UTC().Add(30 * 24 * time.Hour)
	err := svc.ApplyWebhookEvent(&payment.Event{
		Type:             payment.EventSubscriptionActive,
		UserID:           "u1",
		CustomerID:       "cus_123",
		SubscriptionID:   "sub_123",
		Plan:             model.SubscriptionPlanPremium,
		Interval:         model.SubscriptionIntervalMonthly,
		PriceAmount:      1900,
		PriceCurrency:    "usd",
		CurrentPeriodEnd: &periodEnd,
	})
	require.NoError(t, err)

	sub, err := repo.ByUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionPlanPremium, sub.PlanID)
	assert.True(t, sub.IsPaid())
	assert.Equal(t, "cus_123", *sub.ProviderCustomerID)
	assert.Equal(t, model.GoalLimitUnlimited, sub.GoalLimit())

	// Cancellation is delivered without user metadata; resolution falls
	// back to the provider subscription ID.
	err = svc.ApplyWebhookEvent(&payment.Event{
		Type:           payment.EventSubscriptionCanceled,
		SubscriptionID: "sub_123",
	})
	require.NoError(t, err)

	sub, err = repo.ByUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionPlanFree, sub.PlanID)
	assert.False(t, sub.IsPaid())
	assert.Nil(t, sub.ProviderSubscriptionID)
	assert.Equal(t, 2, sub.GoalLimit(), "cancelled account is back to free limits")
}

func TestWebhookIgnoredEventIsNoop(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewSubscriptionService(testConfig(), repo, stubProvider{})

	require.NoError(t, svc.ApplyWebhookEvent(&payment.Event{Type: payment.EventIgnored}))
	_, err := repo.ByUserID("u1")
	assert.Error(t, err, "no row created for ignored events")
}

func TestCheckoutURLValidatesPlan(t *testing.T) {
	svc := NewSubscriptionService(testConfig(), newFakeSubscriptionRepo(), stubProvider{})
	user := &model.User{ID: "u1", Email: "u1@example.com"}

	_, err := svc.CheckoutURL(t.Context(), user, model.SubscriptionPlanFree, model.SubscriptionIntervalMonthly)
	assert.ErrorIs(t, err, ErrInvalidPlan)

	url, err := svc.CheckoutURL(t.Context(), user, model.SubscriptionPlanStandard, "weekly")
	require.NoError(t, err, "unknown interval falls back to monthly")
	assert.NotEmpty(t, url)
}

func TestPortalRequiresPaidSubscription(t *testing.T) {
	svc := NewSubscriptionService(testConfig(), newFakeSubscriptionRepo(), stubProvider{})

	_, err := svc.PortalURL(t.Context(), "u1")
	assert.ErrorIs(t, err, ErrNoPaidSubscription)
}
