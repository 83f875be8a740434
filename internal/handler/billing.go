package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/stridehq/stride/internal/ctxkeys"
	"github.com/stridehq/stride/internal/service"
)

// webhookBodyLimit caps provider payloads; real deliveries are a few KB.
const webhookBodyLimit = 1 << 20

type BillingHandler struct {
	subs *service.SubscriptionService
}

func NewBillingHandler(subs *service.SubscriptionService) *BillingHandler {
	return &BillingHandler{subs: subs}
}

// Subscription handles GET /api/billing/subscription.
func (h *BillingHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	sub, err := h.subs.Subscription(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"plan":       sub.PlanID,
		"status":     sub.Status,
		"goal_limit": sub.GoalLimit(),
		"price":      sub.FormatPrice(),
		"period_end": sub.CurrentPeriodEnd,
		"paid":       sub.IsPaid(),
	})
}

type checkoutRequest struct {
	Plan     string `json:"plan"`
	Interval string `json:"interval"`
}

// Checkout handles POST /api/billing/checkout and returns the hosted
// checkout URL.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	url, err := h.subs.CheckoutURL(r.Context(), user, req.Plan, req.Interval)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlan) {
			writeError(w, http.StatusBadRequest, "invalid_plan", "plan must be standard or premium")
			return
		}
		slog.Error("checkout failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusBadGateway, "provider_error", "failed to start checkout")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Portal handles POST /api/billing/portal.
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	url, err := h.subs.PortalURL(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoPaidSubscription) {
			writeError(w, http.StatusBadRequest, "no_subscription", "no paid subscription to manage")
			return
		}
		slog.Error("portal session failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusBadGateway, "provider_error", "failed to open billing portal")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Webhook handles POST /webhooks/billing. Signature verification
// happens inside the provider; this route is mounted outside auth and
// CSRF.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read payload")
		return
	}

	if err := h.subs.HandleWebhook(r, payload); err != nil {
		slog.Warn("billing webhook rejected", "error", err)
		writeError(w, http.StatusBadRequest, "webhook_error", "webhook rejected")
		return
	}

	w.WriteHeader(http.StatusOK)
}
