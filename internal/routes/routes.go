package routes

import (
	"net/http"
	"time"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/handler"
	"github.com/stridehq/stride/internal/middleware"
	"github.com/stridehq/stride/internal/service"
	"github.com/stridehq/stride/web"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Account    *handler.AccountHandler
	Profile    *handler.ProfileHandler
	Goal       *handler.GoalHandler
	CheckIn    *handler.CheckInHandler
	Dashboard  *handler.DashboardHandler
	Onboarding *handler.OnboardingHandler
	Billing    *handler.BillingHandler
	Admin      *handler.AdminHandler
	Legal      *handler.LegalHandler
}

type Services struct {
	Auth         *service.AuthService
	User         *service.UserService
	Profile      *service.ProfileService
	Subscription *service.SubscriptionService
}

// New assembles the HTTP handler tree. Webhooks sit outside auth and
// CSRF; everything under /api is JSON.
func New(cfg *config.Config, h Handlers, svc Services) http.Handler {
	mux := http.NewServeMux()

	authMW := middleware.Auth(svc.Auth, svc.User, svc.Profile, svc.Subscription)
	authLimiter := middleware.NewRateLimiter(5, 15*time.Minute)

	// Auth endpoints, rate limited against credential stuffing.
	limited := func(fn http.HandlerFunc) http.Handler {
		return authLimiter.Limit(fn)
	}
	mux.Handle("POST /api/auth/signup", limited(h.Auth.Signup))
	mux.Handle("POST /api/auth/login", limited(h.Auth.Login))
	mux.Handle("POST /api/auth/magic", limited(h.Auth.RequestMagicLink))
	mux.Handle("POST /api/auth/forgot", limited(h.Auth.RequestPasswordReset))
	mux.Handle("POST /api/auth/reset", limited(h.Auth.ResetPassword))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/session", h.Auth.Session)

	// Browser redirect flows.
	mux.HandleFunc("GET /auth/magic", h.Auth.VerifyMagicLink)
	mux.HandleFunc("GET /auth/{provider}", h.Auth.OAuthStart)
	mux.HandleFunc("GET /auth/{provider}/callback", h.Auth.OAuthCallback)
	mux.HandleFunc("GET /account/email/confirm", h.Account.ConfirmEmailChange)

	// Account and profile.
	mux.Handle("GET /api/account", requireAuth(h.Account.Me))
	mux.Handle("PUT /api/account/password", requireAuth(h.Account.UpdatePassword))
	mux.Handle("POST /api/account/email", requireAuth(h.Account.RequestEmailChange))
	mux.Handle("POST /api/account/avatar", requireAuth(h.Account.UploadAvatar))
	mux.Handle("DELETE /api/account/avatar", requireAuth(h.Account.DeleteAvatar))
	mux.Handle("DELETE /api/account", requireAuth(h.Account.Delete))
	mux.Handle("GET /api/profile", requireAuth(h.Profile.Get))
	mux.Handle("PATCH /api/profile", requireAuth(h.Profile.Update))

	// Goals.
	mux.Handle("GET /api/goals", requireAuth(h.Goal.List))
	mux.Handle("POST /api/goals", requireAuth(h.Goal.Create))
	mux.Handle("GET /api/goals/{id}", requireAuth(h.Goal.Get))
	mux.Handle("PATCH /api/goals/{id}", requireAuth(h.Goal.Update))
	mux.Handle("DELETE /api/goals/{id}", requireAuth(h.Goal.Delete))

	// Check-ins.
	mux.Handle("POST /api/check-ins", requireAuth(h.CheckIn.Create))
	mux.Handle("GET /api/check-ins", requireAuth(h.CheckIn.List))
	mux.Handle("GET /api/check-ins/today", requireAuth(h.CheckIn.Today))
	mux.Handle("DELETE /api/check-ins/{id}", requireAuth(h.CheckIn.Delete))

	// Dashboard.
	mux.Handle("GET /api/dashboard", requireAuth(h.Dashboard.Overview))
	mux.Handle("GET /api/dashboard/stats", requireAuth(h.Dashboard.Stats))

	// Onboarding wizard.
	mux.Handle("GET /api/onboarding", requireAuth(h.Onboarding.State))
	mux.Handle("POST /api/onboarding/next", requireAuth(h.Onboarding.Next))
	mux.Handle("POST /api/onboarding/back", requireAuth(h.Onboarding.Back))
	mux.Handle("POST /api/onboarding/skip", requireAuth(h.Onboarding.Skip))
	mux.Handle("PUT /api/onboarding/preferences", requireAuth(h.Onboarding.Preferences))

	// Billing.
	mux.Handle("GET /api/billing/subscription", requireAuth(h.Billing.Subscription))
	mux.Handle("POST /api/billing/checkout", requireAuth(h.Billing.Checkout))
	mux.Handle("POST /api/billing/portal", requireAuth(h.Billing.Portal))

	// Admin.
	mux.Handle("GET /api/admin/overview", requireAdmin(h.Admin.Overview))
	mux.Handle("GET /api/admin/activity", requireAdmin(h.Admin.Activity))
	mux.Handle("DELETE /api/admin/users/{id}", requireAdmin(h.Admin.DeleteUser))

	// Legal content.
	mux.HandleFunc("GET /api/legal", h.Legal.List)
	mux.HandleFunc("GET /api/legal/{slug}", h.Legal.Page)

	// Embedded client, with SPA fallback to index.html.
	mux.Handle("/", web.Handler())

	app := middleware.Chain(mux,
		middleware.Logging,
		middleware.SecurityHeaders,
		middleware.WithConfig(cfg),
		authMW,
		middleware.CSRF,
	)

	// Webhooks are verified by provider signature, not session or CSRF.
	root := http.NewServeMux()
	root.Handle("POST /webhooks/billing", middleware.Chain(
		http.HandlerFunc(h.Billing.Webhook),
		middleware.Logging,
	))
	root.Handle("/", app)

	return root
}

func requireAuth(fn http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(fn)
}

func requireAdmin(fn http.HandlerFunc) http.Handler {
	return middleware.RequireAdmin(fn)
}
