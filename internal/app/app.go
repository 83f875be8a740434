// Package app wires repositories, services and handlers together.
// All dependencies flow through constructors; nothing reaches for
// package-level singletons.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/db"
	"github.com/stridehq/stride/internal/handler"
	"github.com/stridehq/stride/internal/repository"
	"github.com/stridehq/stride/internal/routes"
	"github.com/stridehq/stride/internal/service"
	"github.com/stridehq/stride/internal/service/payment"
	"github.com/stridehq/stride/internal/storage"
)

type App struct {
	Config  *config.Config
	DB      *sqlx.DB
	Handler http.Handler
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database, cfg.DBDriver); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	store, err := storage.NewS3(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	provider, err := payment.NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	// Repositories
	users := repository.NewUserRepository(database)
	profiles := repository.NewProfileRepository(database)
	subs := repository.NewSubscriptionRepository(database)
	goals := repository.NewGoalRepository(database)
	checkIns := repository.NewCheckInRepository(database)
	tokens := repository.NewTokenRepository(database)
	files := repository.NewFileRepository(database)

	// Services
	emailSvc := service.NewEmailService(cfg)
	fileSvc := service.NewFileService(cfg, files, store)
	subSvc := service.NewSubscriptionService(cfg, subs, provider)
	authSvc := service.NewAuthService(cfg, users, profiles, tokens, subSvc, emailSvc)
	userSvc := service.NewUserService(cfg, users, tokens, subSvc, fileSvc, emailSvc)
	profileSvc := service.NewProfileService(profiles)
	goalSvc := service.NewGoalService(goals, subSvc)
	checkInSvc := service.NewCheckInService(checkIns, goals, profiles)
	statsSvc := service.NewStatsService(checkIns, profiles)
	wizardSvc := service.NewWizardService(profiles, goals, subSvc)
	activity := service.NewActivityLog()
	adminSvc := service.NewAdminService(users, goals, checkIns, subs, fileSvc, activity)
	legalSvc := service.NewLegalService(cfg)

	h := routes.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Account:    handler.NewAccountHandler(userSvc, fileSvc, authSvc),
		Profile:    handler.NewProfileHandler(profileSvc),
		Goal:       handler.NewGoalHandler(goalSvc),
		CheckIn:    handler.NewCheckInHandler(checkInSvc),
		Dashboard:  handler.NewDashboardHandler(statsSvc, goalSvc),
		Onboarding: handler.NewOnboardingHandler(wizardSvc),
		Billing:    handler.NewBillingHandler(subSvc),
		Admin:      handler.NewAdminHandler(adminSvc),
		Legal:      handler.NewLegalHandler(legalSvc),
	}
	svc := routes.Services{
		Auth:         authSvc,
		User:         userSvc,
		Profile:      profileSvc,
		Subscription: subSvc,
	}

	return &App{
		Config:  cfg,
		DB:      database,
		Handler: routes.New(cfg, h, svc),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
