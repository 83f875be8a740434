package handler

import (
	"errors"
	"net/http"

	"github.com/stridehq/stride/internal/ctxkeys"
	"github.com/stridehq/stride/internal/service"
)

type OnboardingHandler struct {
	wizard *service.WizardService
}

func NewOnboardingHandler(wizard *service.WizardService) *OnboardingHandler {
	return &OnboardingHandler{wizard: wizard}
}

// State handles GET /api/onboarding.
func (h *OnboardingHandler) State(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	state, err := h.wizard.State(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load onboarding state")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Next handles POST /api/onboarding/next. Advancing past the goals
// step without at least one goal returns 422.
func (h *OnboardingHandler) Next(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	state, err := h.wizard.Next(user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWizardNeedsGoal):
			writeError(w, http.StatusUnprocessableEntity, "needs_goal", err.Error())
		case errors.Is(err, service.ErrGoalLimitReached):
			writeError(w, http.StatusUnprocessableEntity, "goal_limit", "goal count exceeds your plan limit")
		case errors.Is(err, service.ErrWizardDone):
			writeError(w, http.StatusConflict, "already_done", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal", "failed to advance onboarding")
		}
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Back handles POST /api/onboarding/back.
func (h *OnboardingHandler) Back(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	state, err := h.wizard.Back(user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWizardAtFirstStep):
			writeError(w, http.StatusConflict, "first_step", err.Error())
		case errors.Is(err, service.ErrWizardDone):
			writeError(w, http.StatusConflict, "already_done", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal", "failed to go back")
		}
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Skip handles POST /api/onboarding/skip.
func (h *OnboardingHandler) Skip(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	state, err := h.wizard.Skip(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrWizardDone) {
			writeError(w, http.StatusConflict, "already_done", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to skip onboarding")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type preferencesRequest struct {
	Name         string `json:"name"`
	Timezone     string `json:"timezone"`
	ReminderTime string `json:"reminder_time"`
}

// Preferences handles PUT /api/onboarding/preferences.
func (h *OnboardingHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req preferencesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := h.wizard.SetPreferences(user.ID, req.Name, req.Timezone, req.ReminderTime); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	state, err := h.wizard.State(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load onboarding state")
		return
	}
	writeJSON(w, http.StatusOK, state)
}
