package handler

import (
	"errors"
	"net/http"

	"github.com/stridehq/stride/internal/ctxkeys"
	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/service"
)

type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type profileResponse struct {
	Name         string `json:"name"`
	Timezone     string `json:"timezone"`
	ReminderTime string `json:"reminder_time"`
	Onboarded    bool   `json:"onboarded"`
}

func toProfileResponse(p *model.Profile) profileResponse {
	return profileResponse{
		Name:         p.Name,
		Timezone:     p.Timezone,
		ReminderTime: p.ReminderTime,
		Onboarded:    p.IsOnboarded(),
	}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	profile, err := h.profiles.Profile(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

type updateProfileRequest struct {
	Name         *string `json:"name"`
	Timezone     *string `json:"timezone"`
	ReminderTime *string `json:"reminder_time"`
}

// Update handles PATCH /api/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	profile, err := h.profiles.Update(user.ID, service.ProfileUpdate{
		Name:         req.Name,
		Timezone:     req.Timezone,
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}
