package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/stridehq/stride/internal/ctxkeys"
	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/service"
)

type CheckInHandler struct {
	checkIns *service.CheckInService
}

func NewCheckInHandler(checkIns *service.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkIns: checkIns}
}

type checkInResponse struct {
	ID         string  `json:"id"`
	GoalID     *string `json:"goal_id,omitempty"`
	Date       string  `json:"date"`
	Rating     int     `json:"rating"`
	Reflection string  `json:"reflection"`
	CreatedAt  string  `json:"created_at"`
}

func toCheckInResponse(c *model.CheckIn) checkInResponse {
	return checkInResponse{
		ID:         c.ID,
		GoalID:     c.GoalID,
		Date:       c.Date,
		Rating:     c.Rating,
		Reflection: c.Reflection,
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type createCheckInRequest struct {
	GoalID     *string `json:"goal_id"`
	Rating     int     `json:"rating"`
	Reflection string  `json:"reflection"`
}

// Create handles POST /api/check-ins. A second check-in on the same
// day returns 409.
func (h *CheckInHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createCheckInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	checkIn, err := h.checkIns.Create(user.ID, req.GoalID, req.Rating, req.Reflection)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyCheckedIn):
			writeError(w, http.StatusConflict, "already_checked_in", "you already checked in today")
		case errors.Is(err, service.ErrInvalidRating):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		case errors.Is(err, service.ErrCheckInGoalLinked):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal", "failed to create check-in")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toCheckInResponse(checkIn))
}

// Today handles GET /api/check-ins/today.
func (h *CheckInHandler) Today(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	checkIn, err := h.checkIns.TodayCheckIn(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrCheckInNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"checked_in": false})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to load check-in")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"checked_in": true, "check_in": toCheckInResponse(checkIn)})
}

// List handles GET /api/check-ins?limit=N, newest first.
func (h *CheckInHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	checkIns, err := h.checkIns.History(user.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load check-ins")
		return
	}

	resp := make([]checkInResponse, 0, len(checkIns))
	for _, c := range checkIns {
		resp = append(resp, toCheckInResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"check_ins": resp})
}

// Delete handles DELETE /api/check-ins/{id}.
func (h *CheckInHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if err := h.checkIns.Delete(user.ID, r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrCheckInNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "check-in not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to delete check-in")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
