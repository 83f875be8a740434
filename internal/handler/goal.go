package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/stridehq/stride/internal/ctxkeys"
	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/service"
)

type GoalHandler struct {
	goals *service.GoalService
}

func NewGoalHandler(goals *service.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

type goalResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toGoalResponse(g *model.Goal) goalResponse {
	return goalResponse{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Status:      g.Status,
		Progress:    g.Progress,
		CreatedAt:   g.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   g.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type goalListResponse struct {
	Goals     []goalResponse `json:"goals"`
	Remaining int            `json:"remaining"` // -1 = unlimited
}

// List handles GET /api/goals?sort=recent|title|progress.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goals.Goals(user.ID, r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load goals")
		return
	}
	remaining, err := h.goals.RemainingQuota(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load goals")
		return
	}

	resp := goalListResponse{Goals: make([]goalResponse, 0, len(goals)), Remaining: remaining}
	for _, g := range goals {
		resp.Goals = append(resp.Goals, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createGoalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create handles POST /api/goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	goal, err := h.goals.Create(user.ID, req.Title, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGoalLimitReached):
			writeError(w, http.StatusForbidden, "goal_limit", "goal limit reached for your plan")
		case errors.Is(err, service.ErrGoalTitleEmpty):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal", "failed to create goal")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toGoalResponse(goal))
}

// Get handles GET /api/goals/{id}.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goal, err := h.goals.Goal(user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "goal not found")
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(goal))
}

type updateGoalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Progress    *int    `json:"progress"`
	Completed   *bool   `json:"completed"`
}

// Update handles PATCH /api/goals/{id}.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	goal, err := h.goals.Update(user.ID, r.PathValue("id"), service.GoalUpdate{
		Title:       req.Title,
		Description: req.Description,
		Progress:    req.Progress,
		Completed:   req.Completed,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGoalNotFound):
			writeError(w, http.StatusNotFound, "not_found", "goal not found")
		case errors.Is(err, service.ErrGoalLimitReached):
			writeError(w, http.StatusForbidden, "goal_limit", "goal limit reached for your plan")
		case errors.Is(err, service.ErrGoalTitleEmpty), errors.Is(err, service.ErrInvalidProgress):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal", "failed to update goal")
		}
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(goal))
}

// Delete handles DELETE /api/goals/{id}.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if err := h.goals.Delete(user.ID, r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrGoalNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "goal not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to delete goal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
