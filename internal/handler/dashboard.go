package handler

import (
	"net/http"

	"github.com/stridehq/stride/internal/ctxkeys"
	"github.com/stridehq/stride/internal/service"
)

type DashboardHandler struct {
	stats *service.StatsService
	goals *service.GoalService
}

func NewDashboardHandler(stats *service.StatsService, goals *service.GoalService) *DashboardHandler {
	return &DashboardHandler{stats: stats, goals: goals}
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	stats, err := h.stats.Summary(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Overview handles GET /api/dashboard and bundles stats with active
// goals so the dashboard renders from one request.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	stats, err := h.stats.Summary(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to compute stats")
		return
	}
	goals, err := h.goals.Goals(user.ID, "progress")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load goals")
		return
	}

	goalResp := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		goalResp = append(goalResp, toGoalResponse(g))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats": stats,
		"goals": goalResp,
	})
}
