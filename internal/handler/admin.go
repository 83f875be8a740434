package handler

import (
	"errors"
	"net/http"

	"github.com/stridehq/stride/internal/ctxkeys"
	"github.com/stridehq/stride/internal/repository"
	"github.com/stridehq/stride/internal/service"
)

type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Overview handles GET /api/admin/overview.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.admin.Overview()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to aggregate")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// Activity handles GET /api/admin/activity.
func (h *AdminHandler) Activity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"entries": h.admin.Activity()})
}

// DeleteUser handles DELETE /api/admin/users/{id}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin := ctxkeys.User(r.Context())
	targetID := r.PathValue("id")

	if targetID == admin.ID {
		writeError(w, http.StatusBadRequest, "bad_request", "admins cannot delete their own account here")
		return
	}

	if err := h.admin.DeleteUser(r.Context(), admin.ID, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
