package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/stridehq/stride/internal/ctxkeys"
	"github.com/stridehq/stride/internal/service"
)

type AccountHandler struct {
	users *service.UserService
	files *service.FileService
	auth  *service.AuthService
}

func NewAccountHandler(users *service.UserService, files *service.FileService, auth *service.AuthService) *AccountHandler {
	return &AccountHandler{users: users, files: files, auth: auth}
}

// Me handles GET /api/account.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	profile := ctxkeys.Profile(r.Context())
	sub := ctxkeys.Subscription(r.Context())

	resp := map[string]any{
		"id":             user.ID,
		"email":          user.Email,
		"email_verified": user.EmailVerifiedAt != nil,
		"role":           user.Role,
		"has_password":   user.HasPassword(),
		"avatar_url":     user.AvatarURL,
	}
	if profile != nil {
		resp["profile"] = map[string]any{
			"name":          profile.Name,
			"timezone":      profile.Timezone,
			"reminder_time": profile.ReminderTime,
			"onboarded":     profile.IsOnboarded(),
		}
	}
	if sub != nil {
		resp["plan"] = sub.PlanID
	}

	writeJSON(w, http.StatusOK, resp)
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdatePassword handles PUT /api/account/password.
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updatePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := h.users.UpdatePassword(user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			writeError(w, http.StatusForbidden, "wrong_password", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type emailChangeRequest struct {
	Email string `json:"email"`
}

// RequestEmailChange handles POST /api/account/email.
func (h *AccountHandler) RequestEmailChange(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req emailChangeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := h.users.RequestEmailChange(r.Context(), user.ID, req.Email); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email_taken", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmation_sent"})
}

// ConfirmEmailChange handles GET /account/email/confirm?token=...
func (h *AccountHandler) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	if _, err := h.users.ConfirmEmailChange(r.URL.Query().Get("token")); err != nil {
		http.Redirect(w, r, "/settings?error=invalid_link", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/settings?email=updated", http.StatusSeeOther)
}

// UploadAvatar handles POST /api/account/avatar (multipart form,
// field "avatar").
func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if err := r.ParseMultipartForm(6 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "avatar file is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read file")
		return
	}

	if _, err := h.files.UploadAvatar(r.Context(), user.ID, header.Filename, data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_file", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"avatar_url": h.files.AvatarURL(r.Context(), user.ID),
	})
}

// DeleteAvatar handles DELETE /api/account/avatar.
func (h *AccountHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if err := h.files.DeleteAvatar(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to delete avatar")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Delete handles DELETE /api/account.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if err := h.users.DeleteAccount(r.Context(), user.ID); err != nil {
		if errors.Is(err, service.ErrActiveSubscription) {
			writeError(w, http.StatusConflict, "active_subscription", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to delete account")
		return
	}

	h.auth.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
