package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stridehq/stride/internal/ctxkeys"
	"github.com/stridehq/stride/internal/service"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	user, err := h.auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email_taken", err.Error())
		default:
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		}
		return
	}

	h.startSession(w, user.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{UserID: user.ID, Email: user.Email, Role: user.Role})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	h.startSession(w, user.ID)
	writeJSON(w, http.StatusOK, sessionResponse{UserID: user.ID, Email: user.Email, Role: user.Role})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

// RequestMagicLink handles POST /api/auth/magic. The response is the
// same whether or not the address exists.
func (h *AuthHandler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := h.auth.RequestMagicLink(r.Context(), req.Email); err != nil {
		slog.Warn("magic link request failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// RequestPasswordReset handles POST /api/auth/forgot. Like the magic
// link endpoint, it answers the same whether or not the address exists.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		slog.Warn("password reset request failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword handles POST /api/auth/reset.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	user, err := h.auth.ResetPassword(req.Token, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired reset link")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	h.startSession(w, user.ID)
	writeJSON(w, http.StatusOK, sessionResponse{UserID: user.ID, Email: user.Email, Role: user.Role})
}

// VerifyMagicLink handles GET /auth/magic?token=... and redirects into
// the app with the session cookie set.
func (h *AuthHandler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.VerifyMagicLink(r.URL.Query().Get("token"))
	if err != nil {
		http.Redirect(w, r, "/login?error=invalid_link", http.StatusSeeOther)
		return
	}

	h.startSession(w, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// OAuthStart handles GET /auth/{provider} and redirects to the
// provider's consent page.
func (h *AuthHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	state := hex.EncodeToString(b)

	url, err := h.auth.OAuthURL(provider, state)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_provider", err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// OAuthCallback handles GET /auth/{provider}/callback.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Redirect(w, r, "/login?error=oauth_state", http.StatusSeeOther)
		return
	}
	// state is single-use
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	user, err := h.auth.OAuthAuthenticate(r.Context(), provider, r.URL.Query().Get("code"))
	if err != nil {
		slog.Warn("oauth callback failed", "provider", provider, "error", err)
		http.Redirect(w, r, "/login?error=oauth_failed", http.StatusSeeOther)
		return
	}

	h.startSession(w, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{UserID: user.ID, Email: user.Email, Role: user.Role})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID string) {
	token, err := h.auth.IssueJWT(userID)
	if err != nil {
		slog.Error("issuing session token failed", "user_id", userID, "error", err)
		return
	}
	h.auth.SetAuthCookie(w, token)
}
