package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/script-shelf/internal/auth"
	"github.com/sakif/script-shelf/internal/service"
)

// AuthHandler serves account routes: register, login, profile, password
// change, and the GitHub OAuth flow.
type AuthHandler struct {
	svc    *service.AuthService
	github *auth.GitHubProvider // nil when GitHub sign-in isn't configured
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, github *auth.GitHubProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		github: github,
		logger: logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/users/register {email, password} → 201 {id, email}
// 400 when fields are missing or the email is already registered.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Msg: "Invalid JSON body"})
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin verifies credentials and returns a signed token.
//
// HTTP: POST /api/users/login {email, password} → 200 {token}
// 400 on bad credentials — the response never says whether the email or the
// password was the wrong half.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Msg: "Invalid JSON body"})
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// HandleGetProfile returns the authenticated user's account record.
//
// HTTP: GET /api/users/profile (auth) → 200 {id, email}
func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile changes the authenticated user's email.
//
// HTTP: PUT /api/users/profile {email} (auth) → 200 {id, email}
// 400 when the email is taken by another user.
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Msg: "Invalid JSON body"})
		return
	}

	user, err := h.svc.UpdateEmail(r.Context(), userID, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleChangePassword verifies the current password and sets a new one.
//
// HTTP: PUT /api/users/password {currentPassword, newPassword} (auth) → 200 {msg}
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Msg: "Invalid JSON body"})
		return
	}

	if err := h.svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "Password updated"})
}

// HandleGitHubLogin starts the OAuth flow by redirecting to GitHub.
//
// HTTP: GET /auth/github/login
//
// A random state value goes into a short-lived cookie; the callback verifies
// it to rule out CSRF-initiated flows.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow: validates the state,
// exchanges the code for a GitHub profile, upserts the account, and returns
// the same signed token a password login yields.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy → 200 {token}
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("github callback: state mismatch or missing")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Msg: "Invalid OAuth state"})
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Msg: "Missing OAuth code"})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Msg: "Authentication failed"})
		return
	}

	token, err := h.svc.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("github callback: sign-in failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Msg: "Authentication failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
