package auth_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cricketbook/internal/auth"
	"cricketbook/internal/logger"
	"cricketbook/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	AuthService *auth.AuthService
	Logger      *logger.Logger
}

func NewHandler(authService *auth.AuthService, logger *logger.Logger) *Handler {
	return &Handler{AuthService: authService, Logger: logger}
}

// Routes mounts the identity endpoints under /api/auth.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/signup", h.SignUp)
	r.Post("/login", h.Login)
	r.With(auth.RequireUser).Post("/logout", h.Logout)
	r.Get("/session", h.Session)
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in auth.SignUpInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid sign-up JSON", err)
		return
	}

	result, err := h.AuthService.SignUp(r.Context(), in)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("SignUp: %v", err))
		utils.WriteError(w, utils.StatusFor(err), "Sign-up failed", err)
		return
	}

	h.setCookie(w, result.Token, result.Session.ExpiresAt)
	utils.WriteSuccess(w, http.StatusCreated, "Account created", result)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid login JSON", err)
		return
	}

	result, err := h.AuthService.SignIn(r.Context(), creds.Email, creds.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		utils.WriteError(w, http.StatusUnauthorized, "Login failed", err)
		return
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		utils.WriteError(w, utils.StatusFor(err), "Login failed", err)
		return
	}

	h.setCookie(w, result.Token, result.Session.ExpiresAt)
	utils.WriteSuccess(w, http.StatusOK, "Signed in", result)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.SignOut(r.Context(), auth.SessionFrom(r.Context())); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Logout: %v", err))
		utils.WriteError(w, utils.StatusFor(err), "Logout failed", err)
		return
	}

	h.setCookie(w, "", time.Unix(0, 0))
	utils.WriteSuccess(w, http.StatusOK, "Signed out", nil)
}

// Session reports the current identity, or null data when anonymous.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, "Current session", auth.SessionFrom(r.Context()))
}

func (h *Handler) setCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
