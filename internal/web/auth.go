package web

import (
	"log/slog"
	"net/http"

	"github.com/invisibox/invisibox-web/internal/backend"
	"github.com/invisibox/invisibox-web/internal/session"
	"github.com/invisibox/invisibox-web/pkg/logger"
)

// Login exchanges credentials for a session. On success the profile and
// token are persisted and the in-memory state flips to authenticated in
// the same mutation.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req backend.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}

	auth, err := h.backend.Login(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	store := session.MustFromContext(r.Context())
	if err := store.SetUser(w, auth.Profile(), auth.Token); err != nil {
		h.logger.Error("persist credentials", logger.Error(err))
		respondJSON(w, http.StatusInternalServerError, envelope{Error: "could not establish session"})
		return
	}

	h.logger.Info("user logged in", logger.UserEmail(auth.Email))
	respondJSON(w, http.StatusOK, envelope{Data: auth.Profile()})
}

// Signup registers a company. Besides establishing the session it arms the
// one-shot welcome flag, carried over the post-signup redirect as a flash
// cookie that the first dashboard read consumes.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req backend.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}

	auth, err := h.backend.Signup(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	store := session.MustFromContext(r.Context())
	if err := store.SetUser(w, auth.Profile(), auth.Token); err != nil {
		h.logger.Error("persist credentials", logger.Error(err))
		respondJSON(w, http.StatusInternalServerError, envelope{Error: "could not establish session"})
		return
	}

	store.SetShowWelcome(true)
	if err := h.cookies.SetFlash(w, welcomeFlashKey, true); err != nil {
		// Losing the welcome modal is cosmetic; the session itself is fine.
		h.logger.Warn("set welcome flash", logger.Error(err))
	}

	h.logger.Info("company signed up", logger.UserEmail(auth.Email), slog.String("company", auth.CompanyName))
	respondJSON(w, http.StatusCreated, envelope{Data: auth.Profile()})
}

// Logout revokes the token server-side on a best-effort basis, then purges
// credentials and resets state — in that order — before redirecting.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	store := session.MustFromContext(r.Context())

	if token := store.Token(); token != "" {
		if err := h.backend.Logout(r.Context(), token); err != nil {
			h.logger.Warn("backend logout failed", logger.Error(err))
		}
	}

	store.Logout(w)
	http.Redirect(w, r, session.LandingPath, http.StatusSeeOther)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req backend.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}

	if err := h.backend.ResetPassword(r.Context(), req); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "password updated"})
}

func (h *Handlers) ForgotInvisiboxEmail(w http.ResponseWriter, r *http.Request) {
	var req backend.ForgotInvisiboxEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}

	if err := h.backend.ForgotInvisiboxEmail(r.Context(), req); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "reminder sent"})
}
