package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/invisibox/invisibox-web/internal/session"
	"github.com/invisibox/invisibox-web/pkg/cookie"
	"github.com/invisibox/invisibox-web/pkg/logger"
)

// dashboardPayload decorates backend stats with the one-shot welcome flag.
type dashboardPayload struct {
	Stats       any  `json:"stats"`
	ShowWelcome bool `json:"showWelcomeModal"`
}

// Dashboard returns the management overview. Reading the welcome flash
// consumes it, so only the first dashboard load after signup shows the
// modal; any later mutation or reload sees it false.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	store := session.MustFromContext(r.Context())

	stats, err := h.backend.Dashboard(r.Context(), store.Token())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var welcome bool
	if err := h.cookies.GetFlash(w, r, welcomeFlashKey, &welcome); err != nil && !errors.Is(err, cookie.ErrCookieNotFound) {
		h.logger.Warn("read welcome flash", logger.Error(err))
	}
	store.SetShowWelcome(welcome)

	respondJSON(w, http.StatusOK, envelope{Data: dashboardPayload{
		Stats:       stats,
		ShowWelcome: welcome,
	}})
}

func (h *Handlers) Subscribers(w http.ResponseWriter, r *http.Request) {
	store := session.MustFromContext(r.Context())

	subscribers, err := h.backend.Subscribers(r.Context(), store.Token())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Data: subscribers})
}

func (h *Handlers) WarnSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: "invalid subscriber id"})
		return
	}

	store := session.MustFromContext(r.Context())
	if err := h.backend.WarnSubscriber(r.Context(), store.Token(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "subscriber warned"})
}

func (h *Handlers) BanSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: "invalid subscriber id"})
		return
	}

	store := session.MustFromContext(r.Context())
	if err := h.backend.BanSubscriber(r.Context(), store.Token(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "subscriber banned"})
}

func (h *Handlers) Messages(w http.ResponseWriter, r *http.Request) {
	store := session.MustFromContext(r.Context())

	messages, err := h.backend.Messages(r.Context(), store.Token())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Data: messages})
}
