package web

import (
	"net/http"

	"github.com/invisibox/invisibox-web/internal/backend"
)

// Employee actions are unauthenticated by design: an employee proves
// nothing beyond knowledge of a proxy address, which is the whole point of
// the anonymity scheme.

func (h *Handlers) VerifyInvisiboxEmail(w http.ResponseWriter, r *http.Request) {
	var req backend.VerifyInvisiboxEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}

	res, err := h.backend.VerifyInvisiboxEmail(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Data: res})
}

func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req backend.SubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}

	if err := h.backend.Subscribe(r.Context(), req); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "subscribed"})
}

func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req backend.UnsubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}

	if err := h.backend.Unsubscribe(r.Context(), req); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "unsubscribed"})
}

func (h *Handlers) SendAnonymousMessage(w http.ResponseWriter, r *http.Request) {
	var req backend.SendAnonymousMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}

	if err := h.backend.SendAnonymousMessage(r.Context(), req); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "message sent"})
}
