package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/invisibox/invisibox-web/internal/backend"
	"github.com/invisibox/invisibox-web/internal/session"
)

// maxShareImageBytes bounds the uploaded chart image.
const maxShareImageBytes = 5 << 20

func (h *Handlers) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req backend.CreatePollRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}
	if req.Question == "" || len(req.Options) < 2 {
		respondJSON(w, http.StatusBadRequest, envelope{Error: "a poll needs a question and at least two options"})
		return
	}

	store := session.MustFromContext(r.Context())
	poll, err := h.backend.CreatePoll(r.Context(), store.Token(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{Data: poll})
}

func (h *Handlers) DeletePoll(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: "invalid poll id"})
		return
	}

	store := session.MustFromContext(r.Context())
	if err := h.backend.DeletePoll(r.Context(), store.Token(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "poll deleted"})
}

// SharePollResult forwards the rendered result chart to the backend as a
// multipart form: a title, a question, and the binary image part.
func (h *Handlers) SharePollResult(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxShareImageBytes); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: "invalid multipart form"})
		return
	}

	title := r.FormValue("title")
	question := r.FormValue("question")
	if title == "" || question == "" {
		respondJSON(w, http.StatusBadRequest, envelope{Error: "title and question are required"})
		return
	}

	image, header, err := r.FormFile("image")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{Error: "image part is required"})
		return
	}
	defer image.Close()

	store := session.MustFromContext(r.Context())
	if err := h.backend.SharePollResult(r.Context(), store.Token(), title, question, header.Filename, image); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "result shared"})
}
