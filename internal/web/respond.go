package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/invisibox/invisibox-web/internal/backend"
	"github.com/invisibox/invisibox-web/internal/session"
	"github.com/invisibox/invisibox-web/pkg/logger"
)

// envelope is the JSON response shape shared by all routes.
type envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondError maps a backend failure onto the response. A 401 means the
// session is gone everywhere: credentials are purged and state reset
// before the redirect is written, so the next route evaluation cannot see
// a stale authenticated session. Other backend statuses surface their
// message verbatim; transport failures get a generic message.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, backend.ErrUnauthorized) {
		if store, ok := session.FromContext(r.Context()); ok {
			store.Logout(w)
		}
		http.Redirect(w, r, session.LandingPath, http.StatusSeeOther)
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		respondJSON(w, apiErr.Status, envelope{Error: apiErr.Message})
		return
	}

	h.logger.Error("backend call failed", logger.Error(err))
	respondJSON(w, http.StatusBadGateway, envelope{Error: "something went wrong, please try again"})
}

// decodeJSON reads a JSON request body, rejecting unknown fields so typos
// fail loudly instead of silently dropping input.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
