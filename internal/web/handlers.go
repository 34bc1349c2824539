// Package web exposes the application's HTTP surface: thin handlers that
// validate input, call the invisibox backend, and keep the session store
// and credential cookies in sync with what the backend answered.
package web

import (
	"io"
	"log/slog"

	"github.com/invisibox/invisibox-web/internal/backend"
	"github.com/invisibox/invisibox-web/internal/session"
	"github.com/invisibox/invisibox-web/pkg/cookie"
)

// welcomeFlashKey names the single-use cookie that carries the "first
// login" welcome flag across the signup redirect.
const welcomeFlashKey = "welcome"

// Handlers bundles the dependencies every route needs. Constructed once in
// main and injected; nothing here is a package-level global.
type Handlers struct {
	backend  *backend.Client
	sessions *session.Manager
	cookies  *cookie.Manager
	logger   *slog.Logger
}

func NewHandlers(client *backend.Client, sessions *session.Manager, cookies *cookie.Manager, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handlers{
		backend:  client,
		sessions: sessions,
		cookies:  cookies,
		logger:   log,
	}
}
