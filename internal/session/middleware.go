package session

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/invisibox/invisibox-web/internal/credentials"
)

// LandingPath is where unauthenticated access attempts are sent.
const LandingPath = "/"

// Manager constructs per-request session stores and provides the route
// guard middleware. It is built once at application start and injected
// wherever session access is needed; there is no ambient global.
type Manager struct {
	creds  *credentials.Store
	logger *slog.Logger
}

func NewManager(creds *credentials.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{creds: creds, logger: log}
}

// Middleware builds a fresh Store for the request, runs the single
// sync-from-storage pass, and stows the store in the request context.
// Every request re-enters the loading state exactly once, here.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := NewStore(m.creds)
		store.InitializeAuth(w, r)

		next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), store)))
	})
}

// RequireAuth gates management-only routes. While the session is still
// loading it renders a neutral placeholder, never the protected content
// and never a redirect; once state is known, unauthenticated requests are
// redirected to the landing route.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store, ok := FromContext(r.Context())
		if !ok {
			// Guard mounted without the session middleware; treat as
			// still-loading rather than leaking protected content.
			m.logger.Error("route guard invoked without session middleware", slog.String("path", r.URL.Path))
			renderLoading(w)
			return
		}

		state := store.Snapshot()
		switch {
		case state.Loading:
			renderLoading(w)
		case !state.Authenticated:
			http.Redirect(w, r, LandingPath, http.StatusSeeOther)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func renderLoading(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "loading"})
}
