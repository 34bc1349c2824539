package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/invisibox/invisibox-web/internal/session"
	"github.com/invisibox/invisibox-web/pkg/httpserver"
)

// Router assembles the full route table. Management-only routes sit behind
// the route guard; everything else is public.
func Router(h *Handlers, sessions *session.Manager, log *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(sessions.Middleware)

	r.Get("/health", httpserver.HealthCheckHandler(context.Background(), log))

	r.Get("/", h.Landing)

	r.Route("/auth", func(auth chi.Router) {
		auth.Post("/login", h.Login)
		auth.Post("/signup", h.Signup)
		auth.Post("/reset-password", h.ResetPassword)
		auth.Post("/forgot-invisibox-email", h.ForgotInvisiboxEmail)

		auth.Group(func(guarded chi.Router) {
			guarded.Use(sessions.RequireAuth)
			guarded.Post("/logout", h.Logout)
		})
	})

	r.Route("/employees", func(emp chi.Router) {
		emp.Post("/verify-invisibox-email", h.VerifyInvisiboxEmail)
		emp.Post("/subscribe", h.Subscribe)
		emp.Post("/unsubscribe", h.Unsubscribe)
		emp.Post("/send-anonymous-message", h.SendAnonymousMessage)
	})

	r.Group(func(guarded chi.Router) {
		guarded.Use(sessions.RequireAuth)

		guarded.Get("/dashboard", h.Dashboard)
		guarded.Get("/subscribers", h.Subscribers)
		guarded.Post("/subscribers/{id}/warn", h.WarnSubscriber)
		guarded.Post("/subscribers/{id}/ban", h.BanSubscriber)
		guarded.Get("/messages", h.Messages)

		guarded.Post("/polls", h.CreatePoll)
		guarded.Delete("/polls/{id}", h.DeletePoll)
		guarded.Post("/polls/share-result", h.SharePollResult)
	})

	return r
}

// Landing is the unauthenticated entry route. It reports whether a session
// exists so the client can route straight to the dashboard.
func (h *Handlers) Landing(w http.ResponseWriter, r *http.Request) {
	store := session.MustFromContext(r.Context())
	state := store.Snapshot()

	respondJSON(w, http.StatusOK, envelope{Data: map[string]any{
		"authenticated": state.Authenticated,
		"user":          state.User,
	}})
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
