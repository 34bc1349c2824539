// Command invisibox-web serves the invisibox frontend: it terminates
// browser sessions in encrypted cookies, proxies UI actions to the
// external invisibox REST backend, and gates management-only routes.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/invisibox/invisibox-web/internal/backend"
	"github.com/invisibox/invisibox-web/internal/credentials"
	"github.com/invisibox/invisibox-web/internal/session"
	"github.com/invisibox/invisibox-web/internal/web"
	"github.com/invisibox/invisibox-web/pkg/broadcast"
	"github.com/invisibox/invisibox-web/pkg/config"
	"github.com/invisibox/invisibox-web/pkg/cookie"
	"github.com/invisibox/invisibox-web/pkg/httpserver"
	"github.com/invisibox/invisibox-web/pkg/logger"
)

type appConfig struct {
	Logger  logger.Config
	Cookies cookie.Config
	Backend backend.Config
	Server  httpserver.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger, logger.WithService("invisibox-web"))
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("fatal", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	cookies, err := cookie.NewFromConfig(cfg.Cookies)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	invalidations := broadcast.New[backend.Invalidation](16)
	defer invalidations.Close()

	// Observability consumer: every forced logout leaves a trace.
	go logInvalidations(ctx, log, invalidations)

	creds := credentials.NewStore(cookies)
	sessions := session.NewManager(creds, log)
	client := backend.New(cfg.Backend, log, invalidations)
	handlers := web.NewHandlers(client, sessions, cookies, log)

	srv := httpserver.New(cfg.Server, log)
	return srv.Run(ctx, web.Router(handlers, sessions, log))
}

func logInvalidations(ctx context.Context, log *slog.Logger, bus *broadcast.Broadcaster[backend.Invalidation]) {
	sub := bus.Subscribe(ctx)
	for msg := range sub.Receive(ctx) {
		log.Warn("session invalidated by backend",
			slog.String("path", msg.Data.Path),
			slog.Time("at", msg.Data.At),
		)
	}
}
