package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	httpadapter "ownerscope/internal/adapters/http"
	"ownerscope/internal/app"
	"ownerscope/internal/config"
	"ownerscope/internal/logging"
	"ownerscope/internal/workers/decay"
)

func main() {
	cfg, err := config.Load()
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		if !errors.Is(err, config.ErrNoDatabase) {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
		log.Warn().Err(err).Msg("running without Postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	opts := []httpadapter.Option{
		httpadapter.WithAuditReader(a.Audit),
		httpadapter.WithContactLookup(a.Contacts),
	}
	srv := httpadapter.New(a.Monitor, a.Resolver, log, opts...)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	go decay.Run(ctx, a.Monitor, cfg.DecayInterval, log.With().Str("component", "decay").Logger())

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	log.Info().Str("addr", cfg.ListenAddr).Str("env", cfg.Env).Msg("listening")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
