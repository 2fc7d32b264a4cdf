package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/filmfeud/internal/app"
	"github.com/Clark-Hu/filmfeud/internal/config"
	httpserver "github.com/Clark-Hu/filmfeud/internal/http"
	"github.com/Clark-Hu/filmfeud/internal/logging"
	"github.com/Clark-Hu/filmfeud/internal/migrate"
	"github.com/Clark-Hu/filmfeud/internal/repository"
	"github.com/Clark-Hu/filmfeud/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(os.Stderr, "info", false)
		bootLogger.Fatal().Err(err).Msg("config error")
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogPretty).With().Str("service", "filmfeud").Logger()

	if err := migrate.Up(cfg.DBURL); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer st.Close()

	repo := repository.New(st)
	svc, closeCache, err := app.Build(ctx, cfg, repo.Diaries, logger, app.Overrides{})
	if err != nil {
		logger.Fatal().Err(err).Msg("init comparison service")
	}
	defer closeCache()

	server := httpserver.New(cfg, st, repo, svc, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	logger.Info().Msg("stopped")
}
