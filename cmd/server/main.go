package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/ninja-squad-backend/internal/config"
	"github.com/DoyleJ11/ninja-squad-backend/internal/httpapi"
	"github.com/DoyleJ11/ninja-squad-backend/internal/hub"
	"github.com/DoyleJ11/ninja-squad-backend/internal/logging"
	"github.com/DoyleJ11/ninja-squad-backend/internal/matchmaking"
	"github.com/DoyleJ11/ninja-squad-backend/internal/session"
	"github.com/DoyleJ11/ninja-squad-backend/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink session.ResultSink = session.NopSink{}
	var hist httpapi.History
	if cfg.DatabaseURL != "" {
		st, oerr := store.Open(ctx, cfg.DatabaseURL, log)
		if oerr != nil {
			return oerr
		}
		defer func() { err = multierr.Append(err, st.Close()) }()
		sink, hist = st, st
	} else {
		log.Warn("DATABASE_URL not set, session outcomes are not persisted")
	}

	h := hub.NewHub(ctx, hub.Options{
		Session: cfg.Session.Engine(),
		Sink:    sink,
		Logger:  log,
	})
	mm := matchmaking.New(ctx, h, matchmaking.Options{
		Timeout:   cfg.Matchmaking.Timeout,
		AllowBots: cfg.Matchmaking.AllowBots(),
		Logger:    log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.SetupRoutes(h, mm, hist, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr := srv.Shutdown(sctx)

		mm.Stop()
		h.Shutdown()
		h.Wait()
		return shutdownErr
	})
	return g.Wait()
}
