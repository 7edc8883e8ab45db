// Command healthauditd runs the tamper-evident audit ledger daemon: an
// in-memory hash chain fronted by an HTTP API, with optional mirroring
// to a Postgres archive for restart recovery.
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

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wellally/healthaudit/internal/api"
	"github.com/wellally/healthaudit/internal/chain"
	"github.com/wellally/healthaudit/internal/config"
	"github.com/wellally/healthaudit/internal/db"
	"github.com/wellally/healthaudit/internal/db/migrations"
	"github.com/wellally/healthaudit/internal/dbpool"
	"github.com/wellally/healthaudit/internal/domain"
	"github.com/wellally/healthaudit/internal/service"
	"github.com/wellally/healthaudit/internal/store"
	"github.com/wellally/healthaudit/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "healthauditd:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)
	log.WithFields(logrus.Fields{
		"version": config.Version,
		"addr":    cfg.Addr(),
		"archive": cfg.ArchiveEnabled(),
	}).Info("starting healthauditd")

	chainStore := chain.NewStore(nil)
	var observers []domain.EntryObserver

	// Archive wiring: migrate, then keep mirroring new entries in the
	// background. The chain itself is restored from the mirror below.
	var pool *dbpool.Pool
	var archive *store.ArchiveStore
	var worker *service.ArchiveWorker
	if cfg.ArchiveEnabled() {
		pool, err = dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
		if err != nil {
			return fmt.Errorf("connect archive: %w", err)
		}
		defer pool.Close()

		if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
			return fmt.Errorf("migrate archive: %w", err)
		}

		archive = store.NewArchiveStore(store.Base{Pool: pool, Log: log})
		worker = service.NewArchiveWorker(archive, log, cfg.ArchiveQueueSize)
		observers = append(observers, worker)
	}

	hub := ws.NewHub(log, cfg.EventBufferSize)
	observers = append(observers, hub)

	ledger := service.NewLedger(chainStore, log, observers...)

	// A forged or truncated archive must never be served: Restore walks
	// the full chain and refuses anything that fails verification.
	if archive != nil {
		if err := restoreChain(ctx, ledger, archive, log); err != nil {
			return err
		}
	}

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Hub:         hub,
		Ledger:      ledger,
		APIKey:      cfg.APIKey.Value(),
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if worker != nil {
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("healthauditd stopped")
	return nil
}

// restoreChain loads the mirrored entries back into the empty chain and
// verifies every digest before the ledger is allowed to serve.
func restoreChain(ctx context.Context, ledger *service.Ledger, archive *store.ArchiveStore, log *logrus.Logger) error {
	entries, err := archive.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load archive: %w", err)
	}
	if len(entries) == 0 {
		log.Info("archive empty, starting fresh chain")
		return nil
	}

	if err := ledger.Restore(ctx, entries); err != nil {
		return fmt.Errorf("restore chain: %w", err)
	}

	log.WithField("entries", len(entries)).Info("chain restored from archive")
	return nil
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
