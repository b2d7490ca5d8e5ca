// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

// Command server runs the NoveList HTTP service: upload a Goodreads
// library export, get back the to-read shelf ranked by predicted
// rating.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/novelist-app/novelist/internal/api"
	"github.com/novelist-app/novelist/internal/catalog"
	"github.com/novelist-app/novelist/internal/config"
	"github.com/novelist-app/novelist/internal/corpus"
	"github.com/novelist-app/novelist/internal/engine"
	"github.com/novelist-app/novelist/internal/logging"
)

// startupTimeout bounds initial corpus loading.
const startupTimeout = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("catalog_backend", cfg.Catalog.Backend).
		Str("corpus_backend", cfg.Corpus.Backend).
		Int("port", cfg.Server.Port).
		Msg("starting novelist server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	reconciler, corpusProvider, cleanup, err := buildProviders(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	eng, err := engine.New(startupCtx, reconciler, corpusProvider, engineParams(cfg))
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(eng, cfg),
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildProviders constructs the identifier and corpus providers for
// the configured backends. DuckDB-backed providers share one database
// handle per file and sit behind circuit breakers.
func buildProviders(cfg *config.Config) (*catalog.Reconciler, corpus.Provider, func(), error) {
	dbs := make(map[string]*sql.DB)
	openDB := func(path string) (*sql.DB, error) {
		if db, ok := dbs[path]; ok {
			return db, nil
		}
		db, err := sql.Open("duckdb", path)
		if err != nil {
			return nil, fmt.Errorf("open duckdb %s: %w", path, err)
		}
		dbs[path] = db
		return db, nil
	}
	cleanup := func() {
		for path, db := range dbs {
			if err := db.Close(); err != nil {
				logging.Warn().Err(err).Str("database", path).Msg("failed to close database")
			}
		}
	}

	var refProvider catalog.ReferenceProvider
	switch cfg.Catalog.Backend {
	case config.BackendCSV:
		p, err := catalog.NewCSVProvider(cfg.Catalog.Path)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		logging.Info().Int("mappings", p.Len()).Str("path", cfg.Catalog.Path).Msg("identifier map loaded")
		refProvider = p
	case config.BackendDuckDB:
		db, err := openDB(cfg.Catalog.Database)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		refProvider = catalog.NewBreakerProvider("catalog", catalog.NewSQLProvider(db, cfg.Catalog.Table))
	default:
		cleanup()
		return nil, nil, nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}

	var corpusProvider corpus.Provider
	switch cfg.Corpus.Backend {
	case config.BackendCSV:
		corpusProvider = corpus.NewCSVProvider(cfg.Corpus.Path)
	case config.BackendDuckDB:
		db, err := openDB(cfg.Corpus.Database)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		corpusProvider = corpus.NewBreakerProvider("corpus", corpus.NewSQLProvider(db, ""))
	default:
		cleanup()
		return nil, nil, nil, fmt.Errorf("unknown corpus backend %q", cfg.Corpus.Backend)
	}

	return catalog.NewReconciler(refProvider), corpusProvider, cleanup, nil
}

func engineParams(cfg *config.Config) engine.Params {
	p := engine.DefaultParams()
	p.Epochs = cfg.Engine.Epochs
	p.ItemReg = cfg.Engine.ItemReg
	p.UserReg = cfg.Engine.UserReg
	p.MinRead = cfg.Engine.MinRead
	p.MinToRead = cfg.Engine.MinToRead
	p.FitTimeout = cfg.Engine.FitTimeout
	return p
}
