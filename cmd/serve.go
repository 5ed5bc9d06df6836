package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/server"
	"github.com/desertthunder/songbook/internal/shared"
)

// Serve runs the catalog server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if h := cmd.String("host"); h != "" {
		config.Server.Host = h
	}
	if p := cmd.Int("port"); p != 0 {
		config.Server.Port = int(p)
	}

	app, err := r.buildServer(config)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting server", "addr", config.Server.Addr(), "cache", config.Cache.Driver, "login", config.Auth.Enabled())
	return app.server.ListenAndServe(ctx)
}

// application bundles a server with the resources it owns.
type application struct {
	server *server.Server
	close  []func() error
}

func (a *application) Close() error {
	var errs []error
	for i := len(a.close) - 1; i >= 0; i-- {
		errs = append(errs, a.close[i]())
	}
	return errors.Join(errs...)
}

// buildServer wires database, cache, catalog, custom lists, sessions and token verification into a server.
func (r *Runner) buildServer(config *shared.Config) (*application, error) {
	app := &application{}

	db, err := r.openDatabase(config)
	if err != nil {
		return nil, err
	}
	app.close = append(app.close, db.Close)

	cache, err := catalog.NewCache(config.Cache)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.close = append(app.close, cache.Close)

	if config.Server.CoversDir != "" {
		if err := os.MkdirAll(config.Server.CoversDir, 0755); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create covers directory: %w", err)
		}
	}

	logger := componentLogger(r.logger, "server")
	songRepo := repositories.NewSongRepository(db)
	songs := catalog.New(songRepo, cache, config.Cache.TTL(), logger)
	verifier := repositories.NewVerifier(repositories.NewAPIKeyRepository(db))
	lists := catalog.NewLists(repositories.NewCustomListRepository(db), songRepo, logger)

	ttl := config.Auth.SessionTTL()
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	sessions := repositories.NewSessionRepository(db, ttl)
	if n, err := sessions.Prune(); err != nil {
		r.logger.Warn("failed to prune sessions", "error", err)
	} else if n > 0 {
		r.logger.Debug("pruned expired sessions", "count", n)
	}

	srv, err := server.New(config.Server, songs, verifier, logger, server.Options{
		Lists:    lists,
		Sessions: sessions,
		Login:    config.Auth,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.server = srv
	return app, nil
}

func componentLogger(l *log.Logger, name string) *log.Logger {
	return shared.WithLogger(l, "component", name)
}
