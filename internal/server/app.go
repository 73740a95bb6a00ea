// Package server initializes and runs the linkmark application: it opens the
// database and session store, wires the services, and serves HTTP until a
// shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/linkmark/internal/logging"
	"github.com/dmitrijs2005/linkmark/internal/server/config"
	"github.com/dmitrijs2005/linkmark/internal/server/httpapi"
	"github.com/dmitrijs2005/linkmark/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/linkmark/internal/server/services"
	"github.com/dmitrijs2005/linkmark/internal/server/session"
)

type App struct {
	config *config.Config
	logger logging.Logger

	closers []func() error
	server  *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app := &App{config: cfg, logger: logger}

	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.closers = append(app.closers, db.Close)

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("session store init error: %w", err)
	}
	app.closers = append(app.closers, store.Close)

	sessions := session.NewManager(store, cfg.SessionTTL, cfg.SecureCookies)
	authSvc := services.NewAuthService(db, repos, sessions, logger)
	bookmarkSvc := services.NewBookmarkService(db, repos, logger)

	app.server = httpapi.NewServer(cfg.Addr, authSvc, bookmarkSvc, logger)
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until the context is cancelled or an OS signal arrives,
// then closes the backing stores.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err.Error())
	}

	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error(ctx, "shutdown close error", "error", err.Error())
		}
	}
	app.closers = nil
}
