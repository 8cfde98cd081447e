package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/usecase"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/config"
	xhttp "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/http"
	applogger "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

// Closer is a named resource released on shutdown.
type Closer struct {
	Name string
	io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	dm         *usecase.DataManager
	httpServer *xhttp.Server
	closers    []Closer
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, dm *usecase.DataManager, srv *xhttp.Server, closers ...Closer) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, dm: dm, httpServer: srv, closers: closers}
}

// DataManager exposes the loaded data for embedding callers.
func (a *App) DataManager() *usecase.DataManager { return a.dm }

// Run loads the universe, serves HTTP and refreshes in the background until
// SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with a caller supplied lifetime.
func (a *App) RunContext(ctx context.Context) error {
	ds, err := a.dm.Load(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrNoData) {
			a.l.Error("initial load produced no data; check network and api key", applogger.Error(err))
		}
		a.shutdown(context.Background())
		return fmt.Errorf("initial load: %w", err)
	}
	a.l.Info("initial load complete",
		applogger.String("run_id", ds.RunID),
		applogger.Int("loaded", ds.Status.TotalLoaded),
		applogger.Int("expected", ds.Status.TotalExpected),
	)

	go a.dm.Run(ctx, a.cfg.Refresh.Interval)
	if a.cfg.Refresh.Interval > 0 {
		a.l.Info("refresh scheduled", applogger.Duration("interval_ms", a.cfg.Refresh.Interval))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		a.shutdown(context.Background())
		return err
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	a.shutdown(context.Background())
	return nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) {
	a.l.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	for _, c := range a.closers {
		if c.Closer == nil {
			continue
		}
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.String("resource", c.Name), applogger.Error(err))
		}
	}
	a.l.Info("shutdown complete")
}
