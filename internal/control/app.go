// Package control assembles the application from its parts and manages
// their lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/clipwatch/internal/core/config"
	"github.com/vietddude/clipwatch/internal/health"
	"github.com/vietddude/clipwatch/internal/infra/extractor/ytdlp"
	"github.com/vietddude/clipwatch/internal/infra/storage"
	"github.com/vietddude/clipwatch/internal/infra/storage/sqlite"
	"github.com/vietddude/clipwatch/internal/monitor"
	"github.com/vietddude/clipwatch/internal/notify"
)

// App wires config, storage, extractor, notifier and the monitoring loop
// together. Commands construct an App, use the piece they need and Close it.
type App struct {
	Cfg *config.AppConfig

	Sources  storage.SourceRepository
	Items    storage.ItemRepository
	Failed   storage.FailedItemRepository
	Settings storage.SettingsRepository

	Monitor *monitor.Monitor

	db           *sqlite.DB
	notifier     notify.Notifier
	healthServer *health.Server
	log          *slog.Logger
}

// NewApp opens the database, runs migrations and builds the monitor with
// its dependencies.
func NewApp(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	db, err := sqlite.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}

	sources := sqlite.NewSourceRepo(db)
	items := sqlite.NewItemRepo(db)
	failed := sqlite.NewFailedItemRepo(db)
	settings := sqlite.NewSettingsRepo(db)

	notifier := notify.FromSettings(ctx, settings, cfg.Notifications.Enabled)
	ext := ytdlp.NewAdapter(cfg.Download)

	mon := monitor.New(monitorConfig(cfg.Monitor), ext, sources, items, failed, notifier)

	app := &App{
		Cfg:      cfg,
		Sources:  sources,
		Items:    items,
		Failed:   failed,
		Settings: settings,
		Monitor:  mon,
		db:       db,
		notifier: notifier,
		log:      slog.Default(),
	}

	if cfg.Server.Enabled {
		interval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		healthMon := health.NewMonitor(sources, failed, mon.Breaker(), interval)
		app.healthServer = health.NewServer(healthMon, cfg.Server.Port)
	}

	return app, nil
}

// Run starts the optional health server and blocks in the monitoring loop
// until the context is cancelled or the circuit breaker trips.
func (a *App) Run(ctx context.Context) error {
	if a.healthServer != nil {
		go func() {
			if err := a.healthServer.Start(); err != nil && err != http.ErrServerClosed {
				a.log.Error("Health server failed", "error", err)
			}
		}()
		a.log.Info("Health server listening", "port", a.Cfg.Server.Port)
	}

	if err := a.notifier.Notify("Monitoring started",
		fmt.Sprintf("Checking sources every %d minutes", a.Cfg.Monitor.IntervalMinutes)); err != nil {
		a.log.Debug("Notification failed", "error", err)
	}

	err := a.Monitor.Run(ctx)

	if a.healthServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if stopErr := a.healthServer.Stop(shutdownCtx); stopErr != nil {
			a.log.Warn("Health server shutdown failed", "error", stopErr)
		}
	}

	return err
}

// RunOnce executes a single check iteration over all enabled sources and
// returns the number of new items retrieved.
func (a *App) RunOnce(ctx context.Context) (int, error) {
	return a.Monitor.RunIteration(ctx)
}

// Close releases the database handle.
func (a *App) Close() error {
	return a.db.Close()
}

func monitorConfig(mc config.MonitorConfig) monitor.Config {
	cfg := monitor.Config{
		Interval:         time.Duration(mc.IntervalMinutes) * time.Minute,
		MaxItemsPerCheck: mc.MaxItemsPerCheck,
		FailureThreshold: mc.FailureThreshold,
	}
	cfg.ItemDelayMin, cfg.ItemDelayMax = delayBounds(mc.Delays.BetweenItems)
	cfg.SourceDelayMin, cfg.SourceDelayMax = delayBounds(mc.Delays.BetweenSources)
	return cfg
}

func delayBounds(pair []int) (time.Duration, time.Duration) {
	if len(pair) != 2 {
		return 0, 0
	}
	return time.Duration(pair[0]) * time.Second, time.Duration(pair[1]) * time.Second
}
