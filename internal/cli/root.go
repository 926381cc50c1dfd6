package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/clipwatch/internal/control"
	"github.com/vietddude/clipwatch/internal/core/config"
	"github.com/vietddude/clipwatch/internal/monitor"
)

var (
	cfgPath  string
	isDebug  bool
	headless bool
)

var rootCmd = &cobra.Command{
	Use:   "clipwatch",
	Short: "Clipwatch content monitoring service",
	Long:  `Clipwatch continuously polls configured content sources, retrieves items it has not seen before and records them in a local database.`,
	Run:   runMonitor,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "log to a file instead of stderr")
	_ = rootCmd.Flags().MarkHidden("headless")
}

// loadConfig reads the config file, exiting on parse errors. A missing
// file silently falls back to defaults.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

// initLogging installs the default slog handler. Headless mode writes to a
// dated file under the configured log directory so a detached process
// leaves a trail.
func initLogging(cfg *config.AppConfig) {
	slogLevel := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}
	if isDebug {
		slogLevel = slog.LevelDebug
	}

	out := os.Stderr
	noColor := false
	if headless {
		if err := os.MkdirAll(cfg.Logging.LogDir, 0o755); err == nil {
			name := filepath.Join(cfg.Logging.LogDir, "clipwatch_"+time.Now().Format("20060102")+".log")
			if f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
				out = f
				noColor = true
			}
		}
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slogLevel})
	} else {
		handler = tint.NewHandler(out, &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.RFC3339,
			NoColor:    noColor,
		})
	}
	slog.SetDefault(slog.New(handler))
}

// openApp builds the application; the caller must Close it.
func openApp(ctx context.Context, cfg *config.AppConfig) *control.App {
	app, err := control.NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize app", "error", err)
		os.Exit(1)
	}
	return app
}

func runMonitor(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	initLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := openApp(ctx, cfg)
	defer func() {
		_ = app.Close()
	}()

	slog.Info("Monitor started", "config", cfgPath, "interval_minutes", cfg.Monitor.IntervalMinutes)

	err := app.Run(ctx)
	switch {
	case err == nil || errors.Is(err, context.Canceled):
		slog.Info("Monitor stopped")
	case errors.Is(err, monitor.ErrBreakerTripped):
		slog.Error("Monitor halted by circuit breaker", "error", err)
		os.Exit(1)
	default:
		slog.Error("Monitor failed", "error", err)
		os.Exit(1)
	}
}
