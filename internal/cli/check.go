package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vietddude/clipwatch/internal/monitor"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single check of all enabled sources and exit",
	Run:   runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	initLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := openApp(ctx, cfg)
	defer func() {
		_ = app.Close()
	}()

	retrieved, err := app.RunOnce(ctx)
	switch {
	case err == nil:
		fmt.Printf("Check complete: %d new item(s)\n", retrieved)
	case errors.Is(err, monitor.ErrNoSources):
		fmt.Println("No enabled sources. Add one with: clipwatch sources add <id>")
		os.Exit(1)
	default:
		slog.Error("Check failed", "error", err)
		os.Exit(1)
	}
}
