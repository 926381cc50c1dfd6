package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/clipwatch/internal/daemon"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start continuous monitoring in the background",
	Run:   runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background monitor",
	Run:   runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background monitor is running",
	Run:   runDaemonStatus,
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
}

func newController() *daemon.Controller {
	cfg := loadConfig()
	initLogging(cfg)
	return daemon.NewController(cfg.Daemon.PidFile)
}

func runStart(cmd *cobra.Command, args []string) {
	ctl := newController()

	daemonArgs := []string{"--config", cfgPath, "--headless"}
	if isDebug {
		daemonArgs = append(daemonArgs, "--debug")
	}

	pid, err := ctl.Start(daemonArgs)
	if err != nil {
		slog.Error("Failed to start daemon", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Monitor started in background (pid %d)\n", pid)
}

func runStop(cmd *cobra.Command, args []string) {
	ctl := newController()

	stopped, err := ctl.Stop()
	if err != nil {
		slog.Error("Failed to stop daemon", "error", err)
		os.Exit(1)
	}
	if !stopped {
		fmt.Println("Monitor is not running")
		return
	}
	fmt.Println("Monitor stopped")
}

func runDaemonStatus(cmd *cobra.Command, args []string) {
	ctl := newController()

	st := ctl.GetStatus()
	if !st.Running {
		fmt.Println("Monitor is not running")
		return
	}

	fmt.Printf("Monitor is running (pid %d)\n", st.PID)
	if !st.StartedAt.IsZero() {
		fmt.Printf("  uptime:  %s\n", time.Since(st.StartedAt).Round(time.Second))
	}
	fmt.Printf("  cpu:     %.1f%%\n", st.CPUPercent)
	fmt.Printf("  memory:  %.1f MB\n", st.MemoryMB)
}
