package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

var (
	// ErrAlreadyRunning is returned by Start when a live daemon exists.
	ErrAlreadyRunning = errors.New("daemon already running")
)

// stopGraceWindow is how long Stop waits for a graceful exit before
// force-killing: 10 polls, 1 second apart.
const (
	stopPolls        = 10
	stopPollInterval = 1 * time.Second
)

// Status describes the daemon process, if any.
type Status struct {
	Running    bool      `json:"running"`
	PID        int       `json:"pid,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	CPUPercent float64   `json:"cpu_percent,omitempty"`
	MemoryMB   float64   `json:"memory_mb,omitempty"`
}

// Controller manages the detached background instance of the monitor. The
// pid file is a weak reference: a record's existence never implies the
// process is alive, so every operation verifies liveness and clears stale
// records as a side effect.
type Controller struct {
	pidFile string

	probe probe
	sleep func(d time.Duration)
}

// NewController creates a controller around the given pid file path.
func NewController(pidFile string) *Controller {
	return &Controller{
		pidFile: pidFile,
		probe:   gopsutilProbe{},
		sleep:   time.Sleep,
	}
}

// Start spawns a detached process running the given command line and
// records its pid. Refuses when a live daemon already exists.
func (c *Controller) Start(args []string) (int, error) {
	if pid, running := c.livePID(); running {
		return 0, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve executable: %w", err)
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}
	defer func() {
		_ = devnull.Close()
	}()

	cmd := exec.Command(exe, args...)
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	// New session so the child survives the launcher's terminal.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}

	pid := cmd.Process.Pid
	if err := c.writePID(pid); err != nil {
		// The child is up but untracked; better to take it down than to
		// leak an unmanageable process.
		_ = cmd.Process.Kill()
		return 0, err
	}
	_ = cmd.Process.Release()

	slog.Debug("Daemon started", "pid", pid, "pid_file", c.pidFile)
	return pid, nil
}

// Stop sends a graceful termination signal and waits for the process to
// exit, force-killing after the grace window. Returns false when no daemon
// was running. The pid record is always cleared.
func (c *Controller) Stop() (bool, error) {
	pid, running := c.livePID()
	if !running {
		c.removePID()
		return false, nil
	}

	if err := c.probe.terminate(pid); err != nil {
		c.removePID()
		return false, fmt.Errorf("failed to signal daemon: %w", err)
	}

	for i := 0; i < stopPolls; i++ {
		if !c.probe.alive(pid) {
			break
		}
		c.sleep(stopPollInterval)
	}

	if c.probe.alive(pid) {
		slog.Warn("Daemon ignored graceful stop, force killing", "pid", pid)
		if err := c.probe.kill(pid); err != nil {
			c.removePID()
			return false, fmt.Errorf("failed to kill daemon: %w", err)
		}
	}

	c.removePID()
	return true, nil
}

// GetStatus reports daemon liveness and resource usage. A recorded pid
// without a live process is treated as not running and the stale record is
// removed.
func (c *Controller) GetStatus() Status {
	pid, running := c.livePID()
	if !running {
		return Status{Running: false}
	}

	st := Status{Running: true, PID: pid}
	startedAt, cpu, memMB, err := c.probe.stat(pid)
	if err != nil {
		slog.Debug("Failed to stat daemon process", "pid", pid, "error", err)
		return st
	}
	st.StartedAt = startedAt
	st.CPUPercent = cpu
	st.MemoryMB = memMB
	return st
}

// IsRunning reports whether a live daemon exists, clearing stale records.
func (c *Controller) IsRunning() bool {
	_, running := c.livePID()
	return running
}

// livePID reads the pid record and verifies the process is alive. A stale
// record is removed before reporting not-running.
func (c *Controller) livePID() (int, bool) {
	pid, ok := c.readPID()
	if !ok {
		return 0, false
	}
	if !c.probe.alive(pid) {
		slog.Debug("Removing stale pid record", "pid", pid)
		c.removePID()
		return 0, false
	}
	return pid, true
}

func (c *Controller) writePID(pid int) error {
	if err := os.WriteFile(c.pidFile, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

func (c *Controller) readPID() (int, bool) {
	data, err := os.ReadFile(c.pidFile)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func (c *Controller) removePID() {
	if err := os.Remove(c.pidFile); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove pid file", "path", c.pidFile, "error", err)
	}
}

// probe abstracts process inspection so tests can fake liveness.
type probe interface {
	alive(pid int) bool
	terminate(pid int) error
	kill(pid int) error
	stat(pid int) (startedAt time.Time, cpuPercent, memMB float64, err error)
}

type gopsutilProbe struct{}

func (gopsutilProbe) alive(pid int) bool {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := p.IsRunning()
	return err == nil && running
}

func (gopsutilProbe) terminate(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	return p.Terminate()
}

func (gopsutilProbe) kill(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	return p.Kill()
}

func (gopsutilProbe) stat(pid int) (time.Time, float64, float64, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return time.Time{}, 0, 0, err
	}

	var startedAt time.Time
	if ms, err := p.CreateTime(); err == nil {
		startedAt = time.UnixMilli(ms)
	}
	cpu, _ := p.CPUPercent()
	var memMB float64
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		memMB = float64(mem.RSS) / 1024 / 1024
	}
	return startedAt, cpu, memMB, nil
}
