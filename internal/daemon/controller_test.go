package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// ==========================================
// Test helpers
// ==========================================

type fakeProbe struct {
	// pids alive right now; terminate removes the pid when graceful is
	// true, otherwise only kill does.
	alivePids map[int]bool
	graceful  bool

	terminated []int
	killed     []int
}

func (f *fakeProbe) alive(pid int) bool {
	return f.alivePids[pid]
}

func (f *fakeProbe) terminate(pid int) error {
	f.terminated = append(f.terminated, pid)
	if f.graceful {
		delete(f.alivePids, pid)
	}
	return nil
}

func (f *fakeProbe) kill(pid int) error {
	f.killed = append(f.killed, pid)
	delete(f.alivePids, pid)
	return nil
}

func (f *fakeProbe) stat(pid int) (time.Time, float64, float64, error) {
	return time.Unix(1_700_000_000, 0), 1.5, 42.0, nil
}

func newTestController(t *testing.T, p *fakeProbe) *Controller {
	t.Helper()
	c := NewController(filepath.Join(t.TempDir(), "daemon.pid"))
	c.probe = p
	c.sleep = func(time.Duration) {}
	return c
}

func writePIDFile(t *testing.T, c *Controller, pid int) {
	t.Helper()
	if err := c.writePID(pid); err != nil {
		t.Fatalf("writePID: %v", err)
	}
}

func pidFileExists(c *Controller) bool {
	_, err := os.Stat(c.pidFile)
	return err == nil
}

// ==========================================
// Status
// ==========================================

func TestGetStatusNoRecord(t *testing.T) {
	c := newTestController(t, &fakeProbe{alivePids: map[int]bool{}})

	st := c.GetStatus()
	if st.Running {
		t.Error("expected not running without a pid record")
	}
}

func TestGetStatusRunning(t *testing.T) {
	p := &fakeProbe{alivePids: map[int]bool{4242: true}}
	c := newTestController(t, p)
	writePIDFile(t, c, 4242)

	st := c.GetStatus()
	if !st.Running {
		t.Fatal("expected running")
	}
	if st.PID != 4242 {
		t.Errorf("pid = %d, want 4242", st.PID)
	}
	if st.CPUPercent != 1.5 || st.MemoryMB != 42.0 {
		t.Errorf("stat = (%v, %v), want (1.5, 42.0)", st.CPUPercent, st.MemoryMB)
	}
	if st.StartedAt.Unix() != 1_700_000_000 {
		t.Errorf("startedAt = %v", st.StartedAt)
	}
}

func TestStatusSelfHealsStaleRecord(t *testing.T) {
	// A pid record pointing at a dead process must be reported as not
	// running and the record removed, without any manual cleanup.
	p := &fakeProbe{alivePids: map[int]bool{}}
	c := newTestController(t, p)
	writePIDFile(t, c, 12345)

	st := c.GetStatus()
	if st.Running {
		t.Error("stale record reported as running")
	}
	if pidFileExists(c) {
		t.Error("stale pid file was not removed")
	}
	if c.IsRunning() {
		t.Error("IsRunning after self-heal")
	}
}

func TestReadPIDGarbage(t *testing.T) {
	c := newTestController(t, &fakeProbe{alivePids: map[int]bool{}})
	if err := os.WriteFile(c.pidFile, []byte("not-a-pid\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.readPID(); ok {
		t.Error("garbage pid file parsed as valid")
	}
}

// ==========================================
// Stop
// ==========================================

func TestStopWhenNotRunning(t *testing.T) {
	c := newTestController(t, &fakeProbe{alivePids: map[int]bool{}})

	stopped, err := c.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if stopped {
		t.Error("Stop reported success with no daemon")
	}
}

func TestStopGraceful(t *testing.T) {
	p := &fakeProbe{alivePids: map[int]bool{900: true}, graceful: true}
	c := newTestController(t, p)
	writePIDFile(t, c, 900)

	stopped, err := c.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !stopped {
		t.Error("expected Stop to report success")
	}
	if len(p.terminated) != 1 || p.terminated[0] != 900 {
		t.Errorf("terminated = %v, want [900]", p.terminated)
	}
	if len(p.killed) != 0 {
		t.Errorf("graceful stop escalated to kill: %v", p.killed)
	}
	if pidFileExists(c) {
		t.Error("pid file left behind after stop")
	}
}

func TestStopForceKillsStubbornProcess(t *testing.T) {
	p := &fakeProbe{alivePids: map[int]bool{901: true}, graceful: false}
	c := newTestController(t, p)
	writePIDFile(t, c, 901)

	var polls int
	c.sleep = func(time.Duration) { polls++ }

	stopped, err := c.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !stopped {
		t.Error("expected Stop to report success")
	}
	if polls != stopPolls {
		t.Errorf("polled %d times, want %d", polls, stopPolls)
	}
	if len(p.killed) != 1 || p.killed[0] != 901 {
		t.Errorf("killed = %v, want [901]", p.killed)
	}
	if pidFileExists(c) {
		t.Error("pid file left behind after force kill")
	}
}

// ==========================================
// Start
// ==========================================

func TestStartRefusesWhenRunning(t *testing.T) {
	p := &fakeProbe{alivePids: map[int]bool{777: true}}
	c := newTestController(t, p)
	writePIDFile(t, c, 777)

	_, err := c.Start(nil)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("Start error = %v, want ErrAlreadyRunning", err)
	}
}
