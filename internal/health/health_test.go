package health

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/clipwatch/internal/core/domain"
	"github.com/vietddude/clipwatch/internal/infra/storage/memory"
)

// =============================================================================
// Stubs
// =============================================================================

type stubBreaker struct {
	consecutive int
	threshold   int
}

func (s *stubBreaker) ConsecutiveFailures() int { return s.consecutive }
func (s *stubBreaker) Threshold() int           { return s.threshold }

func newTestMonitor(t *testing.T, breaker *stubBreaker, lastChecked time.Duration) (*Monitor, *memory.FailedItemRepo) {
	t.Helper()
	store := memory.NewMemoryStorage()
	sources := memory.NewSourceRepo(store)
	failed := memory.NewFailedItemRepo(store)
	now := time.Unix(1_750_000_000, 0)

	src := &domain.Source{ID: "creator", Enabled: true}
	if lastChecked > 0 {
		src.LastCheckedAt = now.Add(-lastChecked)
	}
	if err := sources.Upsert(context.Background(), src); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	m := NewMonitor(sources, failed, breaker, 30*time.Minute)
	m.now = func() time.Time { return now }
	return m, failed
}

// =============================================================================
// Tests
// =============================================================================

func TestCheckHealthHealthy(t *testing.T) {
	m, _ := newTestMonitor(t, &stubBreaker{threshold: 3}, 5*time.Minute)

	report := m.CheckHealth(context.Background())
	if report.SystemStatus != StatusHealthy {
		t.Errorf("status = %s, want healthy", report.SystemStatus)
	}
	sh, ok := report.Sources["creator"]
	if !ok {
		t.Fatal("source missing from report")
	}
	if sh.Status != StatusHealthy {
		t.Errorf("source status = %s, want healthy", sh.Status)
	}
	if sh.StalenessSeconds != 300 {
		t.Errorf("staleness = %d, want 300", sh.StalenessSeconds)
	}
}

func TestCheckHealthStaleness(t *testing.T) {
	tests := []struct {
		name        string
		lastChecked time.Duration
		want        SystemStatus
	}{
		{"fresh", 10 * time.Minute, StatusHealthy},
		{"between cycles", 45 * time.Minute, StatusHealthy},
		{"degraded past 2x interval", 90 * time.Minute, StatusDegraded},
		{"critical past 5x interval", 4 * time.Hour, StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMonitor(t, &stubBreaker{threshold: 3}, tt.lastChecked)

			report := m.CheckHealth(context.Background())
			if report.SystemStatus != tt.want {
				t.Errorf("status = %s, want %s", report.SystemStatus, tt.want)
			}
		})
	}
}

func TestCheckHealthNeverCheckedSource(t *testing.T) {
	// A source that has not had its first check yet is not stale.
	m, _ := newTestMonitor(t, &stubBreaker{threshold: 3}, 0)

	report := m.CheckHealth(context.Background())
	if report.SystemStatus != StatusHealthy {
		t.Errorf("status = %s, want healthy", report.SystemStatus)
	}
}

func TestCheckHealthBreakerTripped(t *testing.T) {
	m, _ := newTestMonitor(t, &stubBreaker{consecutive: 3, threshold: 3}, 5*time.Minute)

	report := m.CheckHealth(context.Background())
	if report.SystemStatus != StatusCritical {
		t.Errorf("status = %s, want critical when breaker tripped", report.SystemStatus)
	}
	if report.ConsecutiveFailures != 3 {
		t.Errorf("consecutive_failures = %d, want 3", report.ConsecutiveFailures)
	}
}

func TestCheckHealthBreakerBelowThreshold(t *testing.T) {
	m, _ := newTestMonitor(t, &stubBreaker{consecutive: 1, threshold: 3}, 5*time.Minute)

	report := m.CheckHealth(context.Background())
	if report.SystemStatus != StatusDegraded {
		t.Errorf("status = %s, want degraded with partial failures", report.SystemStatus)
	}
}

func TestCheckHealthPendingFailures(t *testing.T) {
	m, failed := newTestMonitor(t, &stubBreaker{threshold: 3}, 5*time.Minute)
	fi := &domain.FailedItem{SourceID: "creator", URL: "https://example.com/v/1", ErrorKind: "network"}
	if err := failed.Add(context.Background(), fi); err != nil {
		t.Fatalf("seed failed item: %v", err)
	}

	report := m.CheckHealth(context.Background())
	if report.PendingFailures != 1 {
		t.Errorf("pending_failures = %d, want 1", report.PendingFailures)
	}
}

func TestCheckHealthCachesReport(t *testing.T) {
	breaker := &stubBreaker{threshold: 3}
	m, _ := newTestMonitor(t, breaker, 5*time.Minute)

	first := m.CheckHealth(context.Background())
	breaker.consecutive = 3
	second := m.CheckHealth(context.Background())

	if second != first {
		t.Error("expected cached report within the refresh window")
	}
}
