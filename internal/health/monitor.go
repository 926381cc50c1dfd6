package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/clipwatch/internal/infra/storage"
)

// BreakerState exposes the failure counter of the monitoring loop's
// circuit breaker.
type BreakerState interface {
	ConsecutiveFailures() int
	Threshold() int
}

// Staleness multiples of the check interval at which a source is
// considered degraded / critical. Below 2x a source is merely between
// cycles; past 5x something is wedged.
const (
	staleDegradedFactor = 2
	staleCriticalFactor = 5
)

// Monitor aggregates health status from the source store, the failed-item
// queue and the circuit breaker.
type Monitor struct {
	sources  storage.SourceRepository
	failed   storage.FailedItemRepository
	breaker  BreakerState
	interval time.Duration

	lastCheck  time.Time
	lastReport *Report
	mu         sync.Mutex

	now func() time.Time
}

// NewMonitor creates a new health monitor. interval is the expected check
// interval, used as the staleness baseline.
func NewMonitor(
	sources storage.SourceRepository,
	failed storage.FailedItemRepository,
	breaker BreakerState,
	interval time.Duration,
) *Monitor {
	return &Monitor{
		sources:  sources,
		failed:   failed,
		breaker:  breaker,
		interval: interval,
		now:      time.Now,
	}
}

// CheckHealth builds a health report. Reports are cached briefly so that
// aggressive probes do not hammer the store.
func (m *Monitor) CheckHealth(ctx context.Context) *Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastReport != nil && m.now().Sub(m.lastCheck) < 10*time.Second {
		return m.lastReport
	}

	report := &Report{
		SystemStatus:        StatusHealthy,
		ConsecutiveFailures: m.breaker.ConsecutiveFailures(),
		FailureThreshold:    m.breaker.Threshold(),
		Sources:             make(map[string]SourceHealth),
	}

	if pending, err := m.failed.Count(ctx); err == nil {
		report.PendingFailures = pending
	}

	sources, err := m.sources.List(ctx, true)
	if err != nil {
		report.SystemStatus = StatusDegraded
	}
	for _, src := range sources {
		sh := SourceHealth{
			SourceID:       src.ID,
			Status:         StatusHealthy,
			TotalRetrieved: src.TotalRetrieved,
		}
		if !src.LastCheckedAt.IsZero() {
			sh.LastCheckedAt = src.LastCheckedAt.Unix()
			staleness := m.now().Sub(src.LastCheckedAt)
			sh.StalenessSeconds = int64(staleness.Seconds())
			switch {
			case staleness > staleCriticalFactor*m.interval:
				sh.Status = StatusCritical
			case staleness > staleDegradedFactor*m.interval:
				sh.Status = StatusDegraded
			}
		}
		report.Sources[src.ID] = sh
	}

	// Aggregate status (worst case wins). The breaker dominates: once its
	// threshold is reached the loop has stopped making progress at all.
	if report.ConsecutiveFailures >= report.FailureThreshold && report.ConsecutiveFailures > 0 {
		report.SystemStatus = StatusCritical
	} else {
		for _, sh := range report.Sources {
			if sh.Status == StatusCritical {
				report.SystemStatus = StatusCritical
				break
			}
			if sh.Status == StatusDegraded {
				report.SystemStatus = StatusDegraded
			}
		}
		if report.SystemStatus == StatusHealthy && report.ConsecutiveFailures > 0 {
			report.SystemStatus = StatusDegraded
		}
	}

	m.lastCheck = m.now()
	m.lastReport = report
	return report
}
