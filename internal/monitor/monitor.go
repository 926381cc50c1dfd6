package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vietddude/clipwatch/internal/core/domain"
	"github.com/vietddude/clipwatch/internal/infra/extractor"
	"github.com/vietddude/clipwatch/internal/infra/storage"
	"github.com/vietddude/clipwatch/internal/notify"
	"github.com/vietddude/clipwatch/internal/retry"
)

var (
	// ErrBreakerTripped signals a clean stop after repeated fully failed
	// iterations.
	ErrBreakerTripped = errors.New("circuit breaker tripped: all sources failing")

	// ErrNoSources is returned when monitoring starts with nothing to watch.
	ErrNoSources = errors.New("no enabled sources to monitor")
)

// Config holds monitoring loop settings.
type Config struct {
	Interval         time.Duration
	MaxItemsPerCheck int
	ItemDelayMin     time.Duration
	ItemDelayMax     time.Duration
	SourceDelayMin   time.Duration
	SourceDelayMax   time.Duration
	FailureThreshold int
	ListRetry        retry.Config
	FetchRetry       retry.Config
	MaxIterations    int // 0 = run until cancelled or tripped
}

// DefaultConfig mirrors the documented defaults: 30 minute interval, last 5
// items per check, anti-throttling pauses of 5-15s between items and
// 10-30s between sources, breaker tripping on the first total failure.
var DefaultConfig = Config{
	Interval:         30 * time.Minute,
	MaxItemsPerCheck: 5,
	ItemDelayMin:     5 * time.Second,
	ItemDelayMax:     15 * time.Second,
	SourceDelayMin:   10 * time.Second,
	SourceDelayMax:   30 * time.Second,
	FailureThreshold: 1,
	ListRetry:        retry.ListConfig,
	FetchRetry:       retry.FetchConfig,
}

// CycleResult summarizes one per-source cycle.
type CycleResult struct {
	Stored       int
	ItemFailures int
}

// Monitor runs the fetch -> dedup -> retrieve -> persist sequence for each
// enabled source. Single-threaded by design: one source is fully processed
// before the next begins, to respect upstream throttling.
type Monitor struct {
	cfg      Config
	ext      extractor.Extractor
	sources  storage.SourceRepository
	items    storage.ItemRepository
	failed   storage.FailedItemRepository
	notifier notify.Notifier
	breaker  *Breaker
	log      *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Monitor. Zero-value config fields fall back to DefaultConfig.
func New(
	cfg Config,
	ext extractor.Extractor,
	sources storage.SourceRepository,
	items storage.ItemRepository,
	failed storage.FailedItemRepository,
	notifier notify.Notifier,
) *Monitor {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultConfig.Interval
	}
	if cfg.MaxItemsPerCheck == 0 {
		cfg.MaxItemsPerCheck = DefaultConfig.MaxItemsPerCheck
	}
	if cfg.ItemDelayMax == 0 {
		cfg.ItemDelayMin = DefaultConfig.ItemDelayMin
		cfg.ItemDelayMax = DefaultConfig.ItemDelayMax
	}
	if cfg.SourceDelayMax == 0 {
		cfg.SourceDelayMin = DefaultConfig.SourceDelayMin
		cfg.SourceDelayMax = DefaultConfig.SourceDelayMax
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig.FailureThreshold
	}
	if cfg.ListRetry.MaxAttempts == 0 {
		cfg.ListRetry = retry.ListConfig
	}
	if cfg.FetchRetry.MaxAttempts == 0 {
		cfg.FetchRetry = retry.FetchConfig
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}

	return &Monitor{
		cfg:      cfg,
		ext:      ext,
		sources:  sources,
		items:    items,
		failed:   failed,
		notifier: notifier,
		breaker:  NewBreaker(cfg.FailureThreshold),
		log:      slog.Default(),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Breaker exposes circuit breaker state for health reporting.
func (m *Monitor) Breaker() *Breaker {
	return m.breaker
}

// CheckSource runs one monitoring cycle for a single source. The returned
// error is non-nil only when the list fetch itself failed after retries;
// individual item failures are absorbed into the result so one bad item
// never aborts its batch.
func (m *Monitor) CheckSource(ctx context.Context, src *domain.Source) (CycleResult, error) {
	var res CycleResult
	log := m.log.With("source", src.ID)

	log.Info("Checking source", "watermark", src.LastSeenWatermark)

	entries, err := retry.Do(ctx, m.cfg.ListRetry, func(ctx context.Context) ([]domain.Entry, error) {
		return m.ext.ListRecent(ctx, src.ID, m.cfg.MaxItemsPerCheck)
	})
	if err != nil {
		m.touch(ctx, src)
		CyclesTotal.WithLabelValues(src.ID, "failed").Inc()
		return res, fmt.Errorf("list fetch for %s: %w", src.ID, err)
	}

	// Newest first; the dedup filter preserves this ordering.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})

	isKnown := func(id string) bool {
		known, err := m.items.Exists(ctx, id)
		if err != nil {
			// Err on the side of not re-downloading.
			log.Warn("Item existence check failed", "item", id, "error", err)
			return true
		}
		return known
	}

	newEntries := SelectNew(entries, src.LastSeenWatermark, isKnown)
	if len(newEntries) == 0 {
		log.Info("No new items", "candidates", len(entries))
		m.touch(ctx, src)
		CyclesTotal.WithLabelValues(src.ID, "ok").Inc()
		return res, nil
	}

	log.Info("New items found", "count", len(newEntries))

	newestTimestamp := src.LastSeenWatermark
	for i, entry := range newEntries {
		// Anti-throttling pause before all retrievals but the first.
		if i > 0 {
			delay := retry.Delay(m.cfg.ItemDelayMin, m.cfg.ItemDelayMax, 1, false)
			if err := m.sleep(ctx, delay); err != nil {
				break
			}
		}

		info, err := retry.Do(ctx, m.cfg.FetchRetry, func(ctx context.Context) (*extractor.ItemInfo, error) {
			return m.ext.FetchItem(ctx, entry.URL)
		})
		if err != nil {
			res.ItemFailures++
			m.recordItemFailure(ctx, src.ID, entry, err)
			continue
		}

		item := itemFromInfo(src.ID, entry, info, m.now())
		if err := m.items.Upsert(ctx, item); err != nil {
			res.ItemFailures++
			log.Error("Failed to persist item", "item", item.ID, "error", err)
			continue
		}
		if err := m.failed.MarkResolved(ctx, item.ID); err != nil {
			log.Warn("Failed to resolve earlier failures", "item", item.ID, "error", err)
		}

		res.Stored++
		if item.OriginTimestamp > newestTimestamp {
			newestTimestamp = item.OriginTimestamp
		}
		ItemsRetrievedTotal.WithLabelValues(src.ID).Inc()

		// Best effort; a notification failure must not affect the cycle.
		if err := m.notifier.Notify("New item retrieved",
			fmt.Sprintf("%s: %s", src.ID, item.Title)); err != nil {
			log.Debug("Notification failed", "error", err)
		}
	}

	// Watermark advances once, after the whole batch. A crash mid-batch
	// re-downloads some items on the next run; the item upsert makes that
	// harmless.
	if newestTimestamp > src.LastSeenWatermark {
		src.LastSeenWatermark = newestTimestamp
	}
	src.TotalRetrieved += int64(res.Stored)
	m.touch(ctx, src)

	SourceWatermark.WithLabelValues(src.ID).Set(float64(src.LastSeenWatermark))
	CyclesTotal.WithLabelValues(src.ID, "ok").Inc()

	log.Info("Cycle complete", "stored", res.Stored, "failures", res.ItemFailures)
	return res, nil
}

// Run executes the continuous monitoring loop until the context is
// cancelled, the breaker trips, or MaxIterations is reached.
func (m *Monitor) Run(ctx context.Context) error {
	for iteration := 1; ; iteration++ {
		m.log.Info("Starting iteration", "iteration", iteration)

		stored, err := m.RunIteration(ctx)
		if err != nil {
			return err
		}
		m.log.Info("Iteration complete", "iteration", iteration, "stored", stored)

		if m.cfg.MaxIterations > 0 && iteration >= m.cfg.MaxIterations {
			return nil
		}

		wait := retry.Jitter(m.cfg.Interval, 0.1)
		m.log.Info("Sleeping until next iteration", "wait", wait)
		if err := m.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// RunIteration processes every enabled source once, in registration order,
// and feeds the outcome to the circuit breaker. Returns the number of items
// stored across all sources.
func (m *Monitor) RunIteration(ctx context.Context) (int, error) {
	srcs, err := m.sources.List(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list sources: %w", err)
	}
	if len(srcs) == 0 {
		return 0, ErrNoSources
	}

	succeeded := 0
	stored := 0
	for i, src := range srcs {
		if err := ctx.Err(); err != nil {
			return stored, err
		}

		// Anti-throttling pause between sources.
		if i > 0 {
			delay := retry.Delay(m.cfg.SourceDelayMin, m.cfg.SourceDelayMax, 1, false)
			if err := m.sleep(ctx, delay); err != nil {
				return stored, err
			}
		}

		res, err := m.CheckSource(ctx, src)
		stored += res.Stored
		if err != nil {
			if ctx.Err() != nil {
				return stored, ctx.Err()
			}
			m.logCycleFailure(src.ID, err)
			continue
		}
		succeeded++
	}

	tripped := m.breaker.Observe(len(srcs), succeeded)
	BreakerConsecutiveFailures.Set(float64(m.breaker.ConsecutiveFailures()))
	if tripped {
		m.log.Error("All sources failed, halting monitoring",
			"consecutive_failures", m.breaker.ConsecutiveFailures(),
			"threshold", m.breaker.Threshold(),
		)
		if err := m.notifier.Notify("Monitoring halted",
			"Every source failed its check; see logs for the underlying errors."); err != nil {
			m.log.Debug("Notification failed", "error", err)
		}
		return stored, ErrBreakerTripped
	}

	return stored, nil
}

func (m *Monitor) touch(ctx context.Context, src *domain.Source) {
	src.LastCheckedAt = m.now().UTC()
	if err := m.sources.Upsert(ctx, src); err != nil {
		m.log.Error("Failed to update source record", "source", src.ID, "error", err)
	}
}

func (m *Monitor) recordItemFailure(ctx context.Context, sourceID string, entry domain.Entry, err error) {
	kind := retry.KindUnknown
	hint := ""
	var cerr *retry.ClassifiedError
	if errors.As(err, &cerr) {
		kind = cerr.Kind
		hint = cerr.Hint
	}

	m.log.Error("Item retrieval failed",
		"source", sourceID,
		"item", entry.ID,
		"kind", kind,
		"hint", hint,
		"error", err,
	)
	ItemFailuresTotal.WithLabelValues(sourceID, string(kind)).Inc()

	if err := m.failed.Add(ctx, &domain.FailedItem{
		SourceID:  sourceID,
		ItemID:    entry.ID,
		URL:       entry.URL,
		ErrorKind: string(kind),
		Error:     err.Error(),
	}); err != nil {
		m.log.Warn("Failed to record item failure", "item", entry.ID, "error", err)
	}
}

func (m *Monitor) logCycleFailure(sourceID string, err error) {
	var cerr *retry.ClassifiedError
	if errors.As(err, &cerr) {
		m.log.Error("Source check failed",
			"source", sourceID,
			"kind", cerr.Kind,
			"hint", cerr.Hint,
			"error", err,
		)
		return
	}
	m.log.Error("Source check failed", "source", sourceID, "error", err)
}

func itemFromInfo(sourceID string, entry domain.Entry, info *extractor.ItemInfo, now time.Time) *domain.Item {
	item := &domain.Item{
		ID:              info.ID,
		SourceID:        sourceID,
		URL:             info.URL,
		Title:           info.Title,
		OriginTimestamp: info.Timestamp,
		RetrievedAt:     now.UTC(),
		StoragePath:     info.FilePath,
		Likes:           info.Likes,
		Views:           info.Views,
	}
	if item.ID == "" {
		item.ID = entry.ID
	}
	if item.OriginTimestamp == 0 {
		item.OriginTimestamp = entry.Timestamp
	}
	if item.URL == "" {
		item.URL = entry.URL
	}
	if item.Title == "" {
		item.Title = entry.Title
	}
	return item
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
