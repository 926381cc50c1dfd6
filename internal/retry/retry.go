package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config defines retry behavior for a single operation.
type Config struct {
	MaxAttempts int
	MinDelay    time.Duration
	MaxDelay    time.Duration

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// ListConfig is the default policy for fetching a source's item listing.
var ListConfig = Config{
	MaxAttempts: 5,
	MinDelay:    5 * time.Second,
	MaxDelay:    15 * time.Second,
}

// FetchConfig is the default policy for retrieving a single item's payload.
var FetchConfig = Config{
	MaxAttempts: 3,
	MinDelay:    15 * time.Second,
	MaxDelay:    45 * time.Second,
}

// Do runs op with classification-driven retries. A non-retryable failure
// returns immediately; a retryable one waits an exponential backoff and
// tries again, up to cfg.MaxAttempts invocations total. The returned error
// always carries its classification (errors.As with *ClassifiedError).
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	sleep := cfg.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		cerr := Classify(err)
		if !cerr.Retryable() {
			return zero, cerr
		}
		if attempt == cfg.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, cerr)
		}

		delay := Delay(cfg.MinDelay, cfg.MaxDelay, attempt, true)
		slog.Warn("Retrying after transient failure",
			"kind", cerr.Kind,
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"delay", delay,
			"error", err,
		)

		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
