package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// testConfig returns a Config that records sleeps instead of blocking.
func testConfig(maxAttempts int, slept *[]time.Duration) Config {
	return Config{
		MaxAttempts: maxAttempts,
		MinDelay:    5 * time.Second,
		MaxDelay:    15 * time.Second,
		sleep: func(ctx context.Context, d time.Duration) error {
			*slept = append(*slept, d)
			return nil
		},
	}
}

func TestDoSuccessFirstAttempt(t *testing.T) {
	var slept []time.Duration
	calls := 0

	got, err := Do(context.Background(), testConfig(5, &slept), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
	if calls != 1 {
		t.Errorf("op invoked %d times, want 1", calls)
	}
	if len(slept) != 0 {
		t.Errorf("slept %d times on immediate success", len(slept))
	}
}

func TestDoNonRetryableInvokedOnce(t *testing.T) {
	var slept []time.Duration
	calls := 0

	_, err := Do(context.Background(), testConfig(5, &slept), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("This video is private")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("op invoked %d times, want 1", calls)
	}
	if len(slept) != 0 {
		t.Errorf("slept %d times on non-retryable failure", len(slept))
	}

	var cerr *ClassifiedError
	if !errors.As(err, &cerr) || cerr.Kind != KindPrivateContent {
		t.Errorf("error does not carry private_content classification: %v", err)
	}
}

func TestDoRetryableExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	calls := 0
	maxAttempts := 4

	_, err := Do(context.Background(), testConfig(maxAttempts, &slept), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("connection timed out")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != maxAttempts {
		t.Errorf("op invoked %d times, want %d", calls, maxAttempts)
	}
	if len(slept) != maxAttempts-1 {
		t.Errorf("slept %d times, want %d", len(slept), maxAttempts-1)
	}

	// Total sleep time is bounded by the per-attempt cap.
	var total time.Duration
	for _, d := range slept {
		total += d
	}
	if bound := time.Duration(maxAttempts) * 3 * 15 * time.Second; total >= bound {
		t.Errorf("total sleep %v exceeds bound %v", total, bound)
	}

	var cerr *ClassifiedError
	if !errors.As(err, &cerr) || cerr.Kind != KindNetwork {
		t.Errorf("exhausted error does not carry network classification: %v", err)
	}
}

func TestDoRecoversAfterTransientFailures(t *testing.T) {
	var slept []time.Duration
	calls := 0

	got, err := Do(context.Background(), testConfig(5, &slept), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("temporary network failure")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != "ok" {
		t.Errorf("result = %q, want ok", got)
	}
	if calls != 3 {
		t.Errorf("op invoked %d times, want 3", calls)
	}
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := Config{
		MaxAttempts: 5,
		MinDelay:    5 * time.Second,
		MaxDelay:    15 * time.Second,
		sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	_, err := Do(ctx, cfg, func(ctx context.Context) (int, error) {
		return 0, errors.New("connection refused")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
