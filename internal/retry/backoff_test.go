package retry

import (
	"testing"
	"time"
)

func TestDelayWithinRange(t *testing.T) {
	min, max := 5*time.Second, 15*time.Second

	for i := 0; i < 100; i++ {
		d := Delay(min, max, 1, false)
		if d < min || d > max {
			t.Fatalf("Delay = %v, want within [%v, %v]", d, min, max)
		}
	}
}

func TestDelayExponentialFirstAttemptUndistorted(t *testing.T) {
	min, max := 5*time.Second, 15*time.Second

	for i := 0; i < 100; i++ {
		d := Delay(min, max, 1, true)
		if d < min || d > max {
			t.Fatalf("Delay(attempt=1, exp) = %v, want within [%v, %v]", d, min, max)
		}
	}
}

func TestDelayExponentialGrowthAndCap(t *testing.T) {
	min, max := 5*time.Second, 15*time.Second
	limit := 3 * max

	for i := 0; i < 100; i++ {
		// Attempt 2 doubles the base draw.
		d := Delay(min, max, 2, true)
		if d < 2*min || d > 2*max {
			t.Fatalf("Delay(attempt=2, exp) = %v, want within [%v, %v]", d, 2*min, 2*max)
		}

		// A late attempt must be capped at 3x max.
		d = Delay(min, max, 10, true)
		if d != limit {
			t.Fatalf("Delay(attempt=10, exp) = %v, want cap %v", d, limit)
		}
	}
}

func TestJitterBounds(t *testing.T) {
	base := 30 * time.Minute

	for i := 0; i < 100; i++ {
		d := Jitter(base, 0.1)
		lo := time.Duration(float64(base) * 0.9)
		hi := time.Duration(float64(base) * 1.1)
		if d < lo || d > hi {
			t.Fatalf("Jitter = %v, want within [%v, %v]", d, lo, hi)
		}
	}
}
