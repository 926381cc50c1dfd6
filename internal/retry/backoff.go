package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// backoffMultiplier is the per-attempt growth factor for exponential delays.
const backoffMultiplier = 2.0

// Delay computes the pause before the next attempt. The base is a uniform
// draw in [min, max] so that concurrent sources never retry in lockstep.
// With exponential=true the base grows by backoffMultiplier per attempt
// (1-based; attempt 1 is an undistorted draw) and is capped at 3*max.
func Delay(min, max time.Duration, attempt int, exponential bool) time.Duration {
	base := min + time.Duration(rand.Float64()*float64(max-min))
	if !exponential {
		return base
	}

	d := time.Duration(float64(base) * math.Pow(backoffMultiplier, float64(attempt-1)))
	if limit := 3 * max; d > limit {
		d = limit
	}
	return d
}

// Jitter returns base shifted by a uniform draw in ±pct (0.1 = ±10%).
// Used for the inter-iteration sleep so checks do not land on a fixed grid.
func Jitter(base time.Duration, pct float64) time.Duration {
	shift := (rand.Float64()*2 - 1) * pct * float64(base)
	d := base + time.Duration(shift)
	if d < 0 {
		return 0
	}
	return d
}
