package monitor

import "sync"

// Breaker counts consecutive iterations in which every source failed its
// list fetch. Per-operation retries already absorb transient errors, so a
// fully failed iteration points at something structural (expired
// credentials, geo block, all sources gone) where further retrying only
// burns quota. The monitoring loop stops cleanly once the threshold is hit.
type Breaker struct {
	mu          sync.RWMutex
	threshold   int
	consecutive int
}

// NewBreaker creates a breaker tripping after threshold fully failed
// iterations. Values below 1 fall back to 1: a single total failure stops
// the loop.
func NewBreaker(threshold int) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	return &Breaker{threshold: threshold}
}

// Observe records one iteration's outcome and reports whether the breaker
// has tripped. An iteration with zero sources is not a failure.
func (b *Breaker) Observe(total, succeeded int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if total > 0 && succeeded == 0 {
		b.consecutive++
	} else {
		b.consecutive = 0
	}
	return b.consecutive >= b.threshold
}

// ConsecutiveFailures returns the current run of fully failed iterations.
func (b *Breaker) ConsecutiveFailures() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.consecutive
}

// Threshold returns the configured trip threshold.
func (b *Breaker) Threshold() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.threshold
}
