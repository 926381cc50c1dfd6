package domain

import "time"

// Source represents a monitored upstream account whose item list is polled.
type Source struct {
	ID                string
	Enabled           bool
	LastCheckedAt     time.Time
	LastSeenWatermark int64 // unix timestamp of newest stored item, 0 = never checked
	TotalRetrieved    int64
	CreatedAt         time.Time
}

// Entry is a single candidate from a source's recent-items listing.
// Timestamp may be zero when the upstream omits it; dedup falls back to an
// id lookup in that case.
type Entry struct {
	ID        string
	Timestamp int64
	Title     string
	URL       string
}
