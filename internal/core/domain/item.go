package domain

import "time"

// Item represents a retrieved unit of content.
// ID is assigned by the extractor and is the primary key; storing the same
// id twice is an upsert, never a duplicate row.
type Item struct {
	ID              string
	SourceID        string
	URL             string
	Title           string
	OriginTimestamp int64
	RetrievedAt     time.Time
	StoragePath     string
	Likes           int64
	Views           int64
}
