package domain

import "time"

// FailedItem records an item whose retrieval failed inside an otherwise
// successful cycle. Kept for operator visibility; a failed item does not
// block the rest of its batch.
type FailedItem struct {
	ID          string           `json:"id"`
	SourceID    string           `json:"source_id"`
	ItemID      string           `json:"item_id"`
	URL         string           `json:"url"`
	ErrorKind   string           `json:"error_kind"`
	Error       string           `json:"error_msg"`
	RetryCount  int              `json:"retry_count"`
	Status      FailedItemStatus `json:"status"`
	LastAttempt time.Time
	CreatedAt   time.Time
}

type FailedItemStatus string

const (
	FailedItemStatusPending  FailedItemStatus = "pending"
	FailedItemStatusResolved FailedItemStatus = "resolved"
	FailedItemStatusIgnored  FailedItemStatus = "ignored"
)
