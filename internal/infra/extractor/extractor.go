package extractor

import (
	"context"

	"github.com/vietddude/clipwatch/internal/core/domain"
)

// ItemInfo carries metadata for a retrieved item alongside the payload path.
type ItemInfo struct {
	ID        string
	Timestamp int64
	Title     string
	Uploader  string
	URL       string
	Likes     int64
	Views     int64
	FilePath  string
}

// Extractor is the boundary between the monitoring engine and the upstream
// site. Implementations own all protocol and anti-bot specifics; errors they
// return are classified by text (internal/retry), so they should surface the
// upstream message instead of masking it.
type Extractor interface {
	// ListRecent returns up to limit recent entries for a source,
	// unordered; callers sort by timestamp before filtering.
	ListRecent(ctx context.Context, sourceID string, limit int) ([]domain.Entry, error)

	// FetchItem downloads an item's payload and returns its metadata,
	// including the local storage path.
	FetchItem(ctx context.Context, url string) (*ItemInfo, error)
}
