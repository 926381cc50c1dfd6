package monitor

import "github.com/vietddude/clipwatch/internal/core/domain"

// SelectNew filters candidates down to the genuinely new ones. A candidate
// is new when its timestamp is above the watermark, or when it carries no
// usable timestamp and its id is unknown to the store. A present, positive
// timestamp at or below the watermark is authoritative and excludes the
// candidate even if the id lookup misses; the id fallback is a safety net
// for listings with absent timestamps, not a way to re-surface old items.
// Input ordering is preserved; callers pass candidates newest first.
func SelectNew(candidates []domain.Entry, watermark int64, isKnown func(id string) bool) []domain.Entry {
	var selected []domain.Entry

	for _, c := range candidates {
		if c.Timestamp > 0 && c.Timestamp <= watermark {
			continue
		}
		if c.Timestamp > watermark || !isKnown(c.ID) {
			selected = append(selected, c)
		}
	}
	return selected
}
