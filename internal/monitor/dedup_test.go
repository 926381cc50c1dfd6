package monitor

import (
	"testing"

	"github.com/vietddude/clipwatch/internal/core/domain"
)

func knownSet(ids ...string) func(string) bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(id string) bool { return set[id] }
}

func TestSelectNewTimestampAboveWatermark(t *testing.T) {
	candidates := []domain.Entry{
		{ID: "a", Timestamp: 1200},
		{ID: "b", Timestamp: 900},
	}

	got := SelectNew(candidates, 1000, knownSet())
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("SelectNew = %v, want [a]", got)
	}
}

func TestSelectNewOldTimestampIsAuthoritative(t *testing.T) {
	// Unknown id but a valid timestamp at or below the watermark: the
	// timestamp wins and the candidate is excluded.
	candidates := []domain.Entry{
		{ID: "old-unknown", Timestamp: 500},
	}

	got := SelectNew(candidates, 1000, knownSet())
	if len(got) != 0 {
		t.Fatalf("SelectNew = %v, want empty", got)
	}
}

func TestSelectNewZeroTimestampFallsBackToID(t *testing.T) {
	candidates := []domain.Entry{
		{ID: "known-no-ts", Timestamp: 0},
		{ID: "unknown-no-ts", Timestamp: 0},
	}

	got := SelectNew(candidates, 1000, knownSet("known-no-ts"))
	if len(got) != 1 || got[0].ID != "unknown-no-ts" {
		t.Fatalf("SelectNew = %v, want [unknown-no-ts]", got)
	}
}

func TestSelectNewZeroWatermark(t *testing.T) {
	// Never-checked source: every positively timestamped candidate is new
	// regardless of the id lookup.
	candidates := []domain.Entry{
		{ID: "a", Timestamp: 100},
		{ID: "b", Timestamp: 50},
		{ID: "c", Timestamp: 0},
	}

	got := SelectNew(candidates, 0, knownSet("a", "b", "c"))
	if len(got) != 2 {
		t.Fatalf("SelectNew returned %d entries, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("SelectNew = %v, want [a b]", got)
	}
}

func TestSelectNewNeverReturnsOldPositiveTimestamps(t *testing.T) {
	candidates := []domain.Entry{
		{ID: "a", Timestamp: 1500},
		{ID: "b", Timestamp: 1000},
		{ID: "c", Timestamp: 999},
		{ID: "d", Timestamp: 1},
	}

	for _, watermark := range []int64{0, 1, 999, 1000, 1500, 2000} {
		for _, e := range SelectNew(candidates, watermark, knownSet()) {
			if e.Timestamp > 0 && e.Timestamp <= watermark {
				t.Errorf("watermark %d: returned entry %s with stale timestamp %d",
					watermark, e.ID, e.Timestamp)
			}
		}
	}
}

func TestSelectNewPreservesOrder(t *testing.T) {
	candidates := []domain.Entry{
		{ID: "newest", Timestamp: 3000},
		{ID: "middle", Timestamp: 2000},
		{ID: "oldest", Timestamp: 1500},
	}

	got := SelectNew(candidates, 1000, knownSet())
	want := []string{"newest", "middle", "oldest"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("SelectNew order = %v, want %v", got, want)
		}
	}
}
