package storage

import (
	"context"
	"errors"

	"github.com/vietddude/clipwatch/internal/core/domain"
)

var (
	// ErrSourceNotFound is returned when a source doesn't exist
	ErrSourceNotFound = errors.New("source not found")
)

// SourceRepository handles monitored-source records
type SourceRepository interface {
	// Get retrieves a source by id
	Get(ctx context.Context, id string) (*domain.Source, error)

	// Upsert creates or updates a source
	Upsert(ctx context.Context, src *domain.Source) error

	// List retrieves sources in registration order. enabledOnly filters
	// out soft-deleted sources.
	List(ctx context.Context, enabledOnly bool) ([]*domain.Source, error)

	// SetEnabled toggles a source without touching its watermark
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// Delete hard-deletes a source and all of its items
	Delete(ctx context.Context, id string) error
}

// ItemRepository handles retrieved-item records
type ItemRepository interface {
	// Exists reports whether an item id is already stored
	Exists(ctx context.Context, id string) (bool, error)

	// Upsert stores an item; a second upsert of the same id replaces the
	// metadata instead of inserting a duplicate row. Known items are never
	// re-fetched by the monitor, so metadata of an already-stored item only
	// refreshes when a crash forced the same id to be downloaded again.
	Upsert(ctx context.Context, item *domain.Item) error

	// Count returns the total number of stored items
	Count(ctx context.Context) (int, error)

	// CountBySource returns per-source item counts
	CountBySource(ctx context.Context) (map[string]int, error)
}

// FailedItemRepository keeps the queue of items whose retrieval failed
type FailedItemRepository interface {
	// Add records a failed retrieval
	Add(ctx context.Context, fi *domain.FailedItem) error

	// GetPending retrieves pending failures for a source
	GetPending(ctx context.Context, sourceID string) ([]*domain.FailedItem, error)

	// MarkResolved resolves pending failures for an item after a later
	// successful retrieval
	MarkResolved(ctx context.Context, itemID string) error

	// Count returns the number of pending failures
	Count(ctx context.Context) (int, error)
}

// SettingsRepository is a small persisted key-value area
type SettingsRepository interface {
	// Get returns the value for key, or fallback when unset
	Get(ctx context.Context, key, fallback string) (string, error)

	// Set stores a value
	Set(ctx context.Context, key, value string) error
}
