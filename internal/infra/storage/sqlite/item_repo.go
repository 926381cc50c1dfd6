package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/clipwatch/internal/core/domain"
)

// ItemRepo implements storage.ItemRepository using SQLite.
type ItemRepo struct {
	db *DB
}

// NewItemRepo creates a new SQLite item repository.
func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// Exists reports whether an item id is already stored.
func (r *ItemRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check item: %w", err)
	}
	return count > 0, nil
}

// Upsert stores an item, replacing metadata on conflict.
func (r *ItemRepo) Upsert(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (id, source_id, url, title, origin_timestamp, retrieved_at, storage_path, likes, views)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url              = excluded.url,
			title            = excluded.title,
			origin_timestamp = excluded.origin_timestamp,
			retrieved_at     = excluded.retrieved_at,
			storage_path     = excluded.storage_path,
			likes            = excluded.likes,
			views            = excluded.views
	`

	var retrievedAt int64
	if !item.RetrievedAt.IsZero() {
		retrievedAt = item.RetrievedAt.Unix()
	} else {
		retrievedAt = time.Now().Unix()
	}

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.SourceID, item.URL, item.Title, item.OriginTimestamp,
		retrievedAt, item.StoragePath, item.Likes, item.Views)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

// Count returns the total number of stored items.
func (r *ItemRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items`); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// CountBySource returns per-source item counts.
func (r *ItemRepo) CountBySource(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		SourceID string `db:"source_id"`
		Count    int    `db:"count"`
	}

	query := `SELECT source_id, COUNT(*) AS count FROM items GROUP BY source_id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count items by source: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.SourceID] = row.Count
	}
	return counts, nil
}
