package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/clipwatch/internal/core/domain"
)

// FailedItemRepo implements storage.FailedItemRepository using SQLite.
type FailedItemRepo struct {
	db *DB
}

// NewFailedItemRepo creates a new SQLite failed item repository.
func NewFailedItemRepo(db *DB) *FailedItemRepo {
	return &FailedItemRepo{db: db}
}

// Add records a failed retrieval.
func (r *FailedItemRepo) Add(ctx context.Context, fi *domain.FailedItem) error {
	query := `
		INSERT INTO failed_items (id, source_id, item_id, url, error_kind, error_msg, retry_count, status, last_attempt, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id := fi.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := fi.Status
	if status == "" {
		status = domain.FailedItemStatusPending
	}
	now := time.Now().Unix()

	_, err := r.db.ExecContext(ctx, query,
		id, fi.SourceID, fi.ItemID, fi.URL, fi.ErrorKind, fi.Error,
		fi.RetryCount, string(status), now, now)
	if err != nil {
		return fmt.Errorf("failed to add failed item: %w", err)
	}
	return nil
}

// GetPending retrieves pending failures for a source.
func (r *FailedItemRepo) GetPending(ctx context.Context, sourceID string) ([]*domain.FailedItem, error) {
	query := `
		SELECT id, source_id, item_id, url, error_kind, error_msg, retry_count, status, last_attempt, created_at
		FROM failed_items
		WHERE source_id = ? AND status = 'pending'
		ORDER BY last_attempt ASC
	`

	var rows []struct {
		ID          string `db:"id"`
		SourceID    string `db:"source_id"`
		ItemID      string `db:"item_id"`
		URL         string `db:"url"`
		ErrorKind   string `db:"error_kind"`
		ErrorMsg    string `db:"error_msg"`
		RetryCount  int    `db:"retry_count"`
		Status      string `db:"status"`
		LastAttempt int64  `db:"last_attempt"`
		CreatedAt   int64  `db:"created_at"`
	}

	if err := r.db.SelectContext(ctx, &rows, query, sourceID); err != nil {
		return nil, fmt.Errorf("failed to get pending failed items: %w", err)
	}

	items := make([]*domain.FailedItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &domain.FailedItem{
			ID:          row.ID,
			SourceID:    row.SourceID,
			ItemID:      row.ItemID,
			URL:         row.URL,
			ErrorKind:   row.ErrorKind,
			Error:       row.ErrorMsg,
			RetryCount:  row.RetryCount,
			Status:      domain.FailedItemStatus(row.Status),
			LastAttempt: time.Unix(row.LastAttempt, 0).UTC(),
			CreatedAt:   time.Unix(row.CreatedAt, 0).UTC(),
		})
	}
	return items, nil
}

// MarkResolved resolves pending failures for an item.
func (r *FailedItemRepo) MarkResolved(ctx context.Context, itemID string) error {
	query := `
		UPDATE failed_items
		SET status = 'resolved'
		WHERE item_id = ? AND status = 'pending'
	`
	_, err := r.db.ExecContext(ctx, query, itemID)
	return err
}

// Count returns the number of pending failures.
func (r *FailedItemRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM failed_items WHERE status = 'pending'`)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed items: %w", err)
	}
	return count, nil
}
