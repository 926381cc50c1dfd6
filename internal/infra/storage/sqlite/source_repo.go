package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/clipwatch/internal/core/domain"
	"github.com/vietddude/clipwatch/internal/infra/storage"
)

// SourceRepo implements storage.SourceRepository using SQLite.
type SourceRepo struct {
	db *DB
}

// NewSourceRepo creates a new SQLite source repository.
func NewSourceRepo(db *DB) *SourceRepo {
	return &SourceRepo{db: db}
}

type sourceRow struct {
	ID                string `db:"id"`
	Enabled           int    `db:"enabled"`
	LastCheckedAt     int64  `db:"last_checked_at"`
	LastSeenWatermark int64  `db:"last_seen_watermark"`
	TotalRetrieved    int64  `db:"total_retrieved"`
	CreatedAt         int64  `db:"created_at"`
}

func (r sourceRow) toDomain() *domain.Source {
	src := &domain.Source{
		ID:                r.ID,
		Enabled:           r.Enabled != 0,
		LastSeenWatermark: r.LastSeenWatermark,
		TotalRetrieved:    r.TotalRetrieved,
	}
	if r.LastCheckedAt > 0 {
		src.LastCheckedAt = time.Unix(r.LastCheckedAt, 0).UTC()
	}
	if r.CreatedAt > 0 {
		src.CreatedAt = time.Unix(r.CreatedAt, 0).UTC()
	}
	return src
}

// Get retrieves a source by id.
func (r *SourceRepo) Get(ctx context.Context, id string) (*domain.Source, error) {
	query := `
		SELECT id, enabled, last_checked_at, last_seen_watermark, total_retrieved, created_at
		FROM sources
		WHERE id = ?
	`

	var row sourceRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return row.toDomain(), nil
}

// Upsert creates or updates a source record.
func (r *SourceRepo) Upsert(ctx context.Context, src *domain.Source) error {
	query := `
		INSERT INTO sources (id, enabled, last_checked_at, last_seen_watermark, total_retrieved, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			enabled             = excluded.enabled,
			last_checked_at     = excluded.last_checked_at,
			last_seen_watermark = excluded.last_seen_watermark,
			total_retrieved     = excluded.total_retrieved
	`

	enabled := 0
	if src.Enabled {
		enabled = 1
	}
	var lastChecked, created int64
	if !src.LastCheckedAt.IsZero() {
		lastChecked = src.LastCheckedAt.Unix()
	}
	if !src.CreatedAt.IsZero() {
		created = src.CreatedAt.Unix()
	}

	_, err := r.db.ExecContext(ctx, query,
		src.ID, enabled, lastChecked, src.LastSeenWatermark, src.TotalRetrieved, created)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	return nil
}

// List retrieves sources in registration order.
func (r *SourceRepo) List(ctx context.Context, enabledOnly bool) ([]*domain.Source, error) {
	query := `
		SELECT id, enabled, last_checked_at, last_seen_watermark, total_retrieved, created_at
		FROM sources
	`
	if enabledOnly {
		query += " WHERE enabled = 1"
	}
	query += " ORDER BY created_at ASC, id ASC"

	var rows []sourceRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	sources := make([]*domain.Source, 0, len(rows))
	for _, row := range rows {
		sources = append(sources, row.toDomain())
	}
	return sources, nil
}

// SetEnabled toggles a source.
func (r *SourceRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	val := 0
	if enabled {
		val = 1
	}

	res, err := r.db.ExecContext(ctx, `UPDATE sources SET enabled = ? WHERE id = ?`, val, id)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrSourceNotFound
	}
	return nil
}

// Delete hard-deletes a source and all of its items.
func (r *SourceRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE source_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM failed_items WHERE source_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete failed items: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrSourceNotFound
	}

	return tx.Commit()
}
