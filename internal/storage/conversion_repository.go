package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fleveque/sticker-service/internal/model"
)

// ErrNotFound is returned when a journal entry doesn't exist.
// Callers check with errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("conversion not found")

// ConversionRepository persists the conversion journal.
// Go interfaces are implicit, so tests can swap in an in-memory fake.
type ConversionRepository interface {
	Create(ctx context.Context, c *model.Conversion) error
	Get(ctx context.Context, id string) (*model.Conversion, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.ConversionStatus) (int64, error)
	CountByKind(ctx context.Context) (map[string]int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.Conversion, error)
}

type sqliteConversionRepository struct {
	db *sqlx.DB
}

// NewConversionRepository creates a new SQLite-backed ConversionRepository.
func NewConversionRepository(db *sqlx.DB) ConversionRepository {
	return &sqliteConversionRepository{db: db}
}

func (r *sqliteConversionRepository) Create(ctx context.Context, c *model.Conversion) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO conversions (id, operation, source_kind, container, input_bytes,
			output_bytes, status, error_message, duration_ms)
		VALUES (:id, :operation, :source_kind, :container, :input_bytes,
			:output_bytes, :status, :error_message, :duration_ms)
	`, c)
	if err != nil {
		return fmt.Errorf("creating conversion record: %w", err)
	}
	return nil
}

func (r *sqliteConversionRepository) Get(ctx context.Context, id string) (*model.Conversion, error) {
	var c model.Conversion
	err := r.db.GetContext(ctx, &c, "SELECT * FROM conversions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversion %s: %w", id, err)
	}
	return &c, nil
}

func (r *sqliteConversionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM conversions")
	return count, err
}

func (r *sqliteConversionRepository) CountByStatus(ctx context.Context, status model.ConversionStatus) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM conversions WHERE status = ?", status)
	return count, err
}

// CountByKind groups the journal by source kind ("" for quote cards).
func (r *sqliteConversionRepository) CountByKind(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Kind  string `db:"source_kind"`
		Count int64  `db:"n"`
	}
	err := r.db.SelectContext(ctx, &rows,
		"SELECT source_kind, COUNT(*) AS n FROM conversions GROUP BY source_kind")
	if err != nil {
		return nil, fmt.Errorf("counting conversions by kind: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Kind] = row.Count
	}
	return out, nil
}

func (r *sqliteConversionRepository) ListRecent(ctx context.Context, limit int) ([]model.Conversion, error) {
	var conversions []model.Conversion
	err := r.db.SelectContext(ctx, &conversions,
		"SELECT * FROM conversions ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent conversions: %w", err)
	}
	return conversions, nil
}
