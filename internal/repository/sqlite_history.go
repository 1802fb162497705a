package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/calebreed/promptmill/internal/enhancer"
)

// SQLiteHistoryRepo implements HistoryRepo using a SQLite database.
type SQLiteHistoryRepo struct {
	db *sql.DB
}

// NewSQLiteHistoryRepo creates a new SQLiteHistoryRepo.
func NewSQLiteHistoryRepo(db *sql.DB) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: db}
}

func (r *SQLiteHistoryRepo) SaveRecord(ctx context.Context, engineKey string, index int, rec enhancer.Record) error {
	query := `INSERT INTO enhancements (id, engine_key, idx, original_prompt, enhanced_prompt, created_at, effectiveness_rating)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(engine_key, idx) DO UPDATE SET
			id = excluded.id,
			original_prompt = excluded.original_prompt,
			enhanced_prompt = excluded.enhanced_prompt,
			created_at = excluded.created_at,
			effectiveness_rating = excluded.effectiveness_rating`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		engineKey,
		index,
		rec.OriginalPrompt,
		rec.EnhancedPrompt,
		rec.Timestamp.Format(time.RFC3339),
		nullableIntToValue(rec.EffectivenessRating),
	)
	if err != nil {
		return fmt.Errorf("inserting enhancement record: %w", err)
	}
	return nil
}

func (r *SQLiteHistoryRepo) UpdateRating(ctx context.Context, engineKey string, index, rating int) error {
	query := `UPDATE enhancements SET effectiveness_rating = ? WHERE engine_key = ? AND idx = ?`
	res, err := r.db.ExecContext(ctx, query, rating, engineKey, index)
	if err != nil {
		return fmt.Errorf("updating effectiveness rating: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rating update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("enhancement %s/%d: %w", engineKey, index, ErrNotFound)
	}
	return nil
}

func (r *SQLiteHistoryRepo) ListByEngine(ctx context.Context, engineKey string) ([]enhancer.Record, error) {
	query := `SELECT id, original_prompt, enhanced_prompt, created_at, effectiveness_rating
		FROM enhancements WHERE engine_key = ? ORDER BY idx`
	rows, err := r.db.QueryContext(ctx, query, engineKey)
	if err != nil {
		return nil, fmt.Errorf("listing enhancements by engine: %w", err)
	}
	defer rows.Close()
	return r.scanRecords(rows)
}

func (r *SQLiteHistoryRepo) ListEngines(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT engine_key FROM enhancements ORDER BY engine_key`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing engine keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning engine key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating engine keys: %w", err)
	}
	return keys, nil
}

// scanRecords scans enhancement records from *sql.Rows.
func (r *SQLiteHistoryRepo) scanRecords(rows *sql.Rows) ([]enhancer.Record, error) {
	var records []enhancer.Record
	for rows.Next() {
		var rec enhancer.Record
		var createdAtStr string
		var rating sql.NullInt64

		if err := rows.Scan(&rec.ID, &rec.OriginalPrompt, &rec.EnhancedPrompt, &createdAtStr, &rating); err != nil {
			return nil, fmt.Errorf("scanning enhancement record: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing enhancement timestamp: %w", err)
		}
		rec.Timestamp = ts

		if rating.Valid {
			v := int(rating.Int64)
			rec.EffectivenessRating = &v
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating enhancement records: %w", err)
	}
	return records, nil
}

// nullableIntToValue converts a *int to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil, otherwise returns the int value.
func nullableIntToValue(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
