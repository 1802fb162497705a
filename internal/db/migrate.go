package db

import (
	"database/sql"
	"fmt"
)

// migrations are idempotent schema statements, applied in order.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS enhancements (
		id                   TEXT PRIMARY KEY,
		engine_key           TEXT NOT NULL,
		idx                  INTEGER NOT NULL,
		original_prompt      TEXT NOT NULL,
		enhanced_prompt      TEXT NOT NULL,
		created_at           TEXT NOT NULL,
		effectiveness_rating INTEGER,
		UNIQUE(engine_key, idx)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_enhancements_engine_key
		ON enhancements(engine_key)`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
