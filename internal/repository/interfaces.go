package repository

import (
	"context"
	"errors"

	"github.com/calebreed/promptmill/internal/enhancer"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// HistoryRepo persists enhancement records per engine. It is the
// optional persistence sink behind the in-memory history: callers treat
// every failure as non-fatal.
type HistoryRepo interface {
	// SaveRecord upserts the record at (engineKey, index).
	SaveRecord(ctx context.Context, engineKey string, index int, rec enhancer.Record) error

	// UpdateRating overwrites the rating of the record at (engineKey, index).
	UpdateRating(ctx context.Context, engineKey string, index, rating int) error

	// ListByEngine returns an engine's records in index order.
	ListByEngine(ctx context.Context, engineKey string) ([]enhancer.Record, error)

	// ListEngines returns all engine keys with persisted records.
	ListEngines(ctx context.Context) ([]string, error)
}
