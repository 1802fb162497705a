package enhancer

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrIndexOutOfRange indicates a feedback index outside the history bounds.
var ErrIndexOutOfRange = errors.New("enhancement index out of range")

// Record is one enhancement attempt. The rating starts unset and may be
// overwritten by later feedback; last write wins.
type Record struct {
	ID                  string    `json:"id"`
	OriginalPrompt      string    `json:"original_prompt"`
	EnhancedPrompt      string    `json:"enhanced_prompt"`
	Timestamp           time.Time `json:"timestamp"`
	EffectivenessRating *int      `json:"effectiveness_rating"`
}

// NewRecord creates an unrated record for the given prompt pair.
func NewRecord(original, enhanced string) Record {
	return Record{
		ID:             uuid.NewString(),
		OriginalPrompt: original,
		EnhancedPrompt: enhanced,
		Timestamp:      time.Now().UTC(),
	}
}

// History is an append-only, index-addressable log of enhancement
// attempts. Indices are stable for the lifetime of the store: records
// are never removed or renumbered. Safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	records []Record
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds a record and returns its index.
func (h *History) Append(rec Record) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return len(h.records) - 1
}

// Get returns the record at index.
func (h *History) Get(index int) (Record, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if index < 0 || index >= len(h.records) {
		return Record{}, ErrIndexOutOfRange
	}
	return h.records[index], nil
}

// SetRating overwrites the rating of the record at index. Out-of-range
// indices leave the history untouched.
func (h *History) SetRating(index, rating int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.records) {
		return ErrIndexOutOfRange
	}
	h.records[index].EffectivenessRating = &rating
	return nil
}

// Len returns the number of records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Snapshot returns a copy of all records in insertion order.
func (h *History) Snapshot() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}
