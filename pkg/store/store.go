package store

import (
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Store persists scan results.
type Store interface {
	// AddSource records scanned content. Adding the same (id, path) twice
	// is a no-op.
	AddSource(src types.Source) error

	// AddHit records a hit. Hits are deduplicated on content, pattern and
	// span, so rescanning identical content adds nothing.
	AddHit(h *types.Hit) error

	// GetHits retrieves the hits for one piece of content.
	GetHits(id types.ContentID) ([]*types.Hit, error)

	// GetAllHits retrieves every hit in insertion order.
	GetAllHits() ([]*types.Hit, error)

	// Sources lists every recorded source.
	Sources() ([]types.Source, error)

	// SourceExists reports whether the content has already been scanned.
	SourceExists(id types.ContentID) (bool, error)

	// Close releases the store.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path is the database file path.
	// Use ":memory:" to keep results in process memory only.
	Path string
}

// New creates a Store. ":memory:" yields a MemoryStore and any other path
// a SQLite database file.
func New(cfg Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if cfg.Path == ":memory:" {
		return NewMemory(), nil
	}
	return NewSQLite(cfg.Path)
}

type hitKey struct {
	source     types.ContentID
	pattern    int
	start, end int
}

func keyOf(h *types.Hit) hitKey {
	return hitKey{source: h.Source, pattern: h.Match.Pattern, start: h.Match.Start, end: h.Match.End}
}
