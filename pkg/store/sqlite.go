package store

import (
	"database/sql"
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/types"
	_ "modernc.org/sqlite"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

// AddSource records scanned content.
func (s *SQLiteStore) AddSource(src types.Source) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO sources (id, path, size) VALUES (?, ?, ?)",
		src.ID, src.Path, src.Size)
	if err != nil {
		return fmt.Errorf("inserting source: %w", err)
	}
	return nil
}

// AddHit records a hit.
func (s *SQLiteStore) AddHit(h *types.Hit) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO hits (source_id, path, pattern, pattern_text, offset_start, offset_end,
			start_line, start_column, end_line, end_column, snippet_before, snippet_matching, snippet_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		h.Source,
		h.Path,
		h.Match.Pattern,
		h.PatternText,
		h.Match.Start,
		h.Match.End,
		h.Location.Start.Line,
		h.Location.Start.Column,
		h.Location.End.Line,
		h.Location.End.Column,
		h.Snippet.Before,
		h.Snippet.Matching,
		h.Snippet.After,
	)
	if err != nil {
		return fmt.Errorf("inserting hit: %w", err)
	}
	return nil
}

const selectHits = `
	SELECT source_id, path, pattern, pattern_text, offset_start, offset_end,
		start_line, start_column, end_line, end_column, snippet_before, snippet_matching, snippet_after
	FROM hits`

// GetHits retrieves the hits for one piece of content.
func (s *SQLiteStore) GetHits(id types.ContentID) ([]*types.Hit, error) {
	return s.queryHits(selectHits+" WHERE source_id = ? ORDER BY id", id)
}

// GetAllHits retrieves every hit in insertion order.
func (s *SQLiteStore) GetAllHits() ([]*types.Hit, error) {
	return s.queryHits(selectHits + " ORDER BY id")
}

func (s *SQLiteStore) queryHits(query string, args ...interface{}) ([]*types.Hit, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying hits: %w", err)
	}
	defer rows.Close()

	hits := []*types.Hit{}
	for rows.Next() {
		var h types.Hit
		err := rows.Scan(
			&h.Source,
			&h.Path,
			&h.Match.Pattern,
			&h.PatternText,
			&h.Match.Start,
			&h.Match.End,
			&h.Location.Start.Line,
			&h.Location.Start.Column,
			&h.Location.End.Line,
			&h.Location.End.Column,
			&h.Snippet.Before,
			&h.Snippet.Matching,
			&h.Snippet.After,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hits = append(hits, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}
	return hits, nil
}

// Sources lists every recorded source.
func (s *SQLiteStore) Sources() ([]types.Source, error) {
	rows, err := s.db.Query("SELECT id, path, size FROM sources ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	sources := []types.Source{}
	for rows.Next() {
		var src types.Source
		if err := rows.Scan(&src.ID, &src.Path, &src.Size); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return sources, nil
}

// SourceExists reports whether the content has already been scanned.
func (s *SQLiteStore) SourceExists(id types.ContentID) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sources WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking source existence: %w", err)
	}
	return count > 0, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
