package store

import (
	"database/sql"
	"fmt"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the database files to merge from.
	SourcePaths []string
	// DestPath is the destination database file.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	SourcesMerged   int
	HitsMerged      int
	DatabasesMerged int
}

// Merge combines several result databases into one. Rows already present
// in the destination are skipped by the tables' unique constraints.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	destDB, err := openDB(cfg.DestPath)
	if err != nil {
		return nil, err
	}
	defer destDB.Close()

	stats := &MergeStats{}
	for _, sourcePath := range cfg.SourcePaths {
		sourceStats, err := mergeFrom(destDB, sourcePath)
		if err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.SourcesMerged += sourceStats.SourcesMerged
		stats.HitsMerged += sourceStats.HitsMerged
		stats.DatabasesMerged++
	}
	return stats, nil
}

func mergeFrom(destDB *sql.DB, sourcePath string) (*MergeStats, error) {
	sourceDB, err := openDB(sourcePath)
	if err != nil {
		return nil, err
	}
	defer sourceDB.Close()

	tx, err := destDB.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stats := &MergeStats{}
	if stats.SourcesMerged, err = mergeSources(tx, sourceDB); err != nil {
		return nil, fmt.Errorf("merging sources: %w", err)
	}
	if stats.HitsMerged, err = mergeHits(tx, sourceDB); err != nil {
		return nil, fmt.Errorf("merging hits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return stats, nil
}

func mergeSources(tx *sql.Tx, sourceDB *sql.DB) (int, error) {
	rows, err := sourceDB.Query("SELECT id, path, size FROM sources ORDER BY seq")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO sources (id, path, size) VALUES (?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var id, path string
		var size int64
		if err := rows.Scan(&id, &path, &size); err != nil {
			return count, err
		}
		result, err := stmt.Exec(id, path, size)
		if err != nil {
			return count, err
		}
		if affected, _ := result.RowsAffected(); affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}

func mergeHits(tx *sql.Tx, sourceDB *sql.DB) (int, error) {
	rows, err := sourceDB.Query(`
		SELECT source_id, path, pattern, pattern_text, offset_start, offset_end,
		       start_line, start_column, end_line, end_column,
		       snippet_before, snippet_matching, snippet_after
		FROM hits ORDER BY id
	`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO hits
		(source_id, path, pattern, pattern_text, offset_start, offset_end,
		 start_line, start_column, end_line, end_column,
		 snippet_before, snippet_matching, snippet_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for rows.Next() {
		var sourceID, path, patternText string
		var pattern, offsetStart, offsetEnd, startLine, startColumn, endLine, endColumn int64
		var snippetBefore, snippetMatching, snippetAfter []byte

		if err := rows.Scan(&sourceID, &path, &pattern, &patternText, &offsetStart, &offsetEnd,
			&startLine, &startColumn, &endLine, &endColumn,
			&snippetBefore, &snippetMatching, &snippetAfter); err != nil {
			return count, err
		}
		result, err := stmt.Exec(sourceID, path, pattern, patternText, offsetStart, offsetEnd,
			startLine, startColumn, endLine, endColumn,
			snippetBefore, snippetMatching, snippetAfter)
		if err != nil {
			return count, err
		}
		if affected, _ := result.RowsAffected(); affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}
