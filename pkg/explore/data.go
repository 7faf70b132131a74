package explore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/acwasm/pkg/store"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// exploreData holds all loaded data for the TUI.
type exploreData struct {
	store   store.Store
	sources int
	hits    int
	rows    []*patternRow
}

// loadData opens a results database and groups its hits by pattern.
func loadData(storePath string) (*exploreData, error) {
	if storePath == ":memory:" {
		return nil, fmt.Errorf("cannot explore an in-memory store")
	}
	if _, err := os.Stat(storePath); err != nil {
		return nil, fmt.Errorf("datastore not found: %s", storePath)
	}

	s, err := store.New(store.Config{Path: storePath})
	if err != nil {
		return nil, fmt.Errorf("opening datastore: %w", err)
	}

	hits, err := s.GetAllHits()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("retrieving hits: %w", err)
	}
	sources, err := s.Sources()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("retrieving sources: %w", err)
	}

	return &exploreData{
		store:   s,
		sources: len(sources),
		hits:    len(hits),
		rows:    buildPatternRows(hits),
	}, nil
}

// buildPatternRows groups hits by pattern id, in order of first appearance.
func buildPatternRows(hits []*types.Hit) []*patternRow {
	var rows []*patternRow
	index := make(map[int]*patternRow)
	files := make(map[int]map[string]bool)

	for _, h := range hits {
		row, ok := index[h.Match.Pattern]
		if !ok {
			row = &patternRow{Pattern: h.Match.Pattern, Text: h.PatternText}
			index[h.Match.Pattern] = row
			files[h.Match.Pattern] = make(map[string]bool)
			rows = append(rows, row)
		}
		hr := buildHitRow(h)
		row.Hits = append(row.Hits, hr)
		if !files[h.Match.Pattern][h.Path] {
			files[h.Match.Pattern][h.Path] = true
			row.Files++
		}
		row.Extensions = appendUnique(row.Extensions, hr.Extension)
		row.Directories = appendUnique(row.Directories, hr.Directory)
	}
	for _, row := range rows {
		row.HitCount = len(row.Hits)
	}
	return rows
}

func buildHitRow(h *types.Hit) *hitRow {
	return &hitRow{
		Source:    h.Source,
		Path:      h.Path,
		Start:     h.Match.Start,
		End:       h.Match.End,
		Location:  h.Location,
		Snippet:   h.Snippet,
		Extension: extensionOf(h.Path),
		Directory: topDirectory(h.Path),
	}
}

// extensionOf returns the lowercase file extension, or "-" when there is none.
func extensionOf(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "-"
	}
	return strings.ToLower(ext)
}

// topDirectory returns the first path element of a relative path, or "."
// for files at the root.
func topDirectory(path string) string {
	dir := filepath.ToSlash(filepath.Dir(filepath.Clean(path)))
	if dir == "." || dir == "/" {
		return "."
	}
	for i := 0; i < len(dir); i++ {
		if dir[i] == '/' && i > 0 {
			return dir[:i]
		}
	}
	return dir
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}

// close closes the underlying store.
func (d *exploreData) close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
