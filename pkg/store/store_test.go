package store

import (
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/acwasm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New(Config{Path: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	s, err = New(Config{Path: filepath.Join(t.TempDir(), "results.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = New(Config{Path: ""})
	assert.ErrorContains(t, err, "path is required")
}

func sampleHit(content []byte, path string, pattern, start, end int) *types.Hit {
	return &types.Hit{
		Source:      types.ComputeContentID(content),
		Path:        path,
		Match:       types.Match{Pattern: pattern, Start: start, End: end},
		PatternText: string(content[start:end]),
		Location:    types.Locate(content, start, end),
		Snippet:     types.NewSnippet(content, start, end, 4),
	}
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		s := NewMemory()
		defer s.Close()
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLite(filepath.Join(t.TempDir(), "results.db"))
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
}

func TestStore_Sources(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		content := []byte("password=hunter2\n")
		id := types.ComputeContentID(content)

		exists, err := s.SourceExists(id)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, s.AddSource(types.Source{ID: id, Path: "a.env", Size: int64(len(content))}))
		require.NoError(t, s.AddSource(types.Source{ID: id, Path: "a.env", Size: int64(len(content))}))
		require.NoError(t, s.AddSource(types.Source{ID: id, Path: "copy/a.env", Size: int64(len(content))}))

		exists, err = s.SourceExists(id)
		require.NoError(t, err)
		assert.True(t, exists)

		sources, err := s.Sources()
		require.NoError(t, err)
		require.Len(t, sources, 2)
		assert.Equal(t, "a.env", sources[0].Path)
		assert.Equal(t, "copy/a.env", sources[1].Path)
		assert.Equal(t, id, sources[1].ID)
		assert.Equal(t, int64(len(content)), sources[1].Size)
	})
}

func TestStore_Hits(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		first := []byte("key: AKIA0000\nother: AKIA1111\n")
		second := []byte("nothing to see")

		h1 := sampleHit(first, "config.yml", 0, 5, 9)
		h2 := sampleHit(first, "config.yml", 0, 21, 25)
		h3 := sampleHit(second, "notes.txt", 1, 0, 7)

		for _, h := range []*types.Hit{h1, h2, h3, h1} {
			require.NoError(t, s.AddHit(h))
		}

		all, err := s.GetAllHits()
		require.NoError(t, err)
		require.Len(t, all, 3, "duplicate hit is ignored")
		assert.Equal(t, h1.Match, all[0].Match)
		assert.Equal(t, h3.Match, all[2].Match)

		hits, err := s.GetHits(h1.Source)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		got := hits[1]
		assert.Equal(t, "config.yml", got.Path)
		assert.Equal(t, "AKIA", got.PatternText)
		assert.Equal(t, types.SourcePoint{Line: 2, Column: 8}, got.Location.Start)
		assert.Equal(t, "er: ", string(got.Snippet.Before))
		assert.Equal(t, "AKIA", string(got.Snippet.Matching))
		assert.Equal(t, "1111", string(got.Snippet.After))

		none, err := s.GetHits(types.ComputeContentID([]byte("absent")))
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	content := []byte("token")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.AddSource(types.Source{ID: types.ComputeContentID(content), Path: "t", Size: 5}))
	require.NoError(t, s.AddHit(sampleHit(content, "t", 0, 0, 5)))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	hits, err := s.GetAllHits()
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	var version int
	require.NoError(t, s.db.QueryRow("SELECT version FROM schema_version").Scan(&version))
	assert.Equal(t, SchemaVersion, version)
}

func TestSQLite_RejectsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	_, err = s.db.Exec("UPDATE schema_version SET version = 99")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = NewSQLite(path)
	assert.ErrorContains(t, err, "unsupported schema version 99")
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.db")
	b := filepath.Join(dir, "b.db")
	dest := filepath.Join(dir, "dest.db")

	shared := []byte("shared secret")
	only := []byte("only in b")

	sa, err := NewSQLite(a)
	require.NoError(t, err)
	require.NoError(t, sa.AddSource(types.Source{ID: types.ComputeContentID(shared), Path: "s.txt", Size: 13}))
	require.NoError(t, sa.AddHit(sampleHit(shared, "s.txt", 0, 7, 13)))
	require.NoError(t, sa.Close())

	sb, err := NewSQLite(b)
	require.NoError(t, err)
	require.NoError(t, sb.AddSource(types.Source{ID: types.ComputeContentID(shared), Path: "s.txt", Size: 13}))
	require.NoError(t, sb.AddHit(sampleHit(shared, "s.txt", 0, 7, 13)))
	require.NoError(t, sb.AddSource(types.Source{ID: types.ComputeContentID(only), Path: "o.txt", Size: 9}))
	require.NoError(t, sb.AddHit(sampleHit(only, "o.txt", 1, 0, 4)))
	require.NoError(t, sb.Close())

	stats, err := Merge(MergeConfig{SourcePaths: []string{a, b}, DestPath: dest})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DatabasesMerged)
	assert.Equal(t, 2, stats.SourcesMerged)
	assert.Equal(t, 2, stats.HitsMerged)

	merged, err := NewSQLite(dest)
	require.NoError(t, err)
	defer merged.Close()
	hits, err := merged.GetAllHits()
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "secret", hits[0].PatternText)
	assert.Equal(t, "only", hits[1].PatternText)
}

func TestMerge_Validation(t *testing.T) {
	_, err := Merge(MergeConfig{DestPath: "x.db"})
	assert.ErrorContains(t, err, "no source databases")

	_, err = Merge(MergeConfig{SourcePaths: []string{"a.db"}})
	assert.ErrorContains(t, err, "destination path is required")
}
