package explore

import (
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/acwasm/pkg/store"
	"github.com/praetorian-inc/acwasm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hitAt(content, path string, pattern, start, end int) *types.Hit {
	b := []byte(content)
	return &types.Hit{
		Source:      types.ComputeContentID(b),
		Path:        path,
		Match:       types.Match{Pattern: pattern, Start: start, End: end},
		PatternText: content[start:end],
		Location:    types.Locate(b, start, end),
		Snippet:     types.NewSnippet(b, start, end, 8),
	}
}

func sampleHits() []*types.Hit {
	return []*types.Hit{
		hitAt("// TODO fix\n// FIXME later\n", "src/main.go", 0, 3, 7),
		hitAt("// TODO fix\n// FIXME later\n", "src/main.go", 1, 15, 20),
		hitAt("TODO: docs\n", "README.md", 0, 0, 4),
		hitAt("# TODO\n", "src/lib/util.py", 0, 2, 6),
	}
}

func TestBuildPatternRows(t *testing.T) {
	rows := buildPatternRows(sampleHits())
	require.Len(t, rows, 2)

	todo := rows[0]
	assert.Equal(t, 0, todo.Pattern)
	assert.Equal(t, "TODO", todo.Text)
	assert.Equal(t, 3, todo.HitCount)
	assert.Equal(t, 3, todo.Files)
	assert.Equal(t, []string{".go", ".md", ".py"}, todo.Extensions)
	assert.Equal(t, []string{"src", "."}, todo.Directories)
	require.Len(t, todo.Hits, 3)
	assert.Equal(t, "README.md", todo.Hits[1].Path)
	assert.Equal(t, types.SourcePoint{Line: 1, Column: 1}, todo.Hits[1].Location.Start)

	fixme := rows[1]
	assert.Equal(t, 1, fixme.Pattern)
	assert.Equal(t, "FIXME", fixme.Text)
	assert.Equal(t, 1, fixme.HitCount)
	assert.Equal(t, 1, fixme.Files)
	assert.Equal(t, 15, fixme.Hits[0].Start)
	assert.Equal(t, 20, fixme.Hits[0].End)
	assert.Equal(t, types.SourcePoint{Line: 2, Column: 4}, fixme.Hits[0].Location.Start)
}

func TestBuildPatternRows_Empty(t *testing.T) {
	assert.Empty(t, buildPatternRows(nil))
}

func TestPathHelpers(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		dir  string
	}{
		{"main.go", ".go", "."},
		{"Makefile", "-", "."},
		{"src/App.JSX", ".jsx", "src"},
		{"src/lib/util.py", ".py", "src"},
		{"./docs/guide.md", ".md", "docs"},
		{"/abs/path/file.txt", ".txt", "/abs"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ext, extensionOf(tt.path))
			assert.Equal(t, tt.dir, topDirectory(tt.path))
		})
	}
}

func TestPatternRow_Label(t *testing.T) {
	assert.Equal(t, "secret", (&patternRow{Pattern: 2, Text: "secret"}).Label())
	assert.Equal(t, "#7", (&patternRow{Pattern: 7}).Label())
}

func TestLoadData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	s, err := store.New(store.Config{Path: path})
	require.NoError(t, err)
	for _, h := range sampleHits() {
		require.NoError(t, s.AddSource(types.Source{ID: h.Source, Path: h.Path}))
		require.NoError(t, s.AddHit(h))
	}
	require.NoError(t, s.Close())

	data, err := loadData(path)
	require.NoError(t, err)
	defer data.close()

	assert.Equal(t, 3, data.sources)
	assert.Equal(t, 4, data.hits)
	require.Len(t, data.rows, 2)
	assert.Equal(t, "TODO", data.rows[0].Text)
}

func TestLoadData_Errors(t *testing.T) {
	_, err := loadData(":memory:")
	assert.ErrorContains(t, err, "in-memory")

	_, err = loadData(filepath.Join(t.TempDir(), "missing.db"))
	assert.ErrorContains(t, err, "datastore not found")
}
