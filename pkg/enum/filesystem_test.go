package enum

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// collect enumerates and returns the base names seen, sorted.
func collect(t *testing.T, e Enumerator) []string {
	t.Helper()
	var mu sync.Mutex
	var names []string
	err := e.Enumerate(context.Background(), func(content []byte, src types.Source) error {
		mu.Lock()
		defer mu.Unlock()
		names = append(names, filepath.Base(src.Path))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(names)
	return names
}

func TestFilesystemEnumerator(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"file1.txt":          "hello world",
		"file2.txt":          "test content",
		"subdir/subfile.txt": "nested content",
	})

	var mu sync.Mutex
	var sources []types.Source
	err := NewFilesystemEnumerator(Config{Root: tmpDir}).Enumerate(context.Background(), func(content []byte, src types.Source) error {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, types.ComputeContentID(content), src.ID)
		assert.Equal(t, int64(len(content)), src.Size)
		sources = append(sources, src)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, sources, 3)
}

func TestFilesystemEnumerator_Filters(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"visible.txt":        "visible",
		".hidden.txt":        "hidden",
		".git/config":        "hidden dir",
		"big.txt":            "0123456789abcdef",
		"binary.bin":         "abc\x00def",
		".gitignore":         "ignored.txt\n*.log\n",
		"ignored.txt":        "ignored",
		"debug.log":          "ignored",
		"nested/kept.txt":    "kept",
		"nested/skipped.log": "ignored",
	})

	tests := []struct {
		name   string
		config Config
		want   []string
	}{
		{
			name:   "defaults",
			config: Config{},
			want:   []string{"big.txt", "kept.txt", "visible.txt"},
		},
		{
			name:   "hidden included",
			config: Config{IncludeHidden: true},
			want:   []string{".gitignore", ".hidden.txt", "big.txt", "config", "kept.txt", "visible.txt"},
		},
		{
			name:   "max size",
			config: Config{MaxFileSize: 8},
			want:   []string{"kept.txt", "visible.txt"},
		},
		{
			name:   "single reader",
			config: Config{Readers: 1},
			want:   []string{"big.txt", "kept.txt", "visible.txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Root = tmpDir
			assert.Equal(t, tt.want, collect(t, NewFilesystemEnumerator(tt.config)))
		})
	}
}

func TestFilesystemEnumerator_SingleFileRoot(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{".env": "TOKEN=abc"})

	got := collect(t, NewFilesystemEnumerator(Config{Root: filepath.Join(tmpDir, ".env")}))
	assert.Equal(t, []string{".env"}, got, "an explicit root is never treated as hidden")
}

func TestFilesystemEnumerator_CurrentDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{"secret.txt": "AWS_SECRET_ACCESS_KEY=test"})

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)
	require.NoError(t, os.Chdir(tmpDir))

	assert.Equal(t, []string{"secret.txt"}, collect(t, NewFilesystemEnumerator(Config{Root: "."})))
}

func TestFilesystemEnumerator_MissingRoot(t *testing.T) {
	err := NewFilesystemEnumerator(Config{Root: filepath.Join(t.TempDir(), "absent")}).
		Enumerate(context.Background(), func([]byte, types.Source) error { return nil })
	assert.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{".", false},
		{"..", false},
		{".hidden", true},
		{".git", true},
		{"file.txt", false},
		{"src", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isHidden(tt.filename), tt.filename)
	}
}

func TestIsBinary(t *testing.T) {
	assert.False(t, isBinary([]byte("plain text")))
	assert.True(t, isBinary([]byte{'a', 0, 'b'}))

	late := make([]byte, 9000)
	for i := range late {
		late[i] = 'x'
	}
	late[8500] = 0
	assert.False(t, isBinary(late), "only the first 8KB are inspected")
}

func TestFilesystemEnumerator_ContextCancellation(t *testing.T) {
	tmpDir := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFiles(t, tmpDir, map[string]string{string(rune('a'+i)) + ".txt": "content"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	count := 0
	err := NewFilesystemEnumerator(Config{Root: tmpDir}).Enumerate(ctx, func([]byte, types.Source) error {
		mu.Lock()
		defer mu.Unlock()
		count++
		if count == 3 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
