package enum

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

type mockEnumerator struct {
	paths []string
	err   error
}

func (m *mockEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	for _, p := range m.paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		content := []byte(p)
		if err := callback(content, types.Source{ID: types.ComputeContentID(content), Path: p, Size: int64(len(content))}); err != nil {
			return err
		}
	}
	return m.err
}

func TestCombinedEnumerator_Empty(t *testing.T) {
	called := false
	err := NewCombinedEnumerator().Enumerate(context.Background(), func([]byte, types.Source) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestCombinedEnumerator_DeduplicatesByPath(t *testing.T) {
	c := NewCombinedEnumerator(
		&mockEnumerator{paths: []string{"a.txt", "dir/b.txt"}},
		&mockEnumerator{paths: []string{"dir/../a.txt", "c.txt", "dir/b.txt"}},
	)

	var got []string
	err := c.Enumerate(context.Background(), func(content []byte, src types.Source) error {
		got = append(got, src.Path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "dir/b.txt", "c.txt"}, got)
}

func TestCombinedEnumerator_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewCombinedEnumerator(
		&mockEnumerator{paths: []string{"a"}, err: boom},
		&mockEnumerator{paths: []string{"b"}},
	)

	var got []string
	err := c.Enumerate(context.Background(), func(content []byte, src types.Source) error {
		got = append(got, src.Path)
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, got)

	err = NewCombinedEnumerator(&mockEnumerator{paths: []string{"x"}}).Enumerate(context.Background(),
		func([]byte, types.Source) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestForPaths(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"one/a.txt": "a",
		"two/b.txt": "b",
	})

	c := ForPaths(Config{},
		filepath.Join(tmpDir, "one"),
		filepath.Join(tmpDir, "two"),
		tmpDir,
	)
	assert.Equal(t, []string{"a.txt", "b.txt"}, collect(t, c))
}
