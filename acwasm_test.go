package acwasm

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/praetorian-inc/acwasm/pkg/host"
	"github.com/praetorian-inc/acwasm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, opts Opts, patterns ...string) *Matcher {
	t.Helper()
	m, err := NewBuilder(opts).Build(context.Background(), patterns)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func collect(t *testing.T, it *Iter) []Match {
	t.Helper()
	var out []Match
	for m, ok := it.Next(); ok; m, ok = it.Next() {
		out = append(out, m)
	}
	require.NoError(t, it.Err())
	return out
}

func TestMatcher_FindAll(t *testing.T) {
	m := build(t, Opts{MatchKind: LeftmostLongestMatch}, "he", "she", "his", "hers")

	matches, err := m.FindAll("ushers")
	require.NoError(t, err)
	assert.Equal(t, []Match{{Pattern: 1, Start: 1, End: 4}}, matches)
	assert.Equal(t, 4, m.PatternCount())
}

func TestMatcher_MatchKinds(t *testing.T) {
	tests := []struct {
		name string
		kind MatchKind
		want []Match
	}{
		{"standard", StandardMatch, []Match{{Pattern: 1, Start: 0, End: 3}}},
		{"leftmost first", LeftmostFirstMatch, []Match{{Pattern: 0, Start: 0, End: 7}}},
		{"leftmost longest", LeftmostLongestMatch, []Match{{Pattern: 0, Start: 0, End: 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := build(t, Opts{MatchKind: tt.kind}, "Samwise", "Sam")
			got, err := m.FindAll("Samwise")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatcher_CaseInsensitive(t *testing.T) {
	m := build(t, Opts{ASCIICaseInsensitive: true}, "abc")

	got, err := m.FindAll("XYZ ABC abc")
	require.NoError(t, err)
	assert.Equal(t, []Match{{Pattern: 0, Start: 4, End: 7}, {Pattern: 0, Start: 8, End: 11}}, got)
}

func TestMatcher_FindN(t *testing.T) {
	m := build(t, Opts{}, "a")

	got, err := m.FindN("aaaa", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = m.FindN("aaaa", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = m.FindN("aaaa", -1)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestMatcher_FindAllNeverOverlaps(t *testing.T) {
	for _, engine := range []Engine{EngineAuto, EngineDeterministic} {
		m := build(t, Opts{Engine: engine}, "aa")

		got, err := m.FindAll("aaaaa")
		require.NoError(t, err)
		assert.Equal(t, []Match{{Pattern: 0, Start: 0, End: 2}, {Pattern: 0, Start: 2, End: 4}}, got, engine)

		all, err := m.FindOverlapping("aaaaa")
		require.NoError(t, err)
		assert.Len(t, all, 4)
		assert.Subset(t, all, got)
	}
}

func TestMatcher_WholeWords(t *testing.T) {
	m := build(t, Opts{MatchOnlyWholeWords: true}, "cat")

	got, err := m.FindAll("cat concat cats cat. 1cat (cat)")
	require.NoError(t, err)
	assert.Equal(t, []Match{
		{Pattern: 0, Start: 0, End: 3},
		{Pattern: 0, Start: 16, End: 19},
		{Pattern: 0, Start: 27, End: 30},
	}, got)

	got, err = m.FindN("concat cat cat", 1)
	require.NoError(t, err)
	assert.Equal(t, []Match{{Pattern: 0, Start: 7, End: 10}}, got, "limit counts only whole words")

	it, err := m.Iter("xcat cat")
	require.NoError(t, err)
	assert.Equal(t, []Match{{Pattern: 0, Start: 5, End: 8}}, collect(t, it))
}

func TestIsWholeWord(t *testing.T) {
	tests := []struct {
		s          string
		start, end int
		want       bool
	}{
		{"cat", 0, 3, true},
		{"a cat b", 2, 5, true},
		{"acat", 1, 4, false},
		{"cat9", 0, 3, false},
		{"_cat_", 1, 4, true},
		{"\xe9cat", 1, 4, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isWholeWord(tt.s, tt.start, tt.end), "%q[%d:%d]", tt.s, tt.start, tt.end)
	}
}

func TestMatcher_Iterators(t *testing.T) {
	m := build(t, Opts{}, "he", "she", "his", "hers")

	it, err := m.IterOverlapping("ushers")
	require.NoError(t, err)
	got := collect(t, it)
	assert.ElementsMatch(t, []Match{
		{Pattern: 1, Start: 1, End: 4},
		{Pattern: 0, Start: 2, End: 4},
		{Pattern: 3, Start: 2, End: 6},
	}, got)

	it, err = m.Iter("ushers")
	require.NoError(t, err)
	first, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, Match{Pattern: 1, Start: 1, End: 4}, first)
	require.NoError(t, it.Close())
	_, ok = it.Next()
	assert.False(t, ok)
	assert.NoError(t, it.Close())
}

func TestMatcher_FindOverlapping(t *testing.T) {
	m := build(t, Opts{}, "he", "she", "his", "hers")

	got, err := m.FindOverlapping("ushers")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = m.FindOverlapping("nothing")
	require.NoError(t, err)
	assert.Empty(t, got)

	leftmost := build(t, Opts{MatchKind: LeftmostFirstMatch}, "a")
	_, err = leftmost.FindOverlapping("aaa")
	assert.ErrorIs(t, err, types.ErrUnsupportedConfiguration)
}

func TestMatcher_IterOverlappingLeftmost(t *testing.T) {
	m := build(t, Opts{MatchKind: LeftmostFirstMatch}, "a")

	_, err := m.IterOverlapping("aaa")
	assert.ErrorIs(t, err, types.ErrUnsupportedConfiguration)
}

func TestMatcher_IterOutlivesClose(t *testing.T) {
	m, err := NewBuilder(Opts{}).Build(context.Background(), []string{"ab"})
	require.NoError(t, err)

	c := host.NewClient(host.NewInProcess(0))
	defer c.Close(context.Background())
	shared, err := NewBuilder(Opts{}, WithClient(c)).Build(context.Background(), []string{"ab"})
	require.NoError(t, err)

	it, err := shared.Iter("abab")
	require.NoError(t, err)
	require.NoError(t, shared.Close())
	assert.Len(t, collect(t, it), 2)

	require.NoError(t, m.Close())
	_, err = m.FindAll("ab")
	assert.ErrorIs(t, err, types.ErrContractViolation)
	assert.NoError(t, m.Close(), "double close is a no-op")
}

func TestMatcher_IsMatch(t *testing.T) {
	m := build(t, Opts{ASCIICaseInsensitive: true}, "needle")

	ok, err := m.IsMatch("haystack with a NEEDLE")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.IsMatch("haystack")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuilder_Errors(t *testing.T) {
	_, err := NewBuilder(Opts{MatchKind: 7}).Build(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, types.ErrUnsupportedConfiguration)

	_, err = NewBuilder(Opts{Engine: EngineDeterministic}).Build(context.Background(), []string{strings.Repeat("x", 70000)})
	assert.ErrorIs(t, err, types.ErrUnsupportedConfiguration)

	_, err = NewBuilder(Opts{}, WithWasm([]byte("not wasm"))).Build(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestBuilder_DFA(t *testing.T) {
	m := build(t, Opts{Engine: EngineDeterministic, MatchKind: LeftmostLongestMatch}, "he", "she", "his", "hers")

	got, err := m.FindAll("ushers")
	require.NoError(t, err)
	assert.Equal(t, []Match{{Pattern: 1, Start: 1, End: 4}}, got)
}

type recordingLogger struct {
	mu    sync.Mutex
	lines int
}

func (r *recordingLogger) Log(string, ...interface{}) {
	r.mu.Lock()
	r.lines++
	r.mu.Unlock()
}

func TestBuilder_WithLogger(t *testing.T) {
	log := &recordingLogger{}
	m, err := NewBuilder(Opts{}, WithLogger(log)).Build(context.Background(), []string{"a"})
	require.NoError(t, err)
	defer m.Close()
	assert.Positive(t, log.lines)
}

func TestMatcher_Concurrent(t *testing.T) {
	m := build(t, Opts{}, "foo", "bar")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := m.FindAll("foo bar foo")
				if assert.NoError(t, err) {
					assert.Len(t, got, 3)
				}
			}
		}()
	}
	wg.Wait()
}

func TestReplacer(t *testing.T) {
	m := build(t, Opts{MatchKind: LeftmostLongestMatch}, "cat", "dog")
	r := NewReplacer(m)

	got, err := r.ReplaceAll("the cat chased the dog", []string{"lion", "wolf"})
	require.NoError(t, err)
	assert.Equal(t, "the lion chased the wolf", got)

	got, err = r.ReplaceAllFunc("cat dog cat", func(m Match) (string, bool) {
		return "X", m.Start < 5
	})
	require.NoError(t, err)
	assert.Equal(t, "X X cat", got)

	got, err = r.ReplaceAll("nothing here", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "nothing here", got)

	_, err = r.ReplaceAll("cat", []string{"a"})
	assert.Error(t, err)
}
