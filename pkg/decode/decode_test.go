package decode

import (
	"testing"

	"github.com/praetorian-inc/acwasm/pkg/memory"
	"github.com/praetorian-inc/acwasm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// place copies b into freshly allocated arena memory.
func place(t *testing.T, a *memory.Arena, b []byte) View {
	t.Helper()
	ptr, err := a.Malloc(uint32(len(b)))
	require.NoError(t, err)
	require.True(t, a.Write(ptr, b))
	return View{Ptr: ptr, Len: uint32(len(b))}
}

func placeLens(t *testing.T, a *memory.Arena, lens []uint32) uint32 {
	t.Helper()
	ptr, err := a.Malloc(uint32(len(lens)) * memory.WordSize)
	require.NoError(t, err)
	for i, l := range lens {
		require.True(t, a.WriteUint32Le(ptr+uint32(i)*memory.WordSize, l))
	}
	return ptr
}

func TestParallel(t *testing.T) {
	a := memory.NewArena(0)
	data := place(t, a, []byte("heshehishers"))
	lens := placeLens(t, a, []uint32{2, 3, 3, 4})

	got, err := Parallel(a, data, lens, 4)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("he"), []byte("she"), []byte("his"), []byte("hers")}, got)
}

func TestParallel_OwnsCopies(t *testing.T) {
	a := memory.NewArena(0)
	data := place(t, a, []byte("abcd"))
	lens := placeLens(t, a, []uint32{4})

	got, err := Parallel(a, data, lens, 1)
	require.NoError(t, err)

	require.True(t, a.Write(data.Ptr, []byte("zzzz")))
	assert.Equal(t, "abcd", string(got[0]), "decoded patterns must not alias linear memory")
}

func TestParallel_Errors(t *testing.T) {
	a := memory.NewArena(0)
	data := place(t, a, []byte("abcdef"))

	tests := []struct {
		name string
		lens []uint32
	}{
		{name: "overrun", lens: []uint32{3, 4}},
		{name: "single overrun", lens: []uint32{7}},
		{name: "sum overflow", lens: []uint32{^uint32(0), 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lens := placeLens(t, a, tt.lens)
			_, err := Parallel(a, data, lens, uint32(len(tt.lens)))
			assert.ErrorIs(t, err, types.ErrMalformedInput)
		})
	}

	t.Run("lengths outside memory", func(t *testing.T) {
		_, err := Parallel(a, data, a.Size()-2, 1)
		assert.ErrorIs(t, err, types.ErrMalformedInput)
	})

	t.Run("data outside memory", func(t *testing.T) {
		lens := placeLens(t, a, []uint32{1})
		_, err := Parallel(a, View{Ptr: a.Size() - 1, Len: 8}, lens, 1)
		assert.ErrorIs(t, err, types.ErrMalformedInput)
	})
}

func TestParallel_TrailingBytesIgnored(t *testing.T) {
	a := memory.NewArena(0)
	data := place(t, a, []byte("abcXYZ"))
	lens := placeLens(t, a, []uint32{1, 2})

	got, err := Parallel(a, data, lens, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("bc")}, got)
}

func TestParallel_Empty(t *testing.T) {
	a := memory.NewArena(0)
	got, err := Parallel(a, View{}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	lens := placeLens(t, a, []uint32{0, 0})
	got, err = Parallel(a, View{}, lens, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{}, {}}, got)
}

func TestPacked(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "single", input: "abc\x00", want: []string{"abc"}},
		{name: "several", input: "he\x00she\x00his\x00hers\x00", want: []string{"he", "she", "his", "hers"}},
		{name: "empty pattern", input: "a\x00\x00b\x00", want: []string{"a", "", "b"}},
		{name: "missing terminator", input: "a\x00b", wantErr: true},
		{name: "no terminator at all", input: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := memory.NewArena(0)
			view := View{}
			if tt.input != "" {
				view = place(t, a, []byte(tt.input))
			}
			got, err := Packed(a, view)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrMalformedInput)
				return
			}
			require.NoError(t, err)
			want := make([][]byte, len(tt.want))
			for i, w := range tt.want {
				want[i] = []byte(w)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestEncodingsAgree(t *testing.T) {
	patterns := [][]byte{[]byte("he"), []byte("she"), {}, []byte("hers")}
	a := memory.NewArena(0)

	buf, lens := EncodeParallel(patterns)
	viaParallel, err := Parallel(a, place(t, a, buf), placeLens(t, a, lens), uint32(len(lens)))
	require.NoError(t, err)

	packed, err := EncodePacked(patterns)
	require.NoError(t, err)
	viaPacked, err := Packed(a, place(t, a, packed))
	require.NoError(t, err)

	assert.Equal(t, viaParallel, viaPacked)
	assert.Equal(t, patterns, viaParallel)
}

func TestEncodePacked_RejectsDelimiter(t *testing.T) {
	_, err := EncodePacked([][]byte{[]byte("a\x00b")})
	assert.ErrorIs(t, err, types.ErrMalformedInput)
}
