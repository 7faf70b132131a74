// Package decode turns (pointer, length) views into owned byte strings and
// pattern sets.
package decode

import (
	"bytes"
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/memory"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Delimiter separates patterns in the packed encoding.
const Delimiter = 0x00

// View is a borrowed (pointer, length) reference into linear memory. It is
// only valid for the duration of the call that received it.
type View struct {
	Ptr uint32
	Len uint32
}

// Bytes returns the bytes behind v without copying. The result aliases
// linear memory and must not outlive the current call.
func (v View) Bytes(mem memory.Memory) ([]byte, error) {
	if v.Len == 0 {
		return nil, nil
	}
	b, ok := mem.Read(v.Ptr, v.Len)
	if !ok {
		return nil, fmt.Errorf("%w: view [%#x, +%d) outside memory of %d bytes", types.ErrMalformedInput, v.Ptr, v.Len, mem.Size())
	}
	return b, nil
}

// Parallel decodes n patterns stored back to back in data, with their
// lengths given as n little-endian u32 values at lensPtr. Lengths that would
// read past data.Len fail with types.ErrMalformedInput; bytes left over after
// the last pattern are ignored.
func Parallel(mem memory.Memory, data View, lensPtr, n uint32) ([][]byte, error) {
	if n == 0 {
		return [][]byte{}, nil
	}
	lens, err := memory.ReadUint32s(mem, lensPtr, n)
	if err != nil {
		return nil, fmt.Errorf("reading pattern lengths: %w", err)
	}

	var total uint64
	for i, l := range lens {
		total += uint64(l)
		if total > uint64(data.Len) {
			return nil, fmt.Errorf("%w: pattern %d ends at %d, past declared length %d", types.ErrMalformedInput, i, total, data.Len)
		}
	}

	raw, err := data.Bytes(mem)
	if err != nil {
		return nil, err
	}

	patterns := make([][]byte, n)
	off := uint32(0)
	for i, l := range lens {
		patterns[i] = bytes.Clone(raw[off : off+l])
		if patterns[i] == nil {
			patterns[i] = []byte{}
		}
		off += l
	}
	return patterns, nil
}

// Packed decodes zero-terminated patterns from data until its length is
// consumed. Every pattern, including the last, must carry its terminator.
func Packed(mem memory.Memory, data View) ([][]byte, error) {
	raw, err := data.Bytes(mem)
	if err != nil {
		return nil, err
	}
	return SplitPacked(raw)
}

// SplitPacked is the memory-independent half of Packed.
func SplitPacked(raw []byte) ([][]byte, error) {
	patterns := make([][]byte, 0, bytes.Count(raw, []byte{Delimiter}))
	for len(raw) > 0 {
		i := bytes.IndexByte(raw, Delimiter)
		if i < 0 {
			return nil, fmt.Errorf("%w: pattern %d missing terminator before end of input", types.ErrMalformedInput, len(patterns))
		}
		patterns = append(patterns, append([]byte{}, raw[:i]...))
		raw = raw[i+1:]
	}
	return patterns, nil
}

// EncodeParallel concatenates patterns and returns their lengths, the inverse
// of Parallel.
func EncodeParallel(patterns [][]byte) ([]byte, []uint32) {
	size := 0
	for _, p := range patterns {
		size += len(p)
	}
	buf := make([]byte, 0, size)
	lens := make([]uint32, len(patterns))
	for i, p := range patterns {
		buf = append(buf, p...)
		lens[i] = uint32(len(p))
	}
	return buf, lens
}

// EncodePacked joins patterns with terminators, the inverse of Packed.
// A pattern containing the delimiter cannot be represented.
func EncodePacked(patterns [][]byte) ([]byte, error) {
	size := 0
	for i, p := range patterns {
		if bytes.IndexByte(p, Delimiter) >= 0 {
			return nil, fmt.Errorf("%w: pattern %d contains the delimiter byte", types.ErrMalformedInput, i)
		}
		size += len(p) + 1
	}
	buf := make([]byte, 0, size)
	for _, p := range patterns {
		buf = append(buf, p...)
		buf = append(buf, Delimiter)
	}
	return buf, nil
}
