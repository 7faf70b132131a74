// Package memory models the flat, byte-addressable region shared by the
// module and its host.
//
// Memory mirrors the subset of wazero's api.Memory the boundary needs, so a
// wazero module memory can be passed wherever a Memory is expected.
package memory

import (
	"encoding/binary"
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// WordSize is the size of the u32 values exchanged across the boundary.
const WordSize = 4

// Memory is a view over linear memory. Slices returned by Read alias the
// region and are invalidated by any allocation that grows it.
type Memory interface {
	// Size returns the current size of the region in bytes.
	Size() uint32
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	ReadUint32Le(offset uint32) (uint32, bool)
	WriteUint32Le(offset, v uint32) bool
}

// Allocator hands out and reclaims blocks of linear memory. Address zero is
// never returned for a successful allocation.
type Allocator interface {
	Malloc(size uint32) (uint32, error)
	Free(offset uint32) error
}

// Linear is a region the module can both address and allocate from.
type Linear interface {
	Memory
	Allocator
}

// InBounds reports whether [offset, offset+length) lies inside mem without
// overflowing the 32-bit address space.
func InBounds(mem Memory, offset, length uint32) bool {
	end := uint64(offset) + uint64(length)
	return end <= uint64(mem.Size())
}

// ReadUint32s reads n consecutive little-endian words starting at offset.
func ReadUint32s(mem Memory, offset, n uint32) ([]uint32, error) {
	byteCount := uint64(n) * WordSize
	if byteCount > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: %d words at %#x", types.ErrMalformedInput, n, offset)
	}
	buf, ok := mem.Read(offset, uint32(byteCount))
	if !ok {
		return nil, fmt.Errorf("%w: %d words at %#x out of range", types.ErrMalformedInput, n, offset)
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[i*WordSize:])
	}
	return out, nil
}

// PutMatches encodes matches as consecutive 12-byte records into dst, which
// must hold at least len(matches)*types.MatchRecordSize bytes.
func PutMatches(dst []byte, matches []types.Match) {
	for i, m := range matches {
		rec := dst[i*types.MatchRecordSize:]
		binary.LittleEndian.PutUint32(rec[0:], uint32(m.Pattern))
		binary.LittleEndian.PutUint32(rec[4:], uint32(m.Start))
		binary.LittleEndian.PutUint32(rec[8:], uint32(m.End))
	}
}

// DecodeMatches decodes consecutive 12-byte records.
func DecodeMatches(src []byte) []types.Match {
	n := len(src) / types.MatchRecordSize
	out := make([]types.Match, n)
	for i := range out {
		rec := src[i*types.MatchRecordSize:]
		out[i] = types.Match{
			Pattern: int(binary.LittleEndian.Uint32(rec[0:])),
			Start:   int(binary.LittleEndian.Uint32(rec[4:])),
			End:     int(binary.LittleEndian.Uint32(rec[8:])),
		}
	}
	return out
}
