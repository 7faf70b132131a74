package memory

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

const (
	arenaAlign       = 8
	arenaBase        = 8 // keeps address 0 free to mean null
	initialArenaSize = 64 << 10

	// DefaultArenaLimit caps an Arena at 1 GiB.
	DefaultArenaLimit = 1 << 30
)

// Arena is an in-process linear memory with its own allocator. It plays the
// role of a wasm module's memory when the module runs inside the host
// process, and is what the tests drive the boundary through.
//
// Freed blocks are recycled by exact size class; the region only grows.
type Arena struct {
	mu    sync.Mutex
	buf   []byte
	limit uint32
	top   uint32
	live  map[uint32]uint32   // block offset -> rounded block size
	free  map[uint32][]uint32 // rounded block size -> reusable offsets
}

// NewArena creates an Arena that never grows beyond limit bytes. A zero limit
// selects DefaultArenaLimit.
func NewArena(limit uint32) *Arena {
	if limit == 0 {
		limit = DefaultArenaLimit
	}
	size := uint32(initialArenaSize)
	if size > limit {
		size = limit
	}
	return &Arena{
		buf:   make([]byte, size),
		limit: limit,
		top:   arenaBase,
		live:  make(map[uint32]uint32),
		free:  make(map[uint32][]uint32),
	}
}

// Size returns the current size of the region.
func (a *Arena) Size() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return uint32(len(a.buf))
}

func (a *Arena) Read(offset, byteCount uint32) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(a.buf)) {
		return nil, false
	}
	return a.buf[offset:end:end], true
}

func (a *Arena) Write(offset uint32, v []byte) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	end := uint64(offset) + uint64(len(v))
	if end > uint64(len(a.buf)) {
		return false
	}
	copy(a.buf[offset:], v)
	return true
}

func (a *Arena) ReadUint32Le(offset uint32) (uint32, bool) {
	b, ok := a.Read(offset, WordSize)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (a *Arena) WriteUint32Le(offset, v uint32) bool {
	var b [WordSize]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return a.Write(offset, b[:])
}

// Malloc returns a zeroed block of at least size bytes. It fails with
// types.ErrResourceExhausted when the arena limit would be exceeded.
func (a *Arena) Malloc(size uint32) (uint32, error) {
	rounded := (uint64(size) + arenaAlign - 1) &^ (arenaAlign - 1)
	if rounded == 0 {
		rounded = arenaAlign
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if rounded <= uint64(a.limit) {
		bucket := uint32(rounded)
		if offs := a.free[bucket]; len(offs) > 0 {
			off := offs[len(offs)-1]
			a.free[bucket] = offs[:len(offs)-1]
			clear(a.buf[off : off+bucket])
			a.live[off] = bucket
			return off, nil
		}
	}

	end := uint64(a.top) + rounded
	if end > uint64(a.limit) {
		return 0, fmt.Errorf("%w: arena limit %d bytes reached allocating %d bytes", types.ErrResourceExhausted, a.limit, size)
	}
	if end > uint64(len(a.buf)) {
		a.grow(end)
	}

	off := a.top
	a.top = uint32(end)
	a.live[off] = uint32(rounded)
	return off, nil
}

// grow doubles the region until it holds need bytes, capped at the limit.
// Caller holds a.mu.
func (a *Arena) grow(need uint64) {
	size := uint64(len(a.buf))
	for size < need {
		size *= 2
	}
	if size > uint64(a.limit) {
		size = uint64(a.limit)
	}
	buf := make([]byte, size)
	copy(buf, a.buf)
	a.buf = buf
}

// Free releases a block returned by Malloc. Freeing address zero is a no-op;
// freeing anything else that is not a live block is a contract violation.
func (a *Arena) Free(offset uint32) error {
	if offset == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	size, ok := a.live[offset]
	if !ok {
		return fmt.Errorf("%w: free of unknown block %#x", types.ErrContractViolation, offset)
	}
	delete(a.live, offset)
	a.free[size] = append(a.free[size], offset)
	return nil
}

// Live returns the number of blocks currently allocated.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}
