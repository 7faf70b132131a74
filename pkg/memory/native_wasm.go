//go:build wasip1

package memory

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Native is the module's own linear memory when compiled for wasip1.
// Offsets are real addresses. Blocks handed to the host are Go slices kept
// reachable in pinned until freed, since the collector cannot see references
// held by the host.
type Native struct {
	mu     sync.Mutex
	pinned map[uint32][]byte
}

// NewNative returns a Native memory.
func NewNative() *Native {
	return &Native{pinned: make(map[uint32][]byte)}
}

// Size reports the whole 32-bit address space. Accesses past the grown
// memory trap in the engine.
func (n *Native) Size() uint32 {
	return ^uint32(0)
}

func (n *Native) Read(offset, byteCount uint32) ([]byte, bool) {
	if byteCount == 0 {
		return []byte{}, true
	}
	if !InBounds(n, offset, byteCount) {
		return nil, false
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(offset))), byteCount), true
}

func (n *Native) Write(offset uint32, v []byte) bool {
	dst, ok := n.Read(offset, uint32(len(v)))
	if !ok {
		return false
	}
	copy(dst, v)
	return true
}

func (n *Native) ReadUint32Le(offset uint32) (uint32, bool) {
	b, ok := n.Read(offset, WordSize)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (n *Native) WriteUint32Le(offset, v uint32) bool {
	b, ok := n.Read(offset, WordSize)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint32(b, v)
	return true
}

func (n *Native) Malloc(size uint32) (uint32, error) {
	if size == 0 {
		size = 1
	}
	b := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&b[0])))
	n.mu.Lock()
	n.pinned[ptr] = b
	n.mu.Unlock()
	return ptr, nil
}

func (n *Native) Free(offset uint32) error {
	if offset == 0 {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.pinned[offset]; !ok {
		return fmt.Errorf("%w: free of unknown block %#x", types.ErrContractViolation, offset)
	}
	delete(n.pinned, offset)
	return nil
}
