// Package handle maps opaque 32-bit handles to module-owned objects.
//
// A handle packs the object kind, a generation counter and a slot index:
//
//	bits 31-30  kind
//	bits 29-22  generation
//	bits 21-0   slot
//
// Removing an entry bumps its slot's generation, so a handle kept after
// destruction no longer resolves. A slot whose generation would wrap is
// retired instead of reused, so no handle value is ever issued twice by one
// registry.
package handle

import (
	"fmt"
	"sync"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Kind tags which registry a handle belongs to.
type Kind uint8

const (
	KindMatcher     Kind = 1
	KindSequential  Kind = 2
	KindOverlapping Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindMatcher:
		return "matcher"
	case KindSequential:
		return "sequential iterator"
	case KindOverlapping:
		return "overlapping iterator"
	default:
		return fmt.Sprintf("kind %d", uint8(k))
	}
}

const (
	slotBits = 22
	genBits  = 8
	slotMask = 1<<slotBits - 1
	genMask  = 1<<genBits - 1

	// MaxLive is the number of live entries one registry can hold.
	MaxLive = slotMask + 1
)

// Handle is an opaque reference handed across the boundary. The zero
// Handle never refers to anything.
type Handle uint32

func encode(kind Kind, gen uint8, slot uint32) Handle {
	return Handle(uint32(kind)<<(slotBits+genBits) | uint32(gen)<<slotBits | slot)
}

// Kind returns the kind tag.
func (h Handle) Kind() Kind { return Kind(uint32(h) >> (slotBits + genBits)) }

// Generation returns the generation tag.
func (h Handle) Generation() uint8 { return uint8(uint32(h) >> slotBits & genMask) }

// Slot returns the slot index.
func (h Handle) Slot() uint32 { return uint32(h) & slotMask }

func (h Handle) String() string { return fmt.Sprintf("%#08x", uint32(h)) }

type entry[T any] struct {
	value T
	gen   uint8
	used  bool
}

// Registry owns the objects of one kind. It is safe for concurrent use;
// callers still serialize destruction against use of the same handle.
type Registry[T any] struct {
	mu    sync.RWMutex
	kind  Kind
	slots []entry[T]
	free  []uint32
	live  int
	// retired counts slots that used up every generation.
	retired int
}

// NewRegistry returns an empty registry issuing handles of the given kind.
func NewRegistry[T any](kind Kind) *Registry[T] {
	return &Registry[T]{kind: kind}
}

// Insert stores v and returns its handle.
func (r *Registry[T]) Insert(v T) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var slot uint32
	if n := len(r.free); n > 0 {
		slot = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		if len(r.slots) >= MaxLive {
			return 0, fmt.Errorf("%w: %s registry full (%d live, %d retired slots)", types.ErrResourceExhausted, r.kind, r.live, r.retired)
		}
		r.slots = append(r.slots, entry[T]{})
		slot = uint32(len(r.slots) - 1)
	}

	e := &r.slots[slot]
	e.value = v
	e.used = true
	r.live++
	return encode(r.kind, e.gen, slot), nil
}

// lookup resolves h. Caller holds r.mu.
func (r *Registry[T]) lookup(h Handle) (*entry[T], error) {
	if h == 0 {
		return nil, fmt.Errorf("%w: null %s handle", types.ErrContractViolation, r.kind)
	}
	if h.Kind() != r.kind {
		return nil, fmt.Errorf("%w: handle %s is a %s handle, want %s", types.ErrContractViolation, h, h.Kind(), r.kind)
	}
	slot := h.Slot()
	if slot >= uint32(len(r.slots)) {
		return nil, fmt.Errorf("%w: unknown %s handle %s", types.ErrContractViolation, r.kind, h)
	}
	e := &r.slots[slot]
	if !e.used || e.gen != h.Generation() {
		return nil, fmt.Errorf("%w: stale %s handle %s", types.ErrContractViolation, r.kind, h)
	}
	return e, nil
}

// Get returns the object behind h.
func (r *Registry[T]) Get(h Handle) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, err := r.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return e.value, nil
}

// Remove deletes h and returns the object it referred to. Any later use of
// h fails with types.ErrContractViolation.
func (r *Registry[T]) Remove(h Handle) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	e, err := r.lookup(h)
	if err != nil {
		return zero, err
	}
	v := e.value
	e.value = zero
	e.used = false
	r.live--
	if e.gen == genMask {
		r.retired++
		return v, nil
	}
	e.gen++
	r.free = append(r.free, h.Slot())
	return v, nil
}

// Len returns the number of live entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live
}
