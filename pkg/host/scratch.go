package host

import (
	"context"
	"fmt"
)

// scratch is a host-managed block of module memory reused across calls.
// Each operation reserves the bytes it needs up front and then carves
// them out with allocate; the block only grows.
type scratch struct {
	ptr  uint32
	size uint32
	next uint32
}

func (s *scratch) reserve(ctx context.Context, t Transport, size uint32) error {
	s.next = 0
	if s.size >= size {
		return nil
	}
	if s.ptr != 0 {
		if _, err := t.Call(ctx, "free", uint64(s.ptr)); err != nil {
			return err
		}
		s.ptr, s.size = 0, 0
	}
	res, err := t.Call(ctx, "malloc", uint64(size))
	if err != nil {
		return err
	}
	if res[0] == 0 {
		return fmt.Errorf("malloc(%d) returned null", size)
	}
	s.ptr = uint32(res[0])
	s.size = size
	return nil
}

// allocate returns the next size bytes of the reservation, 4-byte aligned.
func (s *scratch) allocate(size uint32) uint32 {
	s.next = (s.next + 3) &^ 3
	if s.next+size > s.size {
		panic(fmt.Sprintf("scratch overrun: %d+%d bytes of %d reserved", s.next, size, s.size))
	}
	ptr := s.ptr + s.next
	s.next += size
	return ptr
}

// remaining returns how many aligned bytes allocate can still hand out.
func (s *scratch) remaining() uint32 {
	next := (s.next + 3) &^ 3
	if next >= s.size {
		return 0
	}
	return s.size - next
}

// release frees the block.
func (s *scratch) release(ctx context.Context, t Transport) error {
	if s.ptr == 0 {
		return nil
	}
	_, err := t.Call(ctx, "free", uint64(s.ptr))
	s.ptr, s.size, s.next = 0, 0, 0
	return err
}

// padded returns the reservation needed for allocations of the given sizes.
func padded(sizes ...int) uint32 {
	var total uint32
	for _, n := range sizes {
		total += (uint32(n) + 3) &^ 3
	}
	return total
}
