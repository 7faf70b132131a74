package module

import (
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/cursor"
	"github.com/praetorian-inc/acwasm/pkg/decode"
	"github.com/praetorian-inc/acwasm/pkg/handle"
	"github.com/praetorian-inc/acwasm/pkg/memory"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// OpenSequentialIterator copies the text and returns an iterator over its
// non-overlapping matches.
func (m *Module) OpenSequentialIterator(matcher, textPtr, textLen uint32) uint32 {
	m.begin()
	return m.openIterator("open_sequential_iterator", m.sequential, cursor.Sequential, matcher, textPtr, textLen)
}

// SequentialIteratorNext writes the next match to the three output slots
// and returns 1, or returns 0 once the text is exhausted.
func (m *Module) SequentialIteratorNext(iter, patternOut, startOut, endOut uint32) uint32 {
	m.begin()
	return m.next("sequential_iterator_next", m.sequential, iter, patternOut, startOut, endOut)
}

// CloseSequentialIterator releases a sequential iterator.
func (m *Module) CloseSequentialIterator(iter uint32) {
	m.begin()
	m.closeIterator("close_sequential_iterator", m.sequential, iter)
}

// OpenOverlappingIterator copies the text and returns an iterator over all
// of its matches. The matcher must use the standard match kind.
func (m *Module) OpenOverlappingIterator(matcher, textPtr, textLen uint32) uint32 {
	m.begin()
	return m.openIterator("open_overlapping_iterator", m.overlapping, cursor.Overlapping, matcher, textPtr, textLen)
}

// OverlappingIteratorNext is SequentialIteratorNext for overlapping
// iterators.
func (m *Module) OverlappingIteratorNext(iter, patternOut, startOut, endOut uint32) uint32 {
	m.begin()
	return m.next("overlapping_iterator_next", m.overlapping, iter, patternOut, startOut, endOut)
}

// CloseOverlappingIterator releases an overlapping iterator.
func (m *Module) CloseOverlappingIterator(iter uint32) {
	m.begin()
	m.closeIterator("close_overlapping_iterator", m.overlapping, iter)
}

func (m *Module) openIterator(op string, reg *handle.Registry[*cursor.Cursor], t cursor.Traversal, matcherHandle, textPtr, textLen uint32) uint32 {
	mt, ok := m.lookupMatcher(op, matcherHandle)
	if !ok {
		return 0
	}
	text, err := decode.View{Ptr: textPtr, Len: textLen}.Bytes(m.mem)
	if err != nil {
		m.fail(op, err)
		return 0
	}

	// string(text) is the cursor's private copy.
	c, err := cursor.Open(mt.auto, string(text), t)
	if err != nil {
		m.fail(op, err)
		return 0
	}
	h, err := reg.Insert(c)
	if err != nil {
		c.Close()
		m.fail(op, err)
		return 0
	}
	return uint32(h)
}

func (m *Module) next(op string, reg *handle.Registry[*cursor.Cursor], iter, patternOut, startOut, endOut uint32) uint32 {
	c, err := reg.Get(handle.Handle(iter))
	if err != nil {
		m.fail(op, err)
		return 0
	}
	for _, out := range [...]uint32{patternOut, startOut, endOut} {
		if !memory.InBounds(m.mem, out, memory.WordSize) {
			m.fail(op, fmt.Errorf("%w: output slot %#x outside memory", types.ErrMalformedInput, out))
			return 0
		}
	}

	match, ok := c.Advance()
	if !ok {
		return 0
	}
	m.mem.WriteUint32Le(patternOut, uint32(match.Pattern))
	m.mem.WriteUint32Le(startOut, uint32(match.Start))
	m.mem.WriteUint32Le(endOut, uint32(match.End))
	return 1
}

func (m *Module) closeIterator(op string, reg *handle.Registry[*cursor.Cursor], iter uint32) {
	c, err := reg.Remove(handle.Handle(iter))
	if err != nil {
		m.fail(op, err)
		return
	}
	m.logger.Log("%s: %s iterator %s closed after %d matches", op, c.Traversal().Name(), handle.Handle(iter), c.Emitted())
	c.Close()
}
