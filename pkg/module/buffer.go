package module

import (
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/automaton"
	"github.com/praetorian-inc/acwasm/pkg/decode"
	"github.com/praetorian-inc/acwasm/pkg/memory"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// FindMatches collects up to limit non-overlapping matches into a buffer of
// 12-byte records, writes the record count to countOut and returns the
// buffer address. No matches, or a limit of zero, return zero with a count
// of zero. The buffer must be released with DestroyMatchBuffer.
func (m *Module) FindMatches(matcherHandle, textPtr, textLen, limit, countOut uint32) uint32 {
	const op = "find_matches"
	m.begin()

	mt, ok := m.lookupMatcher(op, matcherHandle)
	if !ok {
		return 0
	}
	if !memory.InBounds(m.mem, countOut, memory.WordSize) {
		m.fail(op, fmt.Errorf("%w: count slot %#x outside memory", types.ErrMalformedInput, countOut))
		return 0
	}
	text, err := decode.View{Ptr: textPtr, Len: textLen}.Bytes(m.mem)
	if err != nil {
		m.fail(op, err)
		return 0
	}

	m.mem.WriteUint32Le(countOut, 0)
	if limit == 0 {
		return 0
	}

	it, err := mt.auto.FindIter(string(text))
	if err != nil {
		m.fail(op, err)
		return 0
	}
	n := -1
	if limit != Unlimited {
		n = int(limit)
	}
	matches := automaton.Collect(it, n)
	if len(matches) == 0 {
		return 0
	}

	size := uint64(len(matches)) * types.MatchRecordSize
	if size > uint64(^uint32(0)) {
		m.fail(op, fmt.Errorf("%w: %d match records do not fit in linear memory", types.ErrResourceExhausted, len(matches)))
		return 0
	}
	records := make([]byte, size)
	memory.PutMatches(records, matches)

	ptr, err := m.mem.Malloc(uint32(size))
	if err != nil {
		m.fail(op, err)
		return 0
	}
	m.mem.Write(ptr, records)

	count := uint32(len(matches))
	m.bufMu.Lock()
	m.buffers[ptr] = count
	m.bufMu.Unlock()

	m.mem.WriteUint32Le(countOut, count)
	return ptr
}

// DestroyMatchBuffer frees a buffer returned by FindMatches. The count must
// be the one FindMatches reported. (0, 0) is a no-op.
func (m *Module) DestroyMatchBuffer(ptr, count uint32) {
	const op = "destroy_match_buffer"
	m.begin()
	if ptr == 0 && count == 0 {
		return
	}

	m.bufMu.Lock()
	want, ok := m.buffers[ptr]
	if ok && want == count {
		delete(m.buffers, ptr)
	}
	m.bufMu.Unlock()

	switch {
	case !ok:
		m.fail(op, fmt.Errorf("%w: %#x is not a match buffer", types.ErrContractViolation, ptr))
	case want != count:
		m.fail(op, fmt.Errorf("%w: match buffer %#x holds %d records, not %d", types.ErrContractViolation, ptr, want, count))
	default:
		if err := m.mem.Free(ptr); err != nil {
			m.fail(op, err)
		}
	}
}
