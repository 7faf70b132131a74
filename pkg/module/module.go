// Package module implements the boundary operations of the matcher module.
//
// Every operation takes and returns u32 values. Composite inputs arrive as
// (pointer, length) views into linear memory; long-lived objects are handed
// out as opaque handles that the host must destroy explicitly. Recoverable
// failures return zero and are described by LastError and LastErrorMessage.
// Running out of linear memory is fatal and panics.
package module

import (
	"fmt"
	"sync"

	"github.com/praetorian-inc/acwasm/pkg/automaton"
	"github.com/praetorian-inc/acwasm/pkg/cursor"
	"github.com/praetorian-inc/acwasm/pkg/handle"
	"github.com/praetorian-inc/acwasm/pkg/memory"
	"github.com/praetorian-inc/acwasm/pkg/prefilter"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Unlimited as a find_matches limit returns every match.
const Unlimited = ^uint32(0)

// matcher is the object behind a matcher handle.
type matcher struct {
	auto     automaton.Automaton
	patterns [][]byte
	pre      *prefilter.Prefilter
}

// Module owns every handle and match buffer handed to one host.
type Module struct {
	mem    memory.Linear
	logger DebugLogger

	matchers    *handle.Registry[*matcher]
	sequential  *handle.Registry[*cursor.Cursor]
	overlapping *handle.Registry[*cursor.Cursor]

	bufMu   sync.Mutex
	buffers map[uint32]uint32 // match buffer address -> record count

	errMu      sync.Mutex
	lastStatus types.Status
	lastMsg    string
}

// Option configures a Module.
type Option func(*Module)

// WithLogger sets the logger for failed calls.
func WithLogger(l DebugLogger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// New returns a module operating on mem.
func New(mem memory.Linear, opts ...Option) *Module {
	m := &Module{
		mem:         mem,
		logger:      NoopLogger{},
		matchers:    handle.NewRegistry[*matcher](handle.KindMatcher),
		sequential:  handle.NewRegistry[*cursor.Cursor](handle.KindSequential),
		overlapping: handle.NewRegistry[*cursor.Cursor](handle.KindOverlapping),
		buffers:     make(map[uint32]uint32),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Memory returns the linear memory the module reads and writes.
func (m *Module) Memory() memory.Linear { return m.mem }

// Stats counts live module objects.
type Stats struct {
	Matchers             int
	SequentialIterators  int
	OverlappingIterators int
	MatchBuffers         int
}

// Stats returns the number of live handles and match buffers.
func (m *Module) Stats() Stats {
	m.bufMu.Lock()
	buffers := len(m.buffers)
	m.bufMu.Unlock()
	return Stats{
		Matchers:             m.matchers.Len(),
		SequentialIterators:  m.sequential.Len(),
		OverlappingIterators: m.overlapping.Len(),
		MatchBuffers:         buffers,
	}
}

// begin clears the error channel. Every operation except the error
// accessors starts with it, so LastError always describes the latest call.
func (m *Module) begin() {
	m.errMu.Lock()
	m.lastStatus = types.StatusOK
	m.lastMsg = ""
	m.errMu.Unlock()
}

// fail records err as the outcome of op. ResourceExhausted is not
// recoverable and panics.
func (m *Module) fail(op string, err error) {
	status := types.StatusOf(err)
	m.logger.Log("%s failed: %v", op, err)
	if status == types.StatusResourceExhausted {
		panic(fmt.Errorf("%s: %w", op, err))
	}
	m.errMu.Lock()
	m.lastStatus = status
	m.lastMsg = fmt.Sprintf("%s: %v", op, err)
	m.errMu.Unlock()
}

// LastError returns the status of the most recent operation.
func (m *Module) LastError() uint32 {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return uint32(m.lastStatus)
}

// LastErrorMessage copies the message of the most recent failure into the
// host buffer at bufPtr, truncated to bufCap bytes, and returns the number of
// bytes written. With bufCap zero it returns the full message length.
func (m *Module) LastErrorMessage(bufPtr, bufCap uint32) uint32 {
	m.errMu.Lock()
	msg := m.lastMsg
	m.errMu.Unlock()

	if bufCap == 0 {
		return uint32(len(msg))
	}
	n := uint32(len(msg))
	if n > bufCap {
		n = bufCap
	}
	if n == 0 || !m.mem.Write(bufPtr, []byte(msg[:n])) {
		return 0
	}
	return n
}

// Malloc allocates size bytes of linear memory for host-written input.
func (m *Module) Malloc(size uint32) uint32 {
	m.begin()
	ptr, err := m.mem.Malloc(size)
	if err != nil {
		m.fail("malloc", err)
		return 0
	}
	return ptr
}

// Free releases memory returned by Malloc. Match buffers must go through
// DestroyMatchBuffer instead.
func (m *Module) Free(ptr uint32) {
	m.begin()
	if ptr == 0 {
		return
	}
	m.bufMu.Lock()
	_, isBuffer := m.buffers[ptr]
	m.bufMu.Unlock()
	if isBuffer {
		m.fail("free", fmt.Errorf("%w: %#x is a match buffer", types.ErrContractViolation, ptr))
		return
	}
	if err := m.mem.Free(ptr); err != nil {
		m.fail("free", err)
	}
}
