// Package cursor walks the matches of one automaton over one text.
//
// Sequential and overlapping iteration share the same cursor; they differ
// only in the Traversal used to open it.
package cursor

import (
	"sync"

	"github.com/praetorian-inc/acwasm/pkg/automaton"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Traversal opens a match iterator over text.
type Traversal interface {
	Name() string
	Open(a automaton.Automaton, text string) (automaton.Iterator, error)
}

type traversal struct {
	name string
	open func(automaton.Automaton, string) (automaton.Iterator, error)
}

func (t traversal) Name() string { return t.name }

func (t traversal) Open(a automaton.Automaton, text string) (automaton.Iterator, error) {
	return t.open(a, text)
}

var (
	// Sequential yields non-overlapping matches in increasing start order.
	Sequential Traversal = traversal{name: "sequential", open: automaton.Automaton.FindIter}

	// Overlapping yields every match in non-decreasing end order.
	Overlapping Traversal = traversal{name: "overlapping", open: automaton.Automaton.FindOverlappingIter}
)

// Cursor is the state behind an iterator handle. It keeps its automaton and
// its own copy of the text alive for as long as it is open.
type Cursor struct {
	mu        sync.Mutex
	traversal Traversal
	owner     automaton.Automaton
	text      string
	it        automaton.Iterator
	emitted   int
	done      bool
}

// Open positions a new cursor at the start of text. The caller hands over
// ownership of text; it is never read from linear memory again.
func Open(a automaton.Automaton, text string, t Traversal) (*Cursor, error) {
	it, err := t.Open(a, text)
	if err != nil {
		return nil, err
	}
	return &Cursor{
		traversal: t,
		owner:     a,
		text:      text,
		it:        it,
	}, nil
}

// Advance returns the next match. Once it returns false it keeps returning
// false.
func (c *Cursor) Advance() (types.Match, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return types.Match{}, false
	}
	m, ok := c.it.Next()
	if !ok {
		c.done = true
		return types.Match{}, false
	}
	c.emitted++
	return m, true
}

// Traversal returns the strategy the cursor was opened with.
func (c *Cursor) Traversal() Traversal { return c.traversal }

// Emitted returns how many matches Advance has produced.
func (c *Cursor) Emitted() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.emitted
}

// Close drops the cursor's references. Advance returns false afterwards.
func (c *Cursor) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = true
	c.it = nil
	c.owner = nil
	c.text = ""
}
