//go:build cgo && hyperscan

package automaton

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unsafe"

	"github.com/flier/gohs/hyperscan"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// HyperscanAvailable reports whether the Hyperscan engine is compiled in.
func HyperscanAvailable() bool {
	return true
}

// hyperscanAutomaton runs the pattern set as a Hyperscan block database.
// Hyperscan reports every match as it is found, so both iteration modes are
// computed from one scan: overlapping returns the scan as is, sequential
// applies standard non-overlapping selection over it.
//
// Scratch space is not shareable between concurrent scans; idle scratches
// are kept in a free list so Close can release all of them.
type hyperscanAutomaton struct {
	db    hyperscan.BlockDatabase
	cfg   types.Config
	count int

	mu   sync.Mutex
	idle []*hyperscan.Scratch
	all  []*hyperscan.Scratch
}

func newHyperscan(patterns [][]byte, cfg types.Config) (Automaton, error) {
	if cfg.MatchKind != types.StandardMatch {
		return nil, fmt.Errorf("%w: hyperscan engine supports standard match kind only, got %s", types.ErrUnsupportedConfiguration, cfg.MatchKind)
	}

	flags := hyperscan.SomLeftMost
	if cfg.ASCIICaseInsensitive {
		flags |= hyperscan.Caseless
	}

	hsPatterns := make([]*hyperscan.Pattern, len(patterns))
	for i, p := range patterns {
		hp := hyperscan.NewPattern(literalExpression(p), flags)
		hp.Id = i // Pattern ID = index into the pattern set
		hsPatterns[i] = hp
	}

	db, err := hyperscan.NewBlockDatabase(hsPatterns...)
	if err != nil {
		return nil, fmt.Errorf("%w: compiling hyperscan database: %v", types.ErrUnsupportedConfiguration, err)
	}

	scratch, err := hyperscan.NewScratch(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: allocating hyperscan scratch: %v", types.ErrResourceExhausted, err)
	}

	return &hyperscanAutomaton{
		db:    db,
		cfg:   cfg,
		count: len(patterns),
		idle:  []*hyperscan.Scratch{scratch},
		all:   []*hyperscan.Scratch{scratch},
	}, nil
}

// literalExpression escapes every byte so the pattern is matched literally,
// including NUL and bytes that are not valid UTF-8.
func literalExpression(p []byte) string {
	var b strings.Builder
	b.Grow(len(p) * 4)
	for _, c := range p {
		fmt.Fprintf(&b, `\x%02x`, c)
	}
	return b.String()
}

func (h *hyperscanAutomaton) PatternCount() int    { return h.count }
func (h *hyperscanAutomaton) Config() types.Config { return h.cfg }

func (h *hyperscanAutomaton) acquire() (*hyperscan.Scratch, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.idle); n > 0 {
		s := h.idle[n-1]
		h.idle = h.idle[:n-1]
		return s, nil
	}
	s, err := h.all[0].Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: cloning hyperscan scratch: %v", types.ErrResourceExhausted, err)
	}
	h.all = append(h.all, s)
	return s, nil
}

func (h *hyperscanAutomaton) release(s *hyperscan.Scratch) {
	h.mu.Lock()
	h.idle = append(h.idle, s)
	h.mu.Unlock()
}

// scan collects every match ordered by end, then longest first.
func (h *hyperscanAutomaton) scan(haystack string) ([]types.Match, error) {
	if len(haystack) == 0 {
		return nil, nil
	}

	scratch, err := h.acquire()
	if err != nil {
		return nil, err
	}
	defer h.release(scratch)

	var matches []types.Match
	onMatch := func(id uint, from, to uint64, flags uint, context interface{}) error {
		matches = append(matches, types.Match{Pattern: int(id), Start: int(from), End: int(to)})
		return nil
	}

	data := unsafe.Slice(unsafe.StringData(haystack), len(haystack))
	if err := h.db.Scan(data, scratch, onMatch, nil); err != nil {
		return nil, fmt.Errorf("%w: hyperscan scan failed: %v", types.ErrResourceExhausted, err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.End != b.End {
			return a.End < b.End
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Pattern < b.Pattern
	})
	return matches, nil
}

func (h *hyperscanAutomaton) FindIter(haystack string) (Iterator, error) {
	all, err := h.scan(haystack)
	if err != nil {
		return nil, err
	}
	var selected []types.Match
	next := 0
	for _, m := range all {
		if m.Start >= next {
			selected = append(selected, m)
			next = m.End
		}
	}
	return &sliceIter{matches: selected}, nil
}

func (h *hyperscanAutomaton) FindOverlappingIter(haystack string) (Iterator, error) {
	all, err := h.scan(haystack)
	if err != nil {
		return nil, err
	}
	return &sliceIter{matches: all}, nil
}

// Close frees the database and all scratch space. The automaton must not be
// searched afterwards.
func (h *hyperscanAutomaton) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.all {
		if err := s.Free(); err != nil {
			return fmt.Errorf("failed to free scratch: %w", err)
		}
	}
	h.all, h.idle = nil, nil
	if h.db != nil {
		if err := h.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		h.db = nil
	}
	return nil
}
