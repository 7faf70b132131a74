// Package automaton is the boundary's view of the multi-pattern matching
// engine. The boundary only needs to build an automaton from a pattern set
// and walk its matches; everything about how matches are found belongs to
// the engine behind Build.
package automaton

import (
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// Iterator yields matches one at a time. Once Next returns false it keeps
// returning false.
type Iterator interface {
	Next() (types.Match, bool)
}

// Automaton is a compiled pattern set. It is read-only after Build and safe
// for concurrent searches.
type Automaton interface {
	// PatternCount returns the number of patterns the automaton was built from.
	PatternCount() int

	// Config returns the configuration used to build the automaton.
	Config() types.Config

	// FindIter returns non-overlapping matches in increasing start order.
	FindIter(haystack string) (Iterator, error)

	// FindOverlappingIter returns every match, in non-decreasing end order.
	// Only StandardMatch automata support it.
	FindOverlappingIter(haystack string) (Iterator, error)

	// Close releases engine resources held outside the Go heap.
	Close() error
}

// Build compiles patterns with cfg. Pattern i is reported as pattern id i.
func Build(patterns [][]byte, cfg types.Config) (Automaton, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return empty{cfg: cfg}, nil
	}

	switch cfg.Engine {
	case types.EngineHyperscan:
		return newHyperscan(patterns, cfg)
	default:
		return newAhoCorasick(patterns, cfg)
	}
}

// Collect drains up to limit matches from it. A negative limit drains
// everything.
func Collect(it Iterator, limit int) []types.Match {
	var out []types.Match
	for limit < 0 || len(out) < limit {
		m, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, m)
	}
	return out
}

func errOverlappingKind(kind types.MatchKind) error {
	return fmt.Errorf("%w: overlapping search requires standard match kind, matcher uses %s", types.ErrUnsupportedConfiguration, kind)
}

// empty is the automaton for a pattern set with no patterns.
type empty struct {
	cfg types.Config
}

func (e empty) PatternCount() int { return 0 }
func (e empty) Config() types.Config { return e.cfg }
func (e empty) Close() error { return nil }
func (e empty) FindIter(string) (Iterator, error) {
	return &sliceIter{}, nil
}

func (e empty) FindOverlappingIter(string) (Iterator, error) {
	if e.cfg.MatchKind != types.StandardMatch {
		return nil, errOverlappingKind(e.cfg.MatchKind)
	}
	return &sliceIter{}, nil
}

// sliceIter walks a precomputed match list.
type sliceIter struct {
	matches []types.Match
	pos     int
}

func (s *sliceIter) Next() (types.Match, bool) {
	if s.pos >= len(s.matches) {
		return types.Match{}, false
	}
	m := s.matches[s.pos]
	s.pos++
	return m, true
}
