package automaton

import (
	"fmt"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

// MaxDFABytes bounds the transition table a forced DFA may need. Pattern
// sets whose estimate exceeds it are rejected rather than silently built as
// an NFA.
const MaxDFABytes = 64 << 20

// dfaEstimate approximates the DFA transition table size: one state per
// pattern byte plus the root, 256 four-byte transitions per state.
func dfaEstimate(patterns [][]byte) uint64 {
	states := uint64(1)
	for _, p := range patterns {
		states += uint64(len(p))
	}
	return states * 256 * 4
}

type ahoCorasickAutomaton struct {
	ac    ahocorasick.AhoCorasick
	cfg   types.Config
	count int
}

func newAhoCorasick(patterns [][]byte, cfg types.Config) (a Automaton, err error) {
	dfa := cfg.Engine == types.EngineDeterministic
	if dfa {
		if est := dfaEstimate(patterns); est > MaxDFABytes {
			return nil, fmt.Errorf("%w: deterministic automaton for %d patterns needs about %d bytes, limit is %d",
				types.ErrUnsupportedConfiguration, len(patterns), est, MaxDFABytes)
		}
	}

	opts := ahocorasick.Opts{
		AsciiCaseInsensitive: cfg.ASCIICaseInsensitive,
		DFA:                  dfa,
	}
	switch cfg.MatchKind {
	case types.StandardMatch:
		opts.MatchKind = ahocorasick.StandardMatch
	case types.LeftmostFirstMatch:
		opts.MatchKind = ahocorasick.LeftMostFirstMatch
	case types.LeftmostLongestMatch:
		opts.MatchKind = ahocorasick.LeftMostLongestMatch
	}

	strs := make([]string, len(patterns))
	for i, p := range patterns {
		strs[i] = string(p)
	}

	// The engine reports construction problems by panicking.
	defer func() {
		if r := recover(); r != nil {
			a = nil
			err = fmt.Errorf("%w: building automaton: %v", types.ErrUnsupportedConfiguration, r)
		}
	}()

	builder := ahocorasick.NewAhoCorasickBuilder(opts)
	return &ahoCorasickAutomaton{
		ac:    builder.Build(strs),
		cfg:   cfg,
		count: len(patterns),
	}, nil
}

func (a *ahoCorasickAutomaton) PatternCount() int { return a.count }
func (a *ahoCorasickAutomaton) Config() types.Config { return a.cfg }
func (a *ahoCorasickAutomaton) Close() error { return nil }

func (a *ahoCorasickAutomaton) FindIter(haystack string) (Iterator, error) {
	return &acIter{it: a.ac.Iter(haystack), sequential: true}, nil
}

func (a *ahoCorasickAutomaton) FindOverlappingIter(haystack string) (Iterator, error) {
	if a.cfg.MatchKind != types.StandardMatch {
		return nil, errOverlappingKind(a.cfg.MatchKind)
	}
	return &acIter{it: a.ac.IterOverlapping(haystack)}, nil
}

// acIter adapts the engine's iterator. The engine resumes a sequential
// search one byte past the previous match start rather than at its end, so
// sequential iterators drop every match starting before the last accepted
// end.
type acIter struct {
	it         ahocorasick.Iter
	sequential bool
	lastEnd    int
	done       bool
}

func (i *acIter) Next() (types.Match, bool) {
	for !i.done {
		m := i.it.Next()
		if m == nil {
			i.done = true
			break
		}
		if i.sequential {
			if m.Start() < i.lastEnd {
				continue
			}
			i.lastEnd = m.End()
		}
		return types.Match{Pattern: m.Pattern(), Start: m.Start(), End: m.End()}, true
	}
	return types.Match{}, false
}
