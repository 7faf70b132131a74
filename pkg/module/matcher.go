package module

import (
	"fmt"

	"github.com/praetorian-inc/acwasm/pkg/automaton"
	"github.com/praetorian-inc/acwasm/pkg/decode"
	"github.com/praetorian-inc/acwasm/pkg/handle"
	"github.com/praetorian-inc/acwasm/pkg/prefilter"
	"github.com/praetorian-inc/acwasm/pkg/types"
)

func config(asciiCI, kind, engine uint32) types.Config {
	return types.Config{
		ASCIICaseInsensitive: asciiCI != 0,
		MatchKind:            types.MatchKind(kind),
		Engine:               types.Engine(engine),
	}
}

// BuildMatcher builds a matcher from n patterns stored back to back at
// bytesPtr, with their lengths as n u32 values at lensPtr. It returns zero on
// failure.
func (m *Module) BuildMatcher(bytesPtr, bytesLen, lensPtr, n, asciiCI, kind, engine uint32) uint32 {
	m.begin()
	patterns, err := decode.Parallel(m.mem, decode.View{Ptr: bytesPtr, Len: bytesLen}, lensPtr, n)
	if err != nil {
		m.fail("build_matcher", err)
		return 0
	}
	return m.buildMatcher("build_matcher", patterns, config(asciiCI, kind, engine))
}

// BuildMatcherPacked builds a matcher from zero-byte terminated patterns.
func (m *Module) BuildMatcherPacked(ptr, length, asciiCI, kind, engine uint32) uint32 {
	m.begin()
	patterns, err := decode.Packed(m.mem, decode.View{Ptr: ptr, Len: length})
	if err != nil {
		m.fail("build_matcher_packed", err)
		return 0
	}
	return m.buildMatcher("build_matcher_packed", patterns, config(asciiCI, kind, engine))
}

func (m *Module) buildMatcher(op string, patterns [][]byte, cfg types.Config) uint32 {
	auto, err := automaton.Build(patterns, cfg)
	if err != nil {
		m.fail(op, err)
		return 0
	}

	mt := &matcher{
		auto:     auto,
		patterns: patterns,
		pre:      prefilter.New(patterns, cfg.ASCIICaseInsensitive),
	}
	h, err := m.matchers.Insert(mt)
	if err != nil {
		auto.Close()
		m.fail(op, err)
		return 0
	}
	m.logger.Log("%s: %d patterns, kind %s, engine %s -> %s", op, len(patterns), cfg.MatchKind, cfg.Engine, h)
	return uint32(h)
}

// DestroyMatcher releases a matcher and its automaton.
func (m *Module) DestroyMatcher(h uint32) {
	m.begin()
	mt, err := m.matchers.Remove(handle.Handle(h))
	if err != nil {
		m.fail("destroy_matcher", err)
		return
	}
	if err := mt.auto.Close(); err != nil {
		m.logger.Log("destroy_matcher: closing automaton: %v", err)
	}
	mt.patterns = nil
}

// PatternCount returns the number of patterns of a matcher.
func (m *Module) PatternCount(h uint32) uint32 {
	m.begin()
	mt, ok := m.lookupMatcher("pattern_count", h)
	if !ok {
		return 0
	}
	return uint32(mt.auto.PatternCount())
}

// IsMatch reports whether any pattern of the matcher occurs in the text.
func (m *Module) IsMatch(h, textPtr, textLen uint32) uint32 {
	m.begin()
	mt, ok := m.lookupMatcher("is_match", h)
	if !ok {
		return 0
	}
	text, err := decode.View{Ptr: textPtr, Len: textLen}.Bytes(m.mem)
	if err != nil {
		m.fail("is_match", err)
		return 0
	}
	if mt.pre.Contains(text) {
		return 1
	}
	return 0
}

func (m *Module) lookupMatcher(op string, h uint32) (*matcher, bool) {
	mt, err := m.matchers.Get(handle.Handle(h))
	if err != nil {
		m.fail(op, fmt.Errorf("matcher: %w", err))
		return nil, false
	}
	return mt, true
}
