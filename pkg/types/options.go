package types

import (
	"fmt"
	"strings"
)

// MatchKind selects how overlapping candidate matches are resolved.
type MatchKind uint32

const (
	// StandardMatch reports matches as the automaton sees them. It is the
	// only kind that supports overlapping iteration.
	StandardMatch MatchKind = iota
	// LeftmostFirstMatch reports leftmost matches, preferring the pattern
	// that was supplied first.
	LeftmostFirstMatch
	// LeftmostLongestMatch reports leftmost matches, preferring the longest.
	LeftmostLongestMatch
)

func (k MatchKind) String() string {
	switch k {
	case StandardMatch:
		return "standard"
	case LeftmostFirstMatch:
		return "leftmost-first"
	case LeftmostLongestMatch:
		return "leftmost-longest"
	default:
		return fmt.Sprintf("MatchKind(%d)", uint32(k))
	}
}

// Valid reports whether k is one of the defined match kinds.
func (k MatchKind) Valid() bool {
	return k <= LeftmostLongestMatch
}

// ParseMatchKind parses the names produced by MatchKind.String.
func ParseMatchKind(s string) (MatchKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return StandardMatch, nil
	case "leftmost-first", "leftmostfirst":
		return LeftmostFirstMatch, nil
	case "leftmost-longest", "leftmostlongest":
		return LeftmostLongestMatch, nil
	}
	return 0, fmt.Errorf("%w: unknown match kind %q", ErrUnsupportedConfiguration, s)
}

// Engine selects the automaton implementation.
type Engine uint32

const (
	// EngineAuto lets the engine pick its own representation.
	EngineAuto Engine = iota
	// EngineDeterministic forces a full DFA.
	EngineDeterministic
	// EngineHyperscan uses Hyperscan/Vectorscan (cgo builds with the
	// hyperscan tag only).
	EngineHyperscan
)

func (e Engine) String() string {
	switch e {
	case EngineAuto:
		return "auto"
	case EngineDeterministic:
		return "dfa"
	case EngineHyperscan:
		return "hyperscan"
	default:
		return fmt.Sprintf("Engine(%d)", uint32(e))
	}
}

// ParseEngine parses the names produced by Engine.String.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return EngineAuto, nil
	case "dfa", "deterministic":
		return EngineDeterministic, nil
	case "hyperscan", "vectorscan":
		return EngineHyperscan, nil
	}
	return 0, fmt.Errorf("%w: unknown engine %q", ErrUnsupportedConfiguration, s)
}

// Config is the matcher configuration carried across the boundary.
type Config struct {
	ASCIICaseInsensitive bool
	MatchKind            MatchKind
	Engine               Engine
}

// Validate checks that the enum fields hold known values.
func (c Config) Validate() error {
	if !c.MatchKind.Valid() {
		return fmt.Errorf("%w: match kind %d", ErrUnsupportedConfiguration, uint32(c.MatchKind))
	}
	if c.Engine > EngineHyperscan {
		return fmt.Errorf("%w: engine %d", ErrUnsupportedConfiguration, uint32(c.Engine))
	}
	return nil
}
