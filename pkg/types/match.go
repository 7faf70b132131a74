package types

import "fmt"

// MatchRecordSize is the wire size of one match record: three little-endian
// u32 values (pattern id, start, end).
const MatchRecordSize = 12

// Match is a single pattern occurrence reported by an automaton.
// Offsets are byte offsets into the searched text, half-open [Start, End).
type Match struct {
	Pattern int `json:"pattern"`
	Start   int `json:"start"`
	End     int `json:"end"`
}

// Len returns the number of bytes covered by the match.
func (m Match) Len() int {
	return m.End - m.Start
}

// Overlaps reports whether m and o share at least one byte.
func (m Match) Overlaps(o Match) bool {
	return m.Start < o.End && o.Start < m.End
}

func (m Match) String() string {
	return fmt.Sprintf("(%d, %d, %d)", m.Pattern, m.Start, m.End)
}
