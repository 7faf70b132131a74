package module

import (
	"context"
	"sort"
)

// Func is an exported operation in wazero's CallWithStack convention:
// parameters are read from stack and the result, if any, is written back
// to stack[0].
type Func func(ctx context.Context, stack []uint64)

// Signature is the arity of an export. Every parameter and result is a u32.
type Signature struct {
	Params  int
	Results int
}

// Signatures lists every export by name.
var Signatures = map[string]Signature{
	"malloc":                     {1, 1},
	"free":                       {1, 0},
	"build_matcher":              {7, 1},
	"build_matcher_packed":       {5, 1},
	"destroy_matcher":            {1, 0},
	"pattern_count":              {1, 1},
	"open_sequential_iterator":   {3, 1},
	"sequential_iterator_next":   {4, 1},
	"close_sequential_iterator":  {1, 0},
	"open_overlapping_iterator":  {3, 1},
	"overlapping_iterator_next":  {4, 1},
	"close_overlapping_iterator": {1, 0},
	"find_matches":               {5, 1},
	"destroy_match_buffer":       {2, 0},
	"is_match":                   {3, 1},
	"last_error":                 {0, 1},
	"last_error_message":         {2, 1},
}

// ExportNames returns the export names in sorted order.
func ExportNames() []string {
	names := make([]string, 0, len(Signatures))
	for name := range Signatures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func u32(v uint64) uint32 { return uint32(v) }

// Exports returns m's operations keyed by export name.
func (m *Module) Exports() map[string]Func {
	return map[string]Func{
		"malloc": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.Malloc(u32(s[0])))
		},
		"free": func(_ context.Context, s []uint64) {
			m.Free(u32(s[0]))
		},
		"build_matcher": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.BuildMatcher(u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4]), u32(s[5]), u32(s[6])))
		},
		"build_matcher_packed": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.BuildMatcherPacked(u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4])))
		},
		"destroy_matcher": func(_ context.Context, s []uint64) {
			m.DestroyMatcher(u32(s[0]))
		},
		"pattern_count": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.PatternCount(u32(s[0])))
		},
		"open_sequential_iterator": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.OpenSequentialIterator(u32(s[0]), u32(s[1]), u32(s[2])))
		},
		"sequential_iterator_next": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.SequentialIteratorNext(u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3])))
		},
		"close_sequential_iterator": func(_ context.Context, s []uint64) {
			m.CloseSequentialIterator(u32(s[0]))
		},
		"open_overlapping_iterator": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.OpenOverlappingIterator(u32(s[0]), u32(s[1]), u32(s[2])))
		},
		"overlapping_iterator_next": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.OverlappingIteratorNext(u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3])))
		},
		"close_overlapping_iterator": func(_ context.Context, s []uint64) {
			m.CloseOverlappingIterator(u32(s[0]))
		},
		"find_matches": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.FindMatches(u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4])))
		},
		"destroy_match_buffer": func(_ context.Context, s []uint64) {
			m.DestroyMatchBuffer(u32(s[0]), u32(s[1]))
		},
		"is_match": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.IsMatch(u32(s[0]), u32(s[1]), u32(s[2])))
		},
		"last_error": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.LastError())
		},
		"last_error_message": func(_ context.Context, s []uint64) {
			s[0] = uint64(m.LastErrorMessage(u32(s[0]), u32(s[1])))
		},
	}
}
