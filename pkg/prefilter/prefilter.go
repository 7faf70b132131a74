package prefilter

import (
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Prefilter answers "does any pattern occur in this text" with a plain
// Aho-Corasick dictionary, without building match records. For any match
// kind, a text contains a match exactly when it contains an occurrence of
// some pattern, so one dictionary serves every matcher configuration.
type Prefilter struct {
	mu         sync.Mutex           // Match keeps per-call state in the matcher
	matcher    *ahocorasick.Matcher // nil when there is nothing to look for
	foldCase   bool                 // ASCII case folding applied to dictionary and text
	alwaysHits bool                 // an empty pattern occurs in every text
}

// New creates a prefilter for patterns.
func New(patterns [][]byte, asciiCaseInsensitive bool) *Prefilter {
	pf := &Prefilter{foldCase: asciiCaseInsensitive}

	dictionary := make([][]byte, 0, len(patterns))
	seen := make(map[string]bool)
	for _, p := range patterns {
		if len(p) == 0 {
			pf.alwaysHits = true
			continue
		}
		if asciiCaseInsensitive {
			p = foldASCII(p)
		}
		if !seen[string(p)] {
			seen[string(p)] = true
			dictionary = append(dictionary, p)
		}
	}

	if !pf.alwaysHits && len(dictionary) > 0 {
		pf.matcher = ahocorasick.NewMatcher(dictionary)
	}
	return pf
}

// Contains reports whether any pattern occurs in content.
func (pf *Prefilter) Contains(content []byte) bool {
	if pf.alwaysHits {
		return true
	}
	if pf.matcher == nil || len(content) == 0 {
		return false
	}
	if pf.foldCase {
		content = foldASCII(content)
	}

	pf.mu.Lock()
	hits := pf.matcher.Match(content)
	pf.mu.Unlock()
	return len(hits) > 0
}

// foldASCII returns a lower-cased copy of b, touching only A-Z.
func foldASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}
