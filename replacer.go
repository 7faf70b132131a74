package acwasm

import (
	"fmt"
	"strings"
)

// Finder is what a Replacer needs from a matcher.
type Finder interface {
	FindAll(haystack string) ([]Match, error)
	PatternCount() int
}

// Replacer rewrites the matches a Finder reports.
type Replacer struct {
	finder Finder
}

// NewReplacer creates a Replacer over finder.
func NewReplacer(finder Finder) Replacer {
	return Replacer{finder: finder}
}

// ReplaceAllFunc replaces each match with the string f returns for it.
// When f returns false, replacing stops and the rest of haystack is kept
// as is.
func (r Replacer) ReplaceAllFunc(haystack string, f func(match Match) (string, bool)) (string, error) {
	matches, err := r.finder.FindAll(haystack)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return haystack, nil
	}

	var sb strings.Builder
	sb.Grow(len(haystack))
	last := 0
	for _, m := range matches {
		with, ok := f(m)
		if !ok {
			break
		}
		sb.WriteString(haystack[last:m.Start])
		sb.WriteString(with)
		last = m.End
	}
	sb.WriteString(haystack[last:])
	return sb.String(), nil
}

// ReplaceAll replaces every match of pattern i with replaceWith[i].
// replaceWith must have one entry per pattern.
func (r Replacer) ReplaceAll(haystack string, replaceWith []string) (string, error) {
	if len(replaceWith) != r.finder.PatternCount() {
		return "", fmt.Errorf("replaceWith has %d entries for %d patterns", len(replaceWith), r.finder.PatternCount())
	}
	return r.ReplaceAllFunc(haystack, func(m Match) (string, bool) {
		return replaceWith[m.Pattern], true
	})
}
