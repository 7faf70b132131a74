package acwasm

import "unicode"

// isWordByte reports whether b continues a word. Bytes are read as Latin-1
// code points, so non-ASCII letters in that range count too.
func isWordByte(b byte) bool {
	r := rune(b)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isWholeWord reports whether s[start:end] is not directly preceded or
// followed by a word byte.
func isWholeWord(s string, start, end int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

func filterWholeWords(s string, matches []Match) []Match {
	out := matches[:0]
	for _, m := range matches {
		if isWholeWord(s, m.Start, m.End) {
			out = append(out, m)
		}
	}
	return out
}
