package types

// Source is one piece of scanned content and where it was found.
type Source struct {
	ID   ContentID `json:"id"`
	Path string    `json:"path"`
	Size int64     `json:"size"`
}

// SourcePoint is a 1-based line:column position.
type SourcePoint struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Location is a match's byte span and the line:column span it covers.
type Location struct {
	Start SourcePoint `json:"start"`
	End   SourcePoint `json:"end"`
}

// Snippet is the matched bytes with some surrounding context.
type Snippet struct {
	Before   []byte `json:"before,omitempty"`
	Matching []byte `json:"matching"`
	After    []byte `json:"after,omitempty"`
}

// Hit is a match found while scanning a source.
type Hit struct {
	Source      ContentID `json:"source"`
	Path        string    `json:"path"`
	Match       Match     `json:"match"`
	PatternText string    `json:"pattern_text"`
	Location    Location  `json:"location"`
	Snippet     Snippet   `json:"snippet"`
}

// Locate computes the line:column span of content[start:end]. Lines and
// columns start at 1; the end point is the position just past the match.
func Locate(content []byte, start, end int) Location {
	var loc Location
	line, col := 1, 1
	for i := 0; i <= end && i <= len(content); i++ {
		if i == start {
			loc.Start = SourcePoint{Line: line, Column: col}
		}
		if i == end {
			loc.End = SourcePoint{Line: line, Column: col}
			break
		}
		if i < len(content) && content[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return loc
}

// NewSnippet cuts the match and up to context bytes either side out of
// content. The returned slices are copies.
func NewSnippet(content []byte, start, end, context int) Snippet {
	before := start - context
	if before < 0 {
		before = 0
	}
	after := end + context
	if after > len(content) {
		after = len(content)
	}
	return Snippet{
		Before:   append([]byte(nil), content[before:start]...),
		Matching: append([]byte(nil), content[start:end]...),
		After:    append([]byte(nil), content[end:after]...),
	}
}
