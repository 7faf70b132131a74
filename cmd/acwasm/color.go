package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// styles holds the color formatters used by human output.
type styles struct {
	heading  *color.Color
	id       *color.Color
	pattern  *color.Color
	match    *color.Color
	metadata *color.Color
}

func newStyles(enabled bool) *styles {
	s := &styles{
		heading:  color.New(color.Bold),
		id:       color.New(color.FgHiGreen),
		pattern:  color.New(color.Bold, color.FgHiBlue),
		match:    color.New(color.FgYellow),
		metadata: color.New(color.FgHiBlue),
	}
	if !enabled {
		for _, c := range []*color.Color{s.heading, s.id, s.pattern, s.match, s.metadata} {
			c.DisableColor()
		}
	}
	return s
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// resolveStyles applies a --color value of auto, always or never.
func resolveStyles(mode string) (*styles, error) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "", "auto":
		color.NoColor = !isStdoutTerminal() || os.Getenv("NO_COLOR") != ""
	default:
		return nil, fmt.Errorf("unknown color mode: %s", mode)
	}
	return newStyles(!color.NoColor), nil
}

// snippetParts holds separated snippet components for colored output
type snippetParts struct {
	prefix   string // "..." if truncated at start
	before   string
	matching string
	after    string
	suffix   string // "..." if truncated at end
}

// formatSnippetWithParts trims a snippet to about maxLen bytes, keeping
// the match centered.
func formatSnippetWithParts(before, matching, after []byte, maxLen int) snippetParts {
	total := len(before) + len(matching) + len(after)
	if total <= maxLen {
		return snippetParts{before: string(before), matching: string(matching), after: string(after)}
	}
	if len(matching) >= maxLen-6 {
		return snippetParts{prefix: "...", matching: string(matching[:maxLen-6]), suffix: "..."}
	}

	half := (maxLen - len(matching) - 6) / 2
	left, right := half, half
	if len(before) < left {
		right += left - len(before)
		left = len(before)
	}
	if len(after) < right {
		left += right - len(after)
		if left > len(before) {
			left = len(before)
		}
		right = len(after)
	}

	parts := snippetParts{
		before:   string(before[len(before)-left:]),
		matching: string(matching),
		after:    string(after[:right]),
	}
	if left < len(before) {
		parts.prefix = "..."
	}
	if right < len(after) {
		parts.suffix = "..."
	}
	return parts
}
