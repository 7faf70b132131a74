package explore

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// detailsPane shows the hits of the selected pattern, one at a time.
type detailsPane struct {
	row       *patternRow
	hits      []*hitRow // hits of row that pass the active filters
	hitCursor int
	width     int
	height    int
	offset    int // scroll offset for content
	focused   bool
}

func newDetailsPane() detailsPane {
	return detailsPane{}
}

func (dp *detailsPane) setPattern(row *patternRow, hits []*hitRow) {
	dp.row = row
	dp.hits = hits
	dp.hitCursor = 0
	dp.offset = 0
}

func (dp detailsPane) selectedHit() *hitRow {
	if dp.hitCursor < 0 || dp.hitCursor >= len(dp.hits) {
		return nil
	}
	return dp.hits[dp.hitCursor]
}

func (dp *detailsPane) nextHit() bool {
	if dp.hitCursor >= len(dp.hits)-1 {
		return false
	}
	dp.hitCursor++
	dp.offset = 0
	return true
}

func (dp *detailsPane) prevHit() bool {
	if dp.hitCursor <= 0 {
		return false
	}
	dp.hitCursor--
	dp.offset = 0
	return true
}

func (dp detailsPane) Update(msg tea.Msg) (detailsPane, tea.Cmd) {
	if !dp.focused {
		return dp, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMatches(msg, defaultKeys.Up):
			if dp.offset > 0 {
				dp.offset--
			}
		case keyMatches(msg, defaultKeys.Down):
			dp.offset++
		case keyMatches(msg, defaultKeys.Left):
			dp.prevHit()
		case keyMatches(msg, defaultKeys.Right):
			dp.nextHit()
		case keyMatches(msg, defaultKeys.Home):
			dp.offset = 0
		case keyMatches(msg, defaultKeys.PageDown):
			dp.offset += dp.visibleRows()
		case keyMatches(msg, defaultKeys.PageUp):
			dp.offset = max(0, dp.offset-dp.visibleRows())
		}
	}

	return dp, nil
}

// lines renders the pane content before scrolling is applied.
func (dp detailsPane) lines(contentWidth int) []string {
	if dp.row == nil {
		return []string{"  No pattern selected"}
	}

	lines := []string{
		field("Pattern:", fmt.Sprintf("#%d %q", dp.row.Pattern, dp.row.Text)),
		field("Hits:", fmt.Sprintf("%d in %d files", dp.row.HitCount, dp.row.Files)),
		"",
	}

	if len(dp.hits) == 0 {
		return append(lines, "  No hits")
	}

	lines = append(lines,
		"  "+headerRowStyle.Render(fmt.Sprintf("Hit %d/%d (n/N to navigate)", dp.hitCursor+1, len(dp.hits))),
		"  "+strings.Repeat("─", max(0, min(40, contentWidth-4))),
	)
	if h := dp.selectedHit(); h != nil {
		lines = append(lines, renderHitDetails(h, contentWidth)...)
	}
	return lines
}

func (dp detailsPane) View() string {
	if dp.width <= 0 || dp.height <= 0 {
		return ""
	}

	contentWidth := dp.width - 4
	lines := dp.lines(contentWidth)

	offset := min(dp.offset, max(0, len(lines)-1))
	visible := lines[offset:]
	if len(visible) > dp.visibleRows() {
		visible = visible[:dp.visibleRows()]
	}

	out := make([]string, 0, dp.visibleRows())
	for _, line := range visible {
		out = append(out, padRight(truncateString(line, contentWidth), contentWidth))
	}
	for len(out) < dp.visibleRows() {
		out = append(out, strings.Repeat(" ", contentWidth))
	}

	return boxed(" Details ", strings.Join(out, "\n"), dp.width, dp.height, dp.focused)
}

func field(label, value string) string {
	return fmt.Sprintf("  %s %s", fieldLabelStyle.Render(label), fieldValueStyle.Render(value))
}

func renderHitDetails(h *hitRow, maxWidth int) []string {
	lines := []string{
		field("File:", h.Path),
		fmt.Sprintf("  %s %s", fieldLabelStyle.Render("Source:"), sourceIDStyle.Render(h.Source.Hex()[:12]+"...")),
		fmt.Sprintf("  %s %s", fieldLabelStyle.Render("Location:"), positionStyle.Render(fmt.Sprintf("%d:%d - %d:%d (bytes %d-%d)",
			h.Location.Start.Line, h.Location.Start.Column,
			h.Location.End.Line, h.Location.End.Column,
			h.Start, h.End))),
		"",
		"  " + fieldLabelStyle.Render("Snippet:"),
	}

	snippetWidth := maxWidth - 6
	before := strings.TrimRight(string(h.Snippet.Before), "\n\r")
	after := strings.TrimLeft(string(h.Snippet.After), "\n\r")

	for _, line := range strings.Split(before, "\n") {
		if line != "" {
			lines = append(lines, "    "+snippetContextStyle.Render(truncateString(printable([]byte(line)), snippetWidth)))
		}
	}
	for _, line := range strings.Split(string(h.Snippet.Matching), "\n") {
		lines = append(lines, "    "+snippetMatchStyle.Render(truncateString(printable([]byte(line)), snippetWidth)))
	}
	for _, line := range strings.Split(after, "\n") {
		if line != "" {
			lines = append(lines, "    "+snippetContextStyle.Render(truncateString(printable([]byte(line)), snippetWidth)))
		}
	}

	return lines
}

func (dp detailsPane) visibleRows() int {
	return max(1, dp.height-4)
}

func (dp *detailsPane) setSize(w, h int) {
	dp.width = w
	dp.height = h
}
