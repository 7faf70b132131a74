package explore

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// sortField defines which column to sort by.
type sortField int

const (
	sortByPattern sortField = iota
	sortByText
	sortByHits
	sortByFiles
	sortFieldCount // sentinel
)

var sortFieldNames = [sortFieldCount]string{
	"Pattern", "Text", "Hits", "Files",
}

// patternsPane is the top-right table of patterns with hits.
type patternsPane struct {
	listView
	rows    []*patternRow // filtered rows
	allRows []*patternRow
	width   int
	height  int
	focused bool
	sortBy  sortField
	sortAsc bool
}

func newPatternsPane(rows []*patternRow) patternsPane {
	pp := patternsPane{
		allRows: rows,
		rows:    rows,
		sortAsc: true,
	}
	pp.sort()
	return pp
}

func (pp *patternsPane) setFilteredRows(rows []*patternRow) {
	pp.rows = rows
	pp.sort()
	pp.clamp(len(pp.rows))
	pp.ensureVisible(pp.visibleRows())
}

func (pp patternsPane) selectedRow() *patternRow {
	if pp.cursor < 0 || pp.cursor >= len(pp.rows) {
		return nil
	}
	return pp.rows[pp.cursor]
}

func (pp patternsPane) Update(msg tea.Msg) (patternsPane, tea.Cmd) {
	if !pp.focused {
		return pp, nil
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || pp.navigate(km, len(pp.rows), pp.visibleRows()) {
		return pp, nil
	}
	switch {
	case keyMatches(km, defaultKeys.SortNext):
		pp.sortBy = (pp.sortBy + 1) % sortFieldCount
		pp.sort()
	case keyMatches(km, defaultKeys.SortReverse):
		pp.sortAsc = !pp.sortAsc
		pp.sort()
	}
	return pp, nil
}

// sort orders rows by the current column. Ties keep pattern id order.
func (pp *patternsPane) sort() {
	var less func(a, b *patternRow) bool
	switch pp.sortBy {
	case sortByText:
		less = func(a, b *patternRow) bool { return a.Label() < b.Label() }
	case sortByHits:
		less = func(a, b *patternRow) bool { return a.HitCount < b.HitCount }
	case sortByFiles:
		less = func(a, b *patternRow) bool { return a.Files < b.Files }
	default:
		less = func(a, b *patternRow) bool { return a.Pattern < b.Pattern }
	}
	asc := pp.sortAsc
	sort.SliceStable(pp.rows, func(i, j int) bool {
		a, b := pp.rows[i], pp.rows[j]
		if less(a, b) {
			return asc
		}
		if less(b, a) {
			return !asc
		}
		return a.Pattern < b.Pattern
	})
}

func (pp patternsPane) View() string {
	if pp.width <= 0 || pp.height <= 0 {
		return ""
	}

	contentWidth := pp.width - 4
	colID := 7
	colHits := 7
	colFiles := 7
	colExt := min(20, contentWidth/5)
	colText := max(10, contentWidth-colID-colHits-colFiles-colExt-5)

	indicator := func(f sortField) string {
		if pp.sortBy != f {
			return ""
		}
		if pp.sortAsc {
			return " ^"
		}
		return " v"
	}

	header := fmt.Sprintf(" %-*s %-*s %*s %*s %-*s",
		colID, "ID"+indicator(sortByPattern),
		colText, "Text"+indicator(sortByText),
		colHits, "Hits"+indicator(sortByHits),
		colFiles, "Files"+indicator(sortByFiles),
		colExt, "Extensions",
	)
	lines := []string{
		headerRowStyle.Width(contentWidth).Render(truncateString(header, contentWidth)),
		strings.Repeat("─", contentWidth),
	}

	page := pp.visibleRows()
	start, end := pp.window(len(pp.rows), page)
	for i := start; i < end; i++ {
		row := pp.rows[i]

		line := " " + strings.Join([]string{
			patternIDStyle.Render(fmt.Sprintf("%-*d", colID, row.Pattern)),
			padRight(truncateString(printable([]byte(row.Label())), colText), colText),
			hitCountStyle.Render(fmt.Sprintf("%*d", colHits, row.HitCount)),
			fmt.Sprintf("%*d", colFiles, row.Files),
			extensionsStyle.Render(truncateString(strings.Join(row.Extensions, " "), colExt)),
		}, " ")
		if i == pp.cursor && pp.focused {
			line = selectedRowStyle.Width(contentWidth).Render(stripAnsi(line))
		}
		lines = append(lines, padRight(line, contentWidth))
	}
	for len(lines) < page+2 {
		lines = append(lines, strings.Repeat(" ", contentWidth))
	}

	title := fmt.Sprintf(" Patterns (%d/%d) [sort: %s] ", len(pp.rows), len(pp.allRows), sortFieldNames[pp.sortBy])
	return boxed(title, strings.Join(lines, "\n"), pp.width, pp.height, pp.focused)
}

func (pp patternsPane) visibleRows() int {
	return max(1, pp.height-6) // title + border + header + separator
}

func (pp *patternsPane) setSize(w, h int) {
	pp.width = w
	pp.height = h
}
