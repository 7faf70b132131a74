package explore

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// filterPane is the left-side faceted search tree.
type filterPane struct {
	listView
	facets  *facetState
	items   []filterItem // flattened tree items
	width   int
	height  int
	focused bool

	collapsed map[facetID]bool
}

type filterItemKind int

const (
	filterItemCategory filterItemKind = iota
	filterItemValue
)

type filterItem struct {
	Kind     filterItemKind
	Label    string
	FacetID  facetID
	ValueIdx int // index into facets.Values[FacetID]
	Expanded bool
}

func newFilterPane(facets *facetState) filterPane {
	fp := filterPane{
		facets:    facets,
		collapsed: make(map[facetID]bool),
	}
	fp.rebuildItems()
	return fp
}

// rebuildItems flattens the facet tree into a list of items. Values of a
// collapsed facet are left out.
func (fp *filterPane) rebuildItems() {
	fp.items = nil
	for _, def := range facetDefs {
		values := fp.facets.Values[def.ID]
		if len(values) == 0 {
			continue
		}
		expanded := !fp.collapsed[def.ID]
		fp.items = append(fp.items, filterItem{
			Kind:     filterItemCategory,
			Label:    def.Label,
			FacetID:  def.ID,
			Expanded: expanded,
		})
		if !expanded {
			continue
		}
		for i, v := range values {
			fp.items = append(fp.items, filterItem{
				Kind:     filterItemValue,
				Label:    v.Value,
				FacetID:  def.ID,
				ValueIdx: i,
			})
		}
	}
	fp.clamp(len(fp.items))
}

func (fp filterPane) Update(msg tea.Msg) (filterPane, tea.Cmd) {
	if !fp.focused {
		return fp, nil
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || fp.navigate(km, len(fp.items), fp.visibleRows()) {
		return fp, nil
	}
	switch {
	case keyMatches(km, defaultKeys.Left):
		fp.setExpanded(false)
	case keyMatches(km, defaultKeys.Right):
		fp.setExpanded(true)
	case keyMatches(km, defaultKeys.ToggleFilter):
		fp.toggleCurrent()
	case keyMatches(km, defaultKeys.ResetFilter):
		fp.facets.resetAll()
	}
	return fp, nil
}

func (fp *filterPane) currentItem() (filterItem, bool) {
	if fp.cursor < 0 || fp.cursor >= len(fp.items) {
		return filterItem{}, false
	}
	return fp.items[fp.cursor], true
}

// toggleCurrent flips the selection of the value under the cursor, or
// expands/collapses a category line.
func (fp *filterPane) toggleCurrent() {
	item, ok := fp.currentItem()
	if !ok {
		return
	}
	switch item.Kind {
	case filterItemCategory:
		fp.setExpanded(!item.Expanded)
	case filterItemValue:
		if values := fp.facets.Values[item.FacetID]; item.ValueIdx < len(values) {
			values[item.ValueIdx].Selected = !values[item.ValueIdx].Selected
		}
	}
}

// setExpanded expands or collapses the facet under the cursor and keeps
// the cursor on its category line.
func (fp *filterPane) setExpanded(expanded bool) {
	item, ok := fp.currentItem()
	if !ok {
		return
	}
	fp.collapsed[item.FacetID] = !expanded
	fp.rebuildItems()
	for i, it := range fp.items {
		if it.Kind == filterItemCategory && it.FacetID == item.FacetID {
			fp.cursor = i
			break
		}
	}
	fp.ensureVisible(fp.visibleRows())
}

func (fp filterPane) renderItem(item filterItem) string {
	if item.Kind == filterItemCategory {
		arrow := "▸"
		if item.Expanded {
			arrow = "▾"
		}
		return facetLabelStyle.Render(fmt.Sprintf(" %s %s", arrow, item.Label))
	}

	values := fp.facets.Values[item.FacetID]
	if item.ValueIdx >= len(values) {
		return ""
	}
	v := values[item.ValueIdx]
	label := truncateString(printable([]byte(item.Label)), fp.width-12)
	count := facetCountStyle.Render(fmt.Sprintf("(%d)", v.Count))
	if v.Selected {
		return fmt.Sprintf("   %s %s %s", facetSelectedStyle.Render("+"), facetSelectedStyle.Render(label), count)
	}
	return fmt.Sprintf("     %s %s", label, count)
}

func (fp filterPane) View() string {
	if fp.width <= 0 || fp.height <= 0 {
		return ""
	}

	page := fp.visibleRows()
	lines := make([]string, 0, page)
	start, end := fp.window(len(fp.items), page)
	for i := start; i < end; i++ {
		line := fp.renderItem(fp.items[i])
		if i == fp.cursor && fp.focused {
			line = selectedRowStyle.Width(fp.width - 2).Render(stripAnsi(line))
		}
		lines = append(lines, padRight(line, fp.width-2))
	}
	for len(lines) < page {
		lines = append(lines, strings.Repeat(" ", fp.width-2))
	}

	title := " Filters "
	if fp.facets.hasActiveFilters() {
		title = " Filters (active) "
	}
	return boxed(title, strings.Join(lines, "\n"), fp.width, fp.height, fp.focused)
}

func (fp filterPane) visibleRows() int {
	return max(1, fp.height-4) // title + border
}

func (fp *filterPane) setSize(w, h int) {
	fp.width = w
	fp.height = h
}
