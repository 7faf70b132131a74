package explore

import (
	"sort"
	"strconv"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

// facetID identifies a facet category.
type facetID int

const (
	facetPattern facetID = iota
	facetExtension
	facetDirectory
)

// facetDef defines a facet category.
type facetDef struct {
	ID    facetID
	Label string
}

var facetDefs = []facetDef{
	{facetPattern, "Pattern"},
	{facetExtension, "Extension"},
	{facetDirectory, "Directory"},
}

// facetValue is a single selectable value within a facet.
type facetValue struct {
	FacetID  facetID
	Value    string
	Count    int
	Selected bool
}

// facetState holds the complete filter state.
type facetState struct {
	Values map[facetID][]*facetValue
}

func newFacetState() *facetState {
	return &facetState{
		Values: make(map[facetID][]*facetValue),
	}
}

// buildFacets builds facet values from pattern rows. Pattern counts are
// hits; extension and directory counts are patterns that touch them.
func buildFacets(rows []*patternRow) *facetState {
	fs := newFacetState()

	patterns := make(map[string]int)
	extensions := make(map[string]int)
	directories := make(map[string]int)

	for _, r := range rows {
		patterns[r.Label()] += r.HitCount
		for _, ext := range r.Extensions {
			extensions[ext]++
		}
		for _, dir := range r.Directories {
			directories[dir]++
		}
	}

	fs.Values[facetPattern] = mapToFacetValues(facetPattern, patterns)
	fs.Values[facetExtension] = mapToFacetValues(facetExtension, extensions)
	fs.Values[facetDirectory] = mapToFacetValues(facetDirectory, directories)

	return fs
}

func mapToFacetValues(id facetID, counts map[string]int) []*facetValue {
	values := make([]*facetValue, 0, len(counts))
	for v, c := range counts {
		values = append(values, &facetValue{FacetID: id, Value: v, Count: c})
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].Value < values[j].Value
	})
	return values
}

// selectedValues returns the set of selected values for a facet.
func (fs *facetState) selectedValues(id facetID) map[string]bool {
	selected := make(map[string]bool)
	for _, v := range fs.Values[id] {
		if v.Selected {
			selected[v.Value] = true
		}
	}
	return selected
}

// hasActiveFilters returns true if any facet has selections.
func (fs *facetState) hasActiveFilters() bool {
	for _, values := range fs.Values {
		for _, v := range values {
			if v.Selected {
				return true
			}
		}
	}
	return false
}

// resetAll deselects all facet values.
func (fs *facetState) resetAll() {
	for _, values := range fs.Values {
		for _, v := range values {
			v.Selected = false
		}
	}
}

// matchesRow returns true if a pattern row passes all active filters.
// Within a facet: OR (union). Across facets: AND (intersection).
func (fs *facetState) matchesRow(r *patternRow) bool {
	for _, def := range facetDefs {
		selected := fs.selectedValues(def.ID)
		if len(selected) == 0 {
			continue
		}

		switch def.ID {
		case facetPattern:
			if !selected[r.Label()] {
				return false
			}
		case facetExtension:
			if !anySelected(r.Extensions, selected) {
				return false
			}
		case facetDirectory:
			if !anySelected(r.Directories, selected) {
				return false
			}
		}
	}
	return true
}

// matchesHit returns true if a hit passes the extension and directory
// filters. The pattern facet is decided at row level.
func (fs *facetState) matchesHit(h *hitRow) bool {
	if sel := fs.selectedValues(facetExtension); len(sel) > 0 && !sel[h.Extension] {
		return false
	}
	if sel := fs.selectedValues(facetDirectory); len(sel) > 0 && !sel[h.Directory] {
		return false
	}
	return true
}

func anySelected(values []string, selected map[string]bool) bool {
	for _, v := range values {
		if selected[v] {
			return true
		}
	}
	return false
}

// updateCounts recounts facet values based on currently visible rows.
func (fs *facetState) updateCounts(rows []*patternRow) {
	for _, values := range fs.Values {
		for _, v := range values {
			v.Count = 0
		}
	}

	for _, r := range rows {
		if !fs.matchesRow(r) {
			continue
		}
		for _, v := range fs.Values[facetPattern] {
			if v.Value == r.Label() {
				v.Count += r.HitCount
			}
		}
		for _, v := range fs.Values[facetExtension] {
			for _, ext := range r.Extensions {
				if v.Value == ext {
					v.Count++
					break
				}
			}
		}
		for _, v := range fs.Values[facetDirectory] {
			for _, dir := range r.Directories {
				if v.Value == dir {
					v.Count++
					break
				}
			}
		}
	}
}

// patternRow is the view model for one pattern and its hits.
type patternRow struct {
	Pattern     int
	Text        string
	HitCount    int
	Files       int
	Extensions  []string
	Directories []string
	Hits        []*hitRow
}

// Label is the display name of the pattern: its text, or "#id" when the
// text was not recorded.
func (r *patternRow) Label() string {
	if r.Text != "" {
		return r.Text
	}
	return "#" + strconv.Itoa(r.Pattern)
}

// hitRow is the view model for a single hit.
type hitRow struct {
	Source    types.ContentID
	Path      string
	Start     int
	End       int
	Location  types.Location
	Snippet   types.Snippet
	Extension string
	Directory string
}
