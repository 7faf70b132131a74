package explore

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/acwasm/pkg/datastore"
)

func testModel() Model {
	hits := sampleHits()
	m := newModel(&exploreData{sources: 3, hits: len(hits), rows: buildPatternRows(hits)})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "f1":
			msg = tea.KeyMsg{Type: tea.KeyF1}
		case "ctrl+r":
			msg = tea.KeyMsg{Type: tea.KeyCtrlR}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestModel_InitialState(t *testing.T) {
	m := testModel()

	assert.Equal(t, panePatterns, m.focus)
	assert.True(t, m.patterns.focused)
	require.NotNil(t, m.patterns.selectedRow())
	assert.Equal(t, 0, m.patterns.selectedRow().Pattern)
	assert.Len(t, m.details.hits, 3)
	assert.Equal(t, "src/main.go", m.details.selectedHit().Path)
}

func TestModel_NavigatePatterns(t *testing.T) {
	m := press(testModel(), "j")
	require.NotNil(t, m.patterns.selectedRow())
	assert.Equal(t, "FIXME", m.patterns.selectedRow().Text)
	assert.Len(t, m.details.hits, 1)

	m = press(m, "k")
	assert.Equal(t, "TODO", m.patterns.selectedRow().Text)
}

func TestModel_NavigateHits(t *testing.T) {
	m := press(testModel(), "n")
	assert.Equal(t, "README.md", m.details.selectedHit().Path)

	m = press(m, "n", "n")
	assert.Equal(t, "src/lib/util.py", m.details.selectedHit().Path, "stops at the last hit")

	m = press(m, "d", "h")
	assert.Equal(t, paneDetails, m.focus)
	assert.Equal(t, "README.md", m.details.selectedHit().Path)
}

func TestModel_Sort(t *testing.T) {
	m := press(testModel(), "s")
	assert.Equal(t, sortByText, m.patterns.sortBy)
	assert.Equal(t, "FIXME", m.patterns.rows[0].Text)

	m = press(m, "s")
	assert.Equal(t, sortByHits, m.patterns.sortBy)
	assert.Equal(t, "FIXME", m.patterns.rows[0].Text)

	m = press(m, "S")
	assert.False(t, m.patterns.sortAsc)
	assert.Equal(t, "TODO", m.patterns.rows[0].Text)
}

func TestModel_Filters(t *testing.T) {
	m := press(testModel(), "f1")
	require.Equal(t, paneFilters, m.focus)

	// Items: [Pattern] FIXME TODO [Extension] .go .md .py ...
	require.Equal(t, filterItemCategory, m.filters.items[0].Kind)
	m = press(m, "down", "down", "down", "down", "down", " ")
	require.Equal(t, ".md", m.filters.items[m.filters.cursor].Label)

	assert.True(t, m.filters.facets.hasActiveFilters())
	require.Len(t, m.patterns.rows, 1)
	assert.Equal(t, "TODO", m.patterns.rows[0].Text)
	require.Len(t, m.details.hits, 1)
	assert.Equal(t, "README.md", m.details.hits[0].Path)

	m = press(m, "ctrl+r")
	assert.False(t, m.filters.facets.hasActiveFilters())
	assert.Len(t, m.patterns.rows, 2)
	assert.Len(t, m.details.hits, 3)
}

func TestModel_CollapseFacet(t *testing.T) {
	m := press(testModel(), "f1")
	total := len(m.filters.items)

	m = press(m, "h")
	assert.Equal(t, total-2, len(m.filters.items))
	assert.False(t, m.filters.items[0].Expanded)
	assert.Equal(t, 0, m.filters.cursor)

	m = press(m, "l")
	assert.Equal(t, total, len(m.filters.items))
}

func TestModel_HelpOverlay(t *testing.T) {
	m := press(testModel(), "?")
	assert.Equal(t, overlayHelp, m.activeOverlay)
	assert.Contains(t, m.View(), "interactive hits browser")

	m = press(m, "q")
	assert.Equal(t, overlayNone, m.activeOverlay)
}

func TestModel_SourceFallback(t *testing.T) {
	m := testModel()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	m = updated.(Model)

	assert.Nil(t, cmd, "missing files fall back to the snippet overlay")
	assert.Equal(t, overlaySource, m.activeOverlay)
	assert.Contains(t, m.sourceContent, "TODO")
}

func TestModel_SourceFromBlob(t *testing.T) {
	blobs, err := datastore.NewBlobStore(t.TempDir())
	require.NoError(t, err)
	_, err = blobs.Store([]byte("// TODO fix\n// FIXME later\n"))
	require.NoError(t, err)

	m := testModel()
	WithBlobs(blobs)(&m)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})

	assert.NotNil(t, cmd, "stored blob is paged")
	assert.Equal(t, overlayNone, updated.(Model).activeOverlay)
}

func TestModel_View(t *testing.T) {
	view := testModel().View()
	assert.Contains(t, view, "Filters")
	assert.Contains(t, view, "Patterns (2/2)")
	assert.Contains(t, view, "src/main.go")
	assert.Contains(t, view, "4 hits in 3 sources")

	assert.Equal(t, "Loading...", newModel(&exploreData{}).View())
}

func TestModel_Quit(t *testing.T) {
	_, cmd := testModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestScrollWindow(t *testing.T) {
	text := "a\nb\nc\nd"
	assert.Equal(t, "a\nb", scrollWindow(text, 0, 2))
	assert.Equal(t, "c\nd", scrollWindow(text, 2, 5))
	assert.Equal(t, "d", scrollWindow(text, 10, 2))
}

func TestPrintable(t *testing.T) {
	assert.Equal(t, "a.b  c", printable([]byte("a\x00b\tc")))
	assert.Equal(t, "plain", printable([]byte("plain")))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcd...", truncateString("abcdefghij", 7))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
	assert.Empty(t, truncateString("abc", 0))

	styled := "\x1b[1mabcdefghij\x1b[0m"
	got := truncateString(styled, 7)
	assert.Equal(t, "abcd...", stripAnsi(got))
	assert.Equal(t, 7, ansi.StringWidth(got))
}

func TestPatternsView_ColumnsAligned(t *testing.T) {
	m := testModel()
	var rows []string
	for _, line := range strings.Split(stripAnsi(m.patterns.View()), "\n") {
		if strings.Contains(line, "TODO") || strings.Contains(line, "FIXME") {
			rows = append(rows, line)
		}
	}
	require.Len(t, rows, 2)
	assert.Equal(t, strings.Index(rows[0], "TODO"), strings.Index(rows[1], "FIXME"), "text column starts at the same cell")
	assert.Contains(t, m.details.View(), "n/N to navigate")
}
