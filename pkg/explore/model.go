package explore

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/praetorian-inc/acwasm/pkg/datastore"
)

// focusedPane tracks which pane has keyboard focus.
type focusedPane int

const (
	paneFilters focusedPane = iota
	panePatterns
	paneDetails
)

// overlay tracks which modal overlay is active.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlaySource
)

// pagerFinishedMsg is sent when an external pager process exits.
type pagerFinishedMsg struct{ err error }

// Model is the root Bubble Tea model for the explore TUI.
type Model struct {
	data     *exploreData
	filters  filterPane
	patterns patternsPane
	details  detailsPane

	focus         focusedPane
	activeOverlay overlay
	showFilters   bool

	helpOffset int

	sourceContent string
	sourceOffset  int

	blobs *datastore.BlobStore

	width  int
	height int
	err    error
}

// Option configures a Model.
type Option func(*Model)

// WithBlobs lets the source viewer fall back to stored copies of files that
// no longer exist on disk.
func WithBlobs(blobs *datastore.BlobStore) Option {
	return func(m *Model) {
		m.blobs = blobs
	}
}

// New creates a new Model by loading hits from the results database at
// datastorePath.
func New(datastorePath string, opts ...Option) (Model, error) {
	data, err := loadData(datastorePath)
	if err != nil {
		return Model{}, err
	}
	m := newModel(data)
	for _, opt := range opts {
		opt(&m)
	}
	return m, nil
}

func newModel(data *exploreData) Model {
	m := Model{
		data:        data,
		filters:     newFilterPane(buildFacets(data.rows)),
		patterns:    newPatternsPane(append([]*patternRow(nil), data.rows...)),
		details:     newDetailsPane(),
		showFilters: true,
	}
	m.setFocus(panePatterns)
	m.syncDetails()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("acwasm explore")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case pagerFinishedMsg:
		m.err = msg.err
		return m, nil

	case tea.MouseMsg:
		if m.activeOverlay != overlayNone {
			return m, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.handleMouseClick(msg.X, msg.Y)
		return m, nil

	case tea.KeyMsg:
		if m.activeOverlay != overlayNone {
			m.updateOverlay(msg)
			return m, nil
		}

		switch {
		case keyMatches(msg, defaultKeys.ForceQuit), keyMatches(msg, defaultKeys.Quit):
			return m, tea.Quit
		case keyMatches(msg, defaultKeys.ToggleHelp):
			m.activeOverlay = overlayHelp
			m.helpOffset = 0
			return m, nil
		case keyMatches(msg, defaultKeys.ToggleFilters):
			m.showFilters = !m.showFilters
			if !m.showFilters && m.focus == paneFilters {
				m.setFocus(panePatterns)
			}
			m.resize()
			return m, nil
		case keyMatches(msg, defaultKeys.FocusFilters):
			m.showFilters = true
			m.resize()
			m.setFocus(paneFilters)
			return m, nil
		case keyMatches(msg, defaultKeys.FocusPatterns):
			m.setFocus(panePatterns)
			return m, nil
		case keyMatches(msg, defaultKeys.FocusDetails):
			m.setFocus(paneDetails)
			return m, nil
		}

		if m.focus == panePatterns || m.focus == paneDetails {
			switch {
			case keyMatches(msg, defaultKeys.NextHit):
				m.details.nextHit()
				return m, nil
			case keyMatches(msg, defaultKeys.PrevHit):
				m.details.prevHit()
				return m, nil
			case keyMatches(msg, defaultKeys.OpenSource):
				return m, m.openSource()
			}
		}

		switch m.focus {
		case paneFilters:
			var cmd tea.Cmd
			m.filters, cmd = m.filters.Update(msg)
			m.applyFilters()
			return m, cmd
		case panePatterns:
			prev := m.patterns.selectedRow()
			var cmd tea.Cmd
			m.patterns, cmd = m.patterns.Update(msg)
			if m.patterns.selectedRow() != prev {
				m.syncDetails()
			}
			return m, cmd
		case paneDetails:
			var cmd tea.Cmd
			m.details, cmd = m.details.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) updateOverlay(msg tea.KeyMsg) {
	offset := &m.helpOffset
	closeKey := defaultKeys.ToggleHelp
	if m.activeOverlay == overlaySource {
		offset = &m.sourceOffset
		closeKey = defaultKeys.OpenSource
	}

	switch {
	case keyMatches(msg, defaultKeys.Quit),
		keyMatches(msg, defaultKeys.ForceQuit),
		keyMatches(msg, closeKey):
		m.activeOverlay = overlayNone
	case keyMatches(msg, defaultKeys.Down):
		*offset++
	case keyMatches(msg, defaultKeys.Up):
		if *offset > 0 {
			*offset--
		}
	case keyMatches(msg, defaultKeys.PageDown):
		*offset += m.height / 2
	case keyMatches(msg, defaultKeys.PageUp):
		*offset = max(0, *offset-m.height/2)
	}
}

// layout returns the filters width and the patterns pane height for the
// current window size.
func (m Model) layout() (filtersWidth, patternsHeight int) {
	contentHeight := m.height - 2 // status bar + padding
	patternsHeight = contentHeight * 40 / 100
	if m.showFilters {
		filtersWidth = min(m.width*30/100, 50)
	}
	return filtersWidth, patternsHeight
}

// resize hands the current window size out to the panes.
func (m *Model) resize() {
	contentHeight := m.height - 2
	filtersWidth, patternsHeight := m.layout()
	dataWidth := m.width - filtersWidth

	m.filters.setSize(filtersWidth, contentHeight)
	m.patterns.setSize(dataWidth, patternsHeight)
	m.details.setSize(dataWidth, contentHeight-patternsHeight)
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.activeOverlay != overlayNone {
		return m.renderOverlay()
	}

	mainContent := lipgloss.JoinVertical(lipgloss.Left, m.patterns.View(), m.details.View())
	if m.showFilters {
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, m.filters.View(), mainContent)
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	summary := fmt.Sprintf(" %d hits in %d sources | %d/%d patterns",
		m.data.hits, m.data.sources, len(m.patterns.rows), len(m.data.rows))
	if m.err != nil {
		summary += " | " + m.err.Error()
	}
	left := statusBarStyle.Render(summary)

	h := newHelp()
	h.Width = max(0, m.width-lipgloss.Width(left)-1)
	right := h.ShortHelpView(defaultKeys.ShortHelp())

	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderOverlay() string {
	overlayWidth := m.width * 80 / 100
	overlayHeight := m.height * 80 / 100

	var title, content string
	switch m.activeOverlay {
	case overlayHelp:
		title = " Help (q to close) "
		content = scrollWindow(m.helpContent(overlayWidth-8), m.helpOffset, overlayHeight-4)
	case overlaySource:
		title = " Source (q to close) "
		content = "  No source available"
		if m.sourceContent != "" {
			content = scrollWindow(m.sourceContent, m.sourceOffset, overlayHeight-4)
		}
	}

	box := modalStyle.
		Width(overlayWidth - 4).
		Height(overlayHeight - 2).
		Render(content)

	overlayView := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), box)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlayView)
}

// scrollWindow returns up to height lines of text starting at offset.
func scrollWindow(text string, offset, height int) string {
	lines := strings.Split(text, "\n")
	offset = min(offset, max(0, len(lines)-1))
	end := min(offset+max(1, height), len(lines))
	return strings.Join(lines[offset:end], "\n")
}

func (m *Model) setFocus(p focusedPane) {
	m.filters.focused = p == paneFilters
	m.patterns.focused = p == panePatterns
	m.details.focused = p == paneDetails
	m.focus = p
}

func (m *Model) handleMouseClick(x, y int) {
	contentHeight := m.height - 2
	if y >= contentHeight {
		return
	}
	filtersWidth, patternsHeight := m.layout()

	switch {
	case x < filtersWidth:
		m.setFocus(paneFilters)
		row := y - 2 // title + border top
		if idx := row + m.filters.offset; row >= 0 && idx < len(m.filters.items) {
			m.filters.cursor = idx
			m.filters.toggleCurrent()
			m.applyFilters()
		}
	case y < patternsHeight:
		m.setFocus(panePatterns)
		row := y - 4 // title + border top + header + separator
		if idx := row + m.patterns.offset; row >= 0 && idx < len(m.patterns.rows) {
			m.patterns.cursor = idx
			m.syncDetails()
		}
	default:
		m.setFocus(paneDetails)
	}
}

// applyFilters recomputes the visible pattern rows from the facet state.
func (m *Model) applyFilters() {
	facets := m.filters.facets
	rows := make([]*patternRow, 0, len(m.data.rows))
	for _, r := range m.data.rows {
		if facets.matchesRow(r) {
			rows = append(rows, r)
		}
	}
	m.patterns.setFilteredRows(rows)
	facets.updateCounts(m.data.rows)
	m.syncDetails()
}

// syncDetails shows the selected pattern's hits that pass the filters.
func (m *Model) syncDetails() {
	row := m.patterns.selectedRow()
	if row == nil {
		m.details.setPattern(nil, nil)
		return
	}
	hits := make([]*hitRow, 0, len(row.Hits))
	for _, h := range row.Hits {
		if m.filters.facets.matchesHit(h) {
			hits = append(hits, h)
		}
	}
	m.details.setPattern(row, hits)
}

// openSource opens the selected hit's file in $PAGER at the hit's line. When
// the file is gone its stored blob is paged instead, and failing that the
// snippet is shown in an overlay.
func (m *Model) openSource() tea.Cmd {
	h := m.details.selectedHit()
	if h == nil {
		return nil
	}

	if info, err := os.Stat(h.Path); err == nil && info.Mode().IsRegular() {
		return openInPager(h.Path, h.Location.Start.Line)
	}
	if m.blobs != nil && m.blobs.Exists(h.Source) {
		return openInPager(m.blobs.Path(h.Source), h.Location.Start.Line)
	}

	var sb strings.Builder
	sb.Write(h.Snippet.Before)
	sb.Write(h.Snippet.Matching)
	sb.Write(h.Snippet.After)

	m.sourceContent = printableLines(sb.String())
	m.sourceOffset = 0
	m.activeOverlay = overlaySource
	return nil
}

func printableLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = printable([]byte(l))
	}
	return strings.Join(lines, "\n")
}

func openInPager(filePath string, line int) tea.Cmd {
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = "less"
	}

	var args []string
	if line > 0 && pager == "less" {
		args = append(args, fmt.Sprintf("+%d", line))
	}
	args = append(args, filePath)

	c := exec.Command(pager, args...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return pagerFinishedMsg{err: err}
	})
}

// Close releases resources held by the model.
func (m *Model) Close() error {
	if m.data != nil {
		return m.data.close()
	}
	return nil
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = helpKeyStyle
	h.Styles.ShortDesc = helpDescStyle
	h.Styles.FullKey = helpKeyStyle
	h.Styles.FullDesc = helpDescStyle
	return h
}

// helpContent renders the key table for the help screen.
func (m Model) helpContent(width int) string {
	h := newHelp()
	h.ShowAll = true
	h.Width = width
	return "acwasm explore - interactive hits browser\n\n" + h.FullHelpView(defaultKeys.FullHelp()) +
		"\n\nSource opens $PAGER at the hit's line when the file exists, otherwise\n" +
		"the stored blob (--blobs) or the snippet.\n"
}
