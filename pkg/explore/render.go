package explore

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func keyMatches(msg tea.KeyMsg, binding key.Binding) bool {
	return key.Matches(msg, binding)
}

// truncateString cuts s to maxLen terminal cells, keeping escape sequences
// intact.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return ansi.Truncate(s, maxLen, "")
	}
	return ansi.Truncate(s, maxLen, "...")
}

func padRight(s string, width int) string {
	visLen := lipgloss.Width(s)
	if visLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visLen)
}

// stripAnsi removes escape sequences so a line can be restyled.
func stripAnsi(s string) string {
	return ansi.Strip(s)
}

// printable replaces control bytes with '.' so snippets cannot move the
// cursor or break the layout.
func printable(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range string(b) {
		switch {
		case c == '\t':
			sb.WriteString("  ")
		case c < 0x20 || c == 0x7f:
			sb.WriteByte('.')
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// boxed renders a pane body under a title bar with a border that tracks focus.
func boxed(title, body string, width, height int, focused bool) string {
	borderStyle := inactiveBorderStyle
	if focused {
		borderStyle = activeBorderStyle
	}
	content := borderStyle.
		Width(width - 2).
		Height(height - 3).
		Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content)
}

// listView is the cursor and scroll state shared by the list panes.
type listView struct {
	cursor int
	offset int
}

// navigate applies a movement key to a list of n rows with page visible
// rows. It reports whether msg was a movement key.
func (lv *listView) navigate(msg tea.KeyMsg, n, page int) bool {
	switch {
	case keyMatches(msg, defaultKeys.Up):
		lv.cursor--
	case keyMatches(msg, defaultKeys.Down):
		lv.cursor++
	case keyMatches(msg, defaultKeys.Home):
		lv.cursor = 0
	case keyMatches(msg, defaultKeys.End):
		lv.cursor = n - 1
	case keyMatches(msg, defaultKeys.PageDown):
		lv.cursor += page
	case keyMatches(msg, defaultKeys.PageUp):
		lv.cursor -= page
	default:
		return false
	}
	lv.clamp(n)
	lv.ensureVisible(page)
	return true
}

// clamp keeps the cursor inside a list of n rows.
func (lv *listView) clamp(n int) {
	lv.cursor = max(0, min(lv.cursor, n-1))
}

func (lv *listView) ensureVisible(page int) {
	if lv.cursor < lv.offset {
		lv.offset = lv.cursor
	}
	if lv.cursor >= lv.offset+page {
		lv.offset = lv.cursor - page + 1
	}
}

// window returns the range of rows to draw.
func (lv listView) window(n, page int) (start, end int) {
	start = min(lv.offset, max(0, n-1))
	return start, min(start+page, n)
}
