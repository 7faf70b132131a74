package explore

import "github.com/charmbracelet/bubbles/key"

// keyMap lists every binding of the TUI. It satisfies help.KeyMap so the
// status bar and help screen are generated from the same table.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	FocusFilters  key.Binding
	FocusPatterns key.Binding
	FocusDetails  key.Binding

	ToggleFilter key.Binding
	ResetFilter  key.Binding

	NextHit key.Binding
	PrevHit key.Binding

	OpenSource    key.Binding
	ToggleHelp    key.Binding
	ToggleFilters key.Binding

	SortNext    key.Binding
	SortReverse key.Binding

	Quit      key.Binding
	ForceQuit key.Binding
}

func binding(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

var defaultKeys = keyMap{
	Up:       binding("k/↑", "up", "up", "k"),
	Down:     binding("j/↓", "down", "down", "j"),
	Left:     binding("h/←", "prev hit / collapse", "left", "h"),
	Right:    binding("l/→", "next hit / expand", "right", "l"),
	PageUp:   binding("C-b", "page up", "pgup", "ctrl+b"),
	PageDown: binding("C-f", "page down", "pgdown", "ctrl+f"),
	Home:     binding("g", "top", "home", "g"),
	End:      binding("G", "bottom", "end", "G"),

	FocusFilters:  binding("F1", "filters", "f1"),
	FocusPatterns: binding("p", "patterns", "p"),
	FocusDetails:  binding("d", "details", "d"),

	ToggleFilter: binding("x/spc", "toggle filter", "x", " ", "enter"),
	ResetFilter:  binding("C-r", "reset filters", "ctrl+r"),

	NextHit: binding("n", "next hit", "n"),
	PrevHit: binding("N", "previous hit", "N"),

	OpenSource:    binding("o", "source", "o"),
	ToggleHelp:    binding("?", "help", "?"),
	ToggleFilters: binding("F7", "show/hide filters", "f7"),

	SortNext:    binding("s", "sort", "s"),
	SortReverse: binding("S", "reverse sort", "S"),

	Quit:      binding("q", "quit", "q"),
	ForceQuit: binding("C-c", "quit", "ctrl+c"),
}

// ShortHelp is shown in the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.NextHit, k.FocusPatterns, k.SortNext, k.OpenSource, k.ToggleFilters, k.ToggleHelp}
}

// FullHelp is shown on the help screen, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown, k.Home, k.End},
		{k.FocusFilters, k.FocusPatterns, k.FocusDetails, k.ToggleFilters, k.ToggleFilter, k.ResetFilter},
		{k.NextHit, k.PrevHit, k.SortNext, k.SortReverse, k.OpenSource, k.ToggleHelp, k.Quit},
	}
}
