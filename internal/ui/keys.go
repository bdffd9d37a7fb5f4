package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the key bindings for every screen
type KeyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Close     key.Binding
	Open      key.Binding
	Copy      key.Binding
	Pager     key.Binding
	Help      key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		Up:        key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in maps")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy share link")),
		Pager:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view in pager")),
		Help:      key.NewBinding(key.WithKeys("?", "f1"), key.WithHelp("?", "help")),
		Back:      key.NewBinding(key.WithKeys("b", "backspace"), key.WithHelp("b", "back")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// searchKeys implements help.KeyMap for the address screen
type searchKeys struct{ KeyMap }

func (k searchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Up, k.Down, k.Enter, k.Close, k.Quit}
}

func (k searchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// resultKeys implements help.KeyMap for the places and details screens
type resultKeys struct{ KeyMap }

func (k resultKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Open, k.Copy, k.Pager, k.Back, k.Help, k.Quit}
}

func (k resultKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
