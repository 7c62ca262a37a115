package dashboard

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the dashboard key bindings. Everything else is ignored.
type keyMap struct {
	Quit key.Binding
	Help key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q / ctrl+c", "quit and restore the terminal")),
			key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle this help")),
		},
	}
}
