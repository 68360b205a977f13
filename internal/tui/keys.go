package tui

import "charm.land/bubbles/v2/key"

// KeyMap holds the wizard's key bindings.
type KeyMap struct {
	Next key.Binding
	Prev key.Binding
	Link key.Binding
	Skip key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default wizard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "enter", "n"),
			key.WithHelp("→/enter", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "p"),
			key.WithHelp("←", "back"),
		),
		Link: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "sign in"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip step"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "save & quit"),
		),
	}
}
