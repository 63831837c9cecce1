package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the play screen bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Funding key.Binding
	Ship    key.Binding
	Pause   key.Binding
	Share   key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Ship, k.Funding, k.Pause, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Ship, k.Funding, k.Pause},
		{k.Share, k.Reset, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "w"),
			key.WithHelp("up/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "choose"),
		),
		Funding: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle funding"),
		),
		Ship: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "ship release"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause clock"),
		),
		Share: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "share link"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new run"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
