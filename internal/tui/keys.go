package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines the dashboard keybindings.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Advance  key.Binding
	Fallback key.Binding
	Refresh  key.Binding
	Sound    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns the bindings shown in the mini help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Advance, k.Refresh, k.Sound, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Advance, k.Fallback},
		{k.Refresh, k.Sound, k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Advance: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "advance status"),
	),
	Fallback: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "alternate status"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh now"),
	),
	Sound: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "enable sound"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
