package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the reader key bindings with built-in help text.
type KeyMap struct {
	Toggle    key.Binding
	Restart   key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Mode      key.Binding
	Chunk1    key.Binding
	Chunk2    key.Binding
	Chunk3    key.Binding
	Highlight key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		Restart: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "restart"),
		),
		Faster: key.NewBinding(
			key.WithKeys("+", "=", "up"),
			key.WithHelp("+", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("-", "_", "down"),
			key.WithHelp("-", "slower"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "single/flow"),
		),
		Chunk1: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "1 word"),
		),
		Chunk2: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "2 words"),
		),
		Chunk3: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "3 words"),
		),
		Highlight: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "flow highlight"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Restart, k.Faster, k.Slower, k.Mode, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Restart, k.Quit},
		{k.Faster, k.Slower, k.Mode},
		{k.Chunk1, k.Chunk2, k.Chunk3, k.Highlight},
		{k.Help},
	}
}
