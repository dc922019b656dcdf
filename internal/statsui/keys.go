package statsui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Wider    key.Binding
	Narrower key.Binding
	Filter   key.Binding
	Open     key.Binding
	Clear    key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev tab")),
		Next:     key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→", "next tab")),
		Wider:    key.NewBinding(key.WithKeys("="), key.WithHelp("=", "wider window")),
		Narrower: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "narrower window")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filters")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sessions of text")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear text filter")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Narrower, k.Wider, k.Filter, k.Open, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next},
		{k.Narrower, k.Wider},
		{k.Filter, k.Open, k.Clear},
		{k.Quit},
	}
}
