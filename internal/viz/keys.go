package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	KickAll key.Binding
	Kick    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Stiffer key.Binding
	Looser  key.Binding
	Overlay key.Binding
	Theme   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		KickAll: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "kick all")),
		Kick:    key.NewBinding(key.WithKeys("enter", "k"), key.WithHelp("enter", "kick selected")),
		Next:    key.NewBinding(key.WithKeys("tab", "down", "j"), key.WithHelp("tab/↓", "next")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("↑", "previous")),
		Stiffer: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "decay +10%")),
		Looser:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "decay -10%")),
		Overlay: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overlay")),
		Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.KickAll, k.Kick, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.KickAll, k.Kick, k.Next, k.Prev},
		{k.Stiffer, k.Looser, k.Overlay, k.Theme},
		{k.Help, k.Quit},
	}
}
