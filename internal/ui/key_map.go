package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	toggle   key.Binding
	add      key.Binding
	remove   key.Binding
	cart     key.Binding
	history  key.Binding
	checkout key.Binding
	yes      key.Binding
	no       key.Binding
	restart  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to cart")),
		remove:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		cart:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cart")),
		history:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		checkout: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "checkout")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		restart:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.toggle, k.add, k.remove, k.checkout},
		{k.cart, k.history, k.restart, k.quit},
	}
}
