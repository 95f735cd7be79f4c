package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up          key.Binding
	down        key.Binding
	enter       key.Binding
	back        key.Binding
	preexisting key.Binding
	irrelevant  key.Binding
	reconcile   key.Binding
	quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		preexisting: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle pre-existing"),
		),
		irrelevant: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "toggle irrelevant"),
		),
		reconcile: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "re-reconcile"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.preexisting, k.irrelevant},
		{k.reconcile, k.quit},
	}
}
