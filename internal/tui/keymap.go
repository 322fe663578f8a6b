package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Sorting
	SortName       key.Binding
	SortIncome     key.Binding
	SortExpense    key.Binding
	SortDifference key.Binding
	CycleSort      key.Binding

	// Application
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("PgUp/Ctrl+B", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("PgDn/Ctrl+F", "page down"),
		),

		SortName: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "sort by payee"),
		),
		SortIncome: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "sort by income"),
		),
		SortExpense: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "sort by expense"),
		),
		SortDifference: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "sort by difference"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s", "tab"),
			key.WithHelp("s/Tab", "next sort"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q/Esc", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.CycleSort, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.SortName, k.SortIncome, k.SortExpense, k.SortDifference},
		{k.CycleSort, k.Refresh, k.Help, k.Quit},
	}
}
