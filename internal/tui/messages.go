package tui

// reportRefreshedMsg reports the outcome of re-reading the ledger.
type reportRefreshedMsg struct {
	err error
}

// statusMsg shows a transient status line.
type statusMsg struct {
	text string
}
