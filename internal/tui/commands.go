package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// refreshReport re-reads the ledger for the configured window.
func refreshReport(ctx context.Context, source Source, cfg Config) tea.Cmd {
	return func() tea.Msg {
		if err := source.Refresh(ctx, cfg.Window, cfg.IgnoreFuture); err != nil {
			return reportRefreshedMsg{err: fmt.Errorf("failed to refresh report: %w", err)}
		}
		return reportRefreshedMsg{}
	}
}

func showStatus(text string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text}
	}
}
