// Package cli renders payee reports and import summaries for the terminal.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#5B8DEF")
	muted   = lipgloss.Color("#666666")
	rule    = lipgloss.Color("#333")
	green   = lipgloss.Color("#6BCB77")
	red     = lipgloss.Color("#FF6B6B")
	yellow  = lipgloss.Color("#FFE66D")
	teal    = lipgloss.Color("#4ECDC4")
	paleTea = lipgloss.Color("#95E1D3")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	successStyle = lipgloss.NewStyle().Foreground(teal)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	infoStyle    = lipgloss.NewStyle().Foreground(paleTea)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(rule).
			Padding(1, 2)

	// SubtitleStyle renders the report caption under the title.
	SubtitleStyle = lipgloss.NewStyle().Foreground(muted).MarginBottom(1)
	// WarningStyle flags missing rates and skipped rows.
	WarningStyle = lipgloss.NewStyle().Foreground(yellow)
	SubtleStyle  = lipgloss.NewStyle().Foreground(muted)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// IncomeStyle and ExpenseStyle color the sign of an amount.
	IncomeStyle  = lipgloss.NewStyle().Foreground(green)
	ExpenseStyle = lipgloss.NewStyle().Foreground(red)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(rule)
	// TableFooterStyle draws the totals line.
	TableFooterStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderTop(true).
				BorderForeground(rule)
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

const (
	successIcon = "✓"
	errorIcon   = "✗"
	warningIcon = "⚠️"
	infoIcon    = "ℹ️"
	reportIcon  = "📊"
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return successStyle.Render(successIcon + " " + message)
}

func FormatError(message string) string {
	return errorStyle.Render(errorIcon + " " + message)
}

func FormatWarning(message string) string {
	return WarningStyle.Render(warningIcon + " " + message)
}

func FormatInfo(message string) string {
	return infoStyle.Render(infoIcon + " " + message)
}

// FormatTitle renders a report heading.
func FormatTitle(title string) string {
	return titleStyle.Render(reportIcon + " " + title)
}

// FormatPrompt renders a question waiting for user input.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox frames content under a title, as used by the import summaries.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.UnsetMargins().Render(title),
		content,
	))
}
