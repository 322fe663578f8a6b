package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/payee-flow/internal/cli"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.theme.Title.Render(m.doc.Title))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(m.doc.Caption))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render("Sorted by " + m.sortKey.String()))
	b.WriteString("\n\n")

	if len(m.doc.Rows) == 0 {
		b.WriteString(m.theme.Subtitle.Render("No transactions in this period."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	b.WriteString("\n")

	if status := m.renderStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keymap))

	return b.String()
}

func (m Model) renderFooter() string {
	f := m.doc.Footer
	line := fmt.Sprintf("%s  income %s  expense %s  net %s",
		f.Label,
		m.amount(f.Positive),
		m.amount(f.Negative),
		m.amount(f.Net))
	return m.theme.Footer.Width(max(lipgloss.Width(line), m.width-2)).Render(line)
}

func (m Model) amount(d decimal.Decimal) string {
	switch {
	case d.IsPositive():
		return m.theme.Income.Render(cli.FormatAmount(d))
	case d.IsNegative():
		return m.theme.Expense.Render(cli.FormatAmount(d))
	default:
		return cli.FormatAmount(d)
	}
}

func (m Model) renderStatus() string {
	switch {
	case m.lastError != nil:
		return m.theme.StatusError.Render("Error: " + m.lastError.Error())
	case len(m.doc.Warnings) > 0:
		return m.theme.StatusWarn.Render(fmt.Sprintf("%d warning(s): %s", len(m.doc.Warnings), m.doc.Warnings[0]))
	case m.status != "":
		return m.theme.StatusInfo.Render(m.status)
	}
	return ""
}
