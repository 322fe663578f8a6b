package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/payee-flow/internal/report"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ChartWidth is the length of the longest bar in the expense chart.
const ChartWidth = 30

// FormatAmount renders an amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func styledAmount(d decimal.Decimal, width int) string {
	style := lipgloss.NewStyle().Width(width).Align(lipgloss.Right)
	switch {
	case d.IsPositive():
		style = style.Inherit(IncomeStyle)
	case d.IsNegative():
		style = style.Inherit(ExpenseStyle)
	}
	return style.Render(FormatAmount(d))
}

// RenderReport writes the document as a table with a totals footer, followed by
// any warnings and the expense distribution chart.
func RenderReport(w io.Writer, doc report.Document) error {
	var b strings.Builder

	b.WriteString(FormatTitle(doc.Title))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(doc.Caption))
	b.WriteString("\n")

	b.WriteString(renderTable(doc))

	if len(doc.Warnings) > 0 {
		b.WriteString("\n")
		for _, warning := range doc.Warnings {
			b.WriteString(FormatWarning(warning))
			b.WriteString("\n")
		}
	}

	if chart := RenderChart(doc); chart != "" {
		b.WriteString("\n")
		b.WriteString(chart)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func renderTable(doc report.Document) string {
	widths := make([]int, len(report.Columns))
	for i, c := range report.Columns {
		widths[i] = lipgloss.Width(c)
	}
	measure := func(i int, s string) {
		if n := lipgloss.Width(s); n > widths[i] {
			widths[i] = n
		}
	}
	for _, row := range doc.Rows {
		measure(0, row.Payee)
		measure(1, FormatAmount(row.Income))
		measure(2, FormatAmount(row.Expense))
		measure(3, FormatAmount(row.Difference))
	}
	measure(0, doc.Footer.Label)
	measure(1, FormatAmount(doc.Footer.Positive))
	measure(2, FormatAmount(doc.Footer.Negative))
	measure(3, FormatAmount(doc.Footer.Net))

	var b strings.Builder

	header := make([]string, len(report.Columns))
	for i, c := range report.Columns {
		align := lipgloss.Right
		if i == 0 {
			align = lipgloss.Left
		}
		header[i] = TableCellStyle.Width(widths[i] + 2).Align(align).Render(c)
	}
	b.WriteString(TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, header...)))
	b.WriteString("\n")

	for _, row := range doc.Rows {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			TableCellStyle.Width(widths[0]+2).Render(row.Payee),
			TableCellStyle.Render(styledAmount(row.Income, widths[1])),
			TableCellStyle.Render(styledAmount(row.Expense, widths[2])),
			TableCellStyle.Render(styledAmount(row.Difference, widths[3])),
		))
		b.WriteString("\n")
	}

	if len(doc.Rows) == 0 {
		b.WriteString(SubtleStyle.Render("No transactions in this period."))
		b.WriteString("\n")
	}

	footer := lipgloss.JoinHorizontal(lipgloss.Top,
		TableCellStyle.Width(widths[0]+2).Render(doc.Footer.Label),
		TableCellStyle.Render(styledAmount(doc.Footer.Positive, widths[1])),
		TableCellStyle.Render(styledAmount(doc.Footer.Negative, widths[2])),
		TableCellStyle.Render(styledAmount(doc.Footer.Net, widths[3])),
	)
	b.WriteString(TableFooterStyle.Render(footer))
	b.WriteString("\n")

	return b.String()
}

// RenderChart draws the expense distribution as horizontal bars scaled to the
// largest slice. It returns an empty string when there is nothing to chart.
func RenderChart(doc report.Document) string {
	if len(doc.Chart) == 0 {
		return ""
	}

	labelWidth := 0
	largest := decimal.Zero
	for _, slice := range doc.Chart {
		if n := lipgloss.Width(slice.Label); n > labelWidth {
			labelWidth = n
		}
		if a := slice.Amount.Abs(); a.GreaterThan(largest) {
			largest = a
		}
	}

	var b strings.Builder
	title := "Expenses by payee"
	if doc.ChartRef != "" {
		title += " (" + doc.ChartRef + ")"
	}
	b.WriteString(BoldStyle.Render(title))
	b.WriteString("\n")

	for _, slice := range doc.Chart {
		bar := 1
		if largest.IsPositive() {
			bar = int(slice.Amount.Abs().Div(largest).Mul(decimal.NewFromInt(ChartWidth)).Round(0).IntPart())
			if bar < 1 {
				bar = 1
			}
		}
		b.WriteString(lipgloss.NewStyle().Width(labelWidth + 1).Render(slice.Label))
		b.WriteString(ExpenseStyle.Render(strings.Repeat("█", bar)))
		b.WriteString(" ")
		b.WriteString(FormatAmount(slice.Amount))
		b.WriteString("\n")
	}

	return b.String()
}

// WriteJSON writes the document as indented JSON.
func WriteJSON(w io.Writer, doc report.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
