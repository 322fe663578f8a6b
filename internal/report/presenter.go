package report

import (
	"fmt"

	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/shopspring/decimal"
)

// Layouts used for the date caption.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

// TotalLabel labels the footer row.
const TotalLabel = "Total:"

// Columns are the report column headers, in display order.
var Columns = []string{"Payee", "Income", "Expense", "Difference"}

// DocumentRow is one rendered payee line.
type DocumentRow struct {
	Payee      string          `json:"payee"`
	PayeeID    string          `json:"payee_id"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Difference decimal.Decimal `json:"difference"`
}

// DocumentFooter carries the grand totals.
type DocumentFooter struct {
	Label    string          `json:"label"`
	Positive decimal.Decimal `json:"positive"`
	Negative decimal.Decimal `json:"negative"`
	Net      decimal.Decimal `json:"net"`
}

// ChartSlice is one slice of the expense distribution chart.
type ChartSlice struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Document is the presentation-ready payee report. Sinks (terminal, JSON,
// Sheets, HTTP) render it as they see fit but never alter its values.
type Document struct {
	Title    string         `json:"title"`
	Period   string         `json:"period,omitempty"`
	Caption  string         `json:"caption"`
	ChartRef string         `json:"chart_ref,omitempty"`
	SortKey  string         `json:"sort"`
	Columns  []string       `json:"columns"`
	Rows     []DocumentRow  `json:"rows"`
	Chart    []ChartSlice   `json:"chart"`
	Warnings []string       `json:"warnings,omitempty"`
	Footer   DocumentFooter `json:"footer"`
}

// Caption formats the window for display, with or without the time of day.
func Caption(r model.DateRange) string {
	layout := DateLayout
	if r.WithTime {
		layout = DateTimeLayout
	}
	return fmt.Sprintf("From %s till %s", r.Start.Format(layout), r.End.Format(layout))
}

// BuildDocument assembles a Document from already ranked rows.
func BuildDocument(title string, window model.DateRange, chartRef string, key model.SortKey, rows []model.ReportRow, totals model.Totals, chart []model.ValuePair, warnings []error) Document {
	doc := Document{
		Title:    title,
		Period:   window.Title,
		Caption:  Caption(window),
		ChartRef: chartRef,
		SortKey:  key.String(),
		Columns:  append([]string(nil), Columns...),
		Rows:     make([]DocumentRow, 0, len(rows)),
		Chart:    make([]ChartSlice, 0, len(chart)),
		Footer: DocumentFooter{
			Label:    TotalLabel,
			Positive: totals.Positive,
			Negative: totals.Negative,
			Net:      totals.Net(),
		},
	}

	for _, row := range rows {
		doc.Rows = append(doc.Rows, DocumentRow{
			Payee:      row.Name,
			PayeeID:    row.PayeeID,
			Income:     row.Income,
			Expense:    row.Expense,
			Difference: row.Difference(),
		})
	}
	for _, v := range chart {
		doc.Chart = append(doc.Chart, ChartSlice{Label: v.Label, Amount: v.Amount})
	}
	for _, w := range warnings {
		doc.Warnings = append(doc.Warnings, w.Error())
	}

	return doc
}
