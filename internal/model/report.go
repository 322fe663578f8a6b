package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateRange is an inclusive reporting window. When WithTime is false only the
// calendar day of each timestamp, as seen in Start's location, takes part in
// comparisons.
type DateRange struct {
	Start    time.Time
	End      time.Time
	Title    string
	WithTime bool
}

// Contains reports whether t falls inside the window, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	if r.WithTime {
		return !t.Before(r.Start) && !t.After(r.End)
	}
	loc := r.Start.Location()
	day := CalendarDay(t.In(loc))
	return !day.Before(CalendarDay(r.Start)) && !day.After(CalendarDay(r.End.In(loc)))
}

// IsEmpty reports whether no instant can fall inside the window.
func (r DateRange) IsEmpty() bool {
	if r.WithTime {
		return r.End.Before(r.Start)
	}
	return CalendarDay(r.End.In(r.Start.Location())).Before(CalendarDay(r.Start))
}

// CalendarDay strips the time of day, keeping the date as seen in t's location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PayeeStat accumulates base-currency income and expense for one payee.
// Expense is kept non-positive.
type PayeeStat struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income plus expense.
func (s PayeeStat) Net() decimal.Decimal {
	return s.Income.Add(s.Expense)
}

// ReportRow is one payee line of the payee report.
type ReportRow struct {
	PayeeID string
	Name    string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Difference returns income plus expense.
func (r ReportRow) Difference() decimal.Decimal {
	return r.Income.Add(r.Expense)
}

// ValuePair is a labelled amount feeding the distribution chart.
type ValuePair struct {
	Label  string
	Amount decimal.Decimal
}

// Totals are the grand totals across all payees.
type Totals struct {
	Positive decimal.Decimal
	Negative decimal.Decimal
}

// Net returns positive plus negative.
func (t Totals) Net() decimal.Decimal {
	return t.Positive.Add(t.Negative)
}

// SortKey selects the ordering of report rows.
type SortKey int

// Sort keys. SortByDifference is the default.
const (
	SortByName SortKey = iota + 1
	SortByIncome
	SortByExpense
	SortByDifference
)

// String returns the textual form accepted by ParseSortKey.
func (k SortKey) String() string {
	switch k {
	case SortByName:
		return "name"
	case SortByIncome:
		return "income"
	case SortByExpense:
		return "expense"
	default:
		return "difference"
	}
}

// Valid reports whether k is one of the known sort keys.
func (k SortKey) Valid() bool {
	return k >= SortByName && k <= SortByDifference
}

// ParseSortKey converts text into a SortKey. Unknown input yields SortByDifference.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "payee":
		return SortByName
	case "income", "incomes":
		return SortByIncome
	case "expense", "expenses":
		return SortByExpense
	default:
		return SortByDifference
	}
}

// Period names understood by PeriodRange.
const (
	PeriodAllTime      = "all"
	PeriodCurrentMonth = "current-month"
	PeriodLastMonth    = "last-month"
	PeriodLast30Days   = "last-30-days"
	PeriodLast90Days   = "last-90-days"
	PeriodLast12Months = "last-12-months"
	PeriodCurrentYear  = "current-year"
	PeriodLastYear     = "last-year"
)

// PeriodRange builds a named date-only range relative to now.
func PeriodRange(name string, now time.Time) (DateRange, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	var r DateRange
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PeriodAllTime, "":
		r = DateRange{Start: time.Date(1900, 1, 1, 0, 0, 0, 0, now.Location()), End: time.Date(9999, 12, 31, 0, 0, 0, 0, now.Location()), Title: "Over Time"}
	case PeriodCurrentMonth:
		r = DateRange{Start: monthStart, End: monthStart.AddDate(0, 1, -1), Title: "Current Month"}
	case PeriodLastMonth:
		r = DateRange{Start: monthStart.AddDate(0, -1, 0), End: monthStart.AddDate(0, 0, -1), Title: "Last Month"}
	case PeriodLast30Days:
		r = DateRange{Start: today.AddDate(0, 0, -29), End: today, Title: "Last 30 Days"}
	case PeriodLast90Days:
		r = DateRange{Start: today.AddDate(0, 0, -89), End: today, Title: "Last 90 Days"}
	case PeriodLast12Months:
		r = DateRange{Start: monthStart.AddDate(-1, 1, 0), End: monthStart.AddDate(0, 1, -1), Title: "Last 12 Months"}
	case PeriodCurrentYear:
		r = DateRange{Start: yearStart, End: yearStart.AddDate(1, 0, -1), Title: "Current Year"}
	case PeriodLastYear:
		r = DateRange{Start: yearStart.AddDate(-1, 0, 0), End: yearStart.AddDate(0, 0, -1), Title: "Last Year"}
	default:
		return DateRange{}, fmt.Errorf("unknown period %q", name)
	}
	return r, nil
}
