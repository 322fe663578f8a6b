package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/shopspring/decimal"
)

// SkipReason records why a transaction did not contribute to the report.
type SkipReason string

// Reasons a transaction is left out.
const (
	SkipVoid        SkipReason = "void"
	SkipTransfer    SkipReason = "transfer"
	SkipFuture      SkipReason = "future"
	SkipOutOfWindow SkipReason = "out_of_window"
)

// AggregateInput is everything one aggregation pass reads.
type AggregateInput struct {
	Today        time.Time
	Splits       map[string][]model.SplitEntry
	Rates        RateTable
	Transactions []model.Transaction
	Range        model.DateRange
	IgnoreFuture bool
}

// Aggregation is the result of one aggregation pass.
type Aggregation struct {
	Stats    map[string]*model.PayeeStat
	Skipped  map[SkipReason]int
	Totals   model.Totals
	Warnings []error
	Included int
}

// RateWarning reports an account whose transactions were converted with the
// fallback rate of 1.
type RateWarning struct {
	Err       error
	AccountID string
}

func (w *RateWarning) Error() string {
	return fmt.Sprintf("account %s: %v (using rate 1)", w.AccountID, w.Err)
}

func (w *RateWarning) Unwrap() error {
	return w.Err
}

// Aggregate walks the transactions once and accumulates per-payee statistics
// and grand totals. A split group that references a transaction not present
// in the input fails with common.ErrCorruptDataset.
func Aggregate(in AggregateInput) (*Aggregation, error) {
	known := make(map[string]struct{}, len(in.Transactions))
	for _, txn := range in.Transactions {
		known[txn.ID] = struct{}{}
	}
	orphans := make([]string, 0)
	for txnID := range in.Splits {
		if _, ok := known[txnID]; !ok {
			orphans = append(orphans, txnID)
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		return nil, fmt.Errorf("%w: split entries reference unknown transaction %s", common.ErrCorruptDataset, orphans[0])
	}

	agg := &Aggregation{
		Stats:   make(map[string]*model.PayeeStat),
		Skipped: make(map[SkipReason]int),
		Totals:  model.Totals{Positive: decimal.Zero, Negative: decimal.Zero},
	}

	if in.Range.IsEmpty() {
		return agg, nil
	}

	// stored dates keep their own offset; days are counted in today's zone
	loc := in.Today.Location()
	today := model.CalendarDay(in.Today)
	warned := make(map[string]bool)

	for _, txn := range orderedTransactions(in.Transactions) {
		if reason, skip := skipReason(txn, in.Range, today, loc, in.IgnoreFuture); skip {
			agg.Skipped[reason]++
			continue
		}

		rate, err := in.Rates.Rate(txn.AccountID)
		if err != nil {
			rate = decimal.NewFromInt(1)
			if !warned[txn.AccountID] {
				warned[txn.AccountID] = true
				agg.Warnings = append(agg.Warnings, &RateWarning{AccountID: txn.AccountID, Err: err})
			}
		}

		c := Classify(txn, in.Splits[txn.ID], rate)

		stat, ok := agg.Stats[txn.PayeeID]
		if !ok {
			stat = &model.PayeeStat{Income: decimal.Zero, Expense: decimal.Zero}
			agg.Stats[txn.PayeeID] = stat
		}
		stat.Income = stat.Income.Add(c.Income)
		stat.Expense = stat.Expense.Add(c.Expense)

		agg.Totals.Positive = agg.Totals.Positive.Add(c.Income)
		agg.Totals.Negative = agg.Totals.Negative.Add(c.Expense)
		agg.Included++
	}

	return agg, nil
}

func skipReason(txn model.Transaction, window model.DateRange, today time.Time, loc *time.Location, ignoreFuture bool) (SkipReason, bool) {
	switch {
	case txn.IsVoid():
		return SkipVoid, true
	case txn.Type == model.TypeTransfer:
		return SkipTransfer, true
	case ignoreFuture && model.CalendarDay(txn.Date.In(loc)).After(today):
		return SkipFuture, true
	case !window.Contains(txn.Date):
		return SkipOutOfWindow, true
	}
	return "", false
}

// orderedTransactions returns the transactions sorted by date then id so
// warnings and accumulation order do not depend on provider ordering.
func orderedTransactions(txns []model.Transaction) []model.Transaction {
	ordered := make([]model.Transaction, len(txns))
	copy(ordered, txns)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}
