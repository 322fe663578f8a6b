package report

import (
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	january = model.DateRange{Start: testutil.Day(2024, 1, 1), End: testutil.Day(2024, 1, 31)}
	today   = time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)
	unit    = NewRateTable(map[string]decimal.Decimal{"chk": decimal.NewFromInt(1)})
)

func aggregate(t *testing.T, ledger *testutil.Ledger, window model.DateRange, ignoreFuture bool, rates RateTable) *Aggregation {
	t.Helper()
	agg, err := Aggregate(AggregateInput{
		Range:        window,
		IgnoreFuture: ignoreFuture,
		Today:        today,
		Transactions: ledger.TxnList,
		Splits:       ledger.Splits,
		Rates:        rates,
	})
	require.NoError(t, err)
	return agg
}

func TestAggregate_ExcludesVoidAndTransfer(t *testing.T) {
	base := testutil.NewLedger().
		Deposit("t1", "chk", "p1", testutil.Day(2024, 1, 5), "100").
		Withdrawal("t2", "chk", "p1", testutil.Day(2024, 1, 6), "40")
	before := aggregate(t, base, january, false, unit)

	noisy := testutil.NewLedger().
		Deposit("t1", "chk", "p1", testutil.Day(2024, 1, 5), "100").
		Withdrawal("t2", "chk", "p1", testutil.Day(2024, 1, 6), "40").
		Deposit("t3", "chk", "p1", testutil.Day(2024, 1, 7), "999").
		Void("t3").
		Withdrawal("t4", "chk", "p2", testutil.Day(2024, 1, 7), "555").
		Void("t4").
		Transfer("t5", "chk", "p2", testutil.Day(2024, 1, 8), "1000")
	after := aggregate(t, noisy, january, false, unit)

	assertDecimal(t, before.Totals.Positive.String(), after.Totals.Positive)
	assertDecimal(t, before.Totals.Negative.String(), after.Totals.Negative)
	assert.NotContains(t, after.Stats, "p2")
	assert.Equal(t, 2, after.Skipped[SkipVoid])
	assert.Equal(t, 1, after.Skipped[SkipTransfer])
	assert.Equal(t, 2, after.Included)
}

func TestAggregate_SumsMatchTotals(t *testing.T) {
	ledger := testutil.NewLedger().
		Deposit("t1", "chk", "p1", testutil.Day(2024, 1, 2), "100.10").
		Withdrawal("t2", "chk", "p1", testutil.Day(2024, 1, 3), "40.05").
		Deposit("t3", "chk", "p2", testutil.Day(2024, 1, 4), "50").
		WithSplits("t3", "30", "-5", "25").
		Withdrawal("t4", "eur", "p3", testutil.Day(2024, 1, 5), "12.5").
		WithSplits("t4", "-2.5", "15").
		Withdrawal("t5", "eur", "p2", testutil.Day(2024, 1, 6), "7")

	rates := NewRateTable(map[string]decimal.Decimal{
		"chk": decimal.NewFromInt(1),
		"eur": testutil.Dec("1.1"),
	})
	agg := aggregate(t, ledger, january, false, rates)

	income, expense := decimal.Zero, decimal.Zero
	for _, stat := range agg.Stats {
		income = income.Add(stat.Income)
		expense = expense.Add(stat.Expense)
		assert.False(t, stat.Expense.IsPositive())
	}
	assertDecimal(t, agg.Totals.Positive.String(), income)
	assertDecimal(t, agg.Totals.Negative.String(), expense)

	assertDecimal(t, "100.10", agg.Stats["p1"].Income)
	assertDecimal(t, "-40.05", agg.Stats["p1"].Expense)
	assertDecimal(t, "55", agg.Stats["p2"].Income)
	assertDecimal(t, "-12.7", agg.Stats["p2"].Expense)
	assertDecimal(t, "2.75", agg.Stats["p3"].Income)
	assertDecimal(t, "-16.5", agg.Stats["p3"].Expense)
}

func TestAggregate_Idempotent(t *testing.T) {
	ledger := testutil.NewLedger().
		Deposit("t1", "chk", "p1", testutil.Day(2024, 1, 2), "10").
		Withdrawal("t2", "chk", "p2", testutil.Day(2024, 1, 2), "20").
		Deposit("t3", "chk", "p3", testutil.Day(2024, 1, 2), "30")

	first := aggregate(t, ledger, january, false, unit)

	// provider order must not matter
	reversed := testutil.NewLedger()
	for i := len(ledger.TxnList) - 1; i >= 0; i-- {
		reversed.TxnList = append(reversed.TxnList, ledger.TxnList[i])
	}
	second := aggregate(t, reversed, january, false, unit)

	require.Len(t, second.Stats, len(first.Stats))
	for id, stat := range first.Stats {
		assertDecimal(t, stat.Income.String(), second.Stats[id].Income)
		assertDecimal(t, stat.Expense.String(), second.Stats[id].Expense)
	}
	assertDecimal(t, first.Totals.Net().String(), second.Totals.Net())
}

func TestAggregate_FutureTransactions(t *testing.T) {
	ledger := testutil.NewLedger().
		Deposit("past", "chk", "p1", testutil.Day(2024, 1, 19), "10").
		Deposit("later-today", "chk", "p1", time.Date(2024, 1, 20, 23, 30, 0, 0, time.UTC), "20").
		Deposit("tomorrow", "chk", "p1", testutil.Day(2024, 1, 21), "40")

	tests := []struct {
		name         string
		wantIncome   string
		wantSkipped  int
		ignoreFuture bool
	}{
		{name: "future included", ignoreFuture: false, wantIncome: "70", wantSkipped: 0},
		{name: "future ignored", ignoreFuture: true, wantIncome: "30", wantSkipped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := aggregate(t, ledger, january, tt.ignoreFuture, unit)
			assertDecimal(t, tt.wantIncome, agg.Totals.Positive)
			assert.Equal(t, tt.wantSkipped, agg.Skipped[SkipFuture])
		})
	}
}

func TestAggregate_FutureUsesTodaysZone(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 02:00 UTC on the 11th is still the evening of the 10th in EST.
	ledger := testutil.NewLedger().
		Deposit("evening", "chk", "p1", time.Date(2024, 1, 11, 2, 0, 0, 0, time.UTC), "25").
		Deposit("next-day", "chk", "p1", time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC), "50")

	agg, err := Aggregate(AggregateInput{
		Range:        model.DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, est), End: time.Date(2024, 1, 31, 0, 0, 0, 0, est)},
		IgnoreFuture: true,
		Today:        time.Date(2024, 1, 10, 23, 30, 0, 0, est),
		Transactions: ledger.TxnList,
		Splits:       ledger.Splits,
		Rates:        unit,
	})
	require.NoError(t, err)
	assertDecimal(t, "25", agg.Totals.Positive)
	assert.Equal(t, 1, agg.Skipped[SkipFuture])
}

func TestAggregate_Window(t *testing.T) {
	ledger := testutil.NewLedger().
		Deposit("before", "chk", "p1", time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC), "1").
		Deposit("first-morning", "chk", "p1", time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), "10").
		Deposit("last-evening", "chk", "p1", time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC), "100").
		Deposit("after", "chk", "p1", testutil.Day(2024, 2, 1), "1000")

	dateOnly := model.DateRange{
		Start: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
	}
	withTime := dateOnly
	withTime.WithTime = true

	tests := []struct {
		name       string
		wantIncome string
		window     model.DateRange
	}{
		{name: "date only ignores time of day", window: dateOnly, wantIncome: "110"},
		{name: "with time compares instants", window: withTime, wantIncome: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := aggregate(t, ledger, tt.window, false, unit)
			assertDecimal(t, tt.wantIncome, agg.Totals.Positive)
		})
	}
}

func TestAggregate_EmptyWindow(t *testing.T) {
	ledger := testutil.NewLedger().
		Deposit("t1", "chk", "p1", testutil.Day(2024, 1, 5), "100")

	backwards := model.DateRange{Start: testutil.Day(2024, 1, 31), End: testutil.Day(2024, 1, 1)}
	agg := aggregate(t, ledger, backwards, false, unit)

	assert.Empty(t, agg.Stats)
	assert.True(t, agg.Totals.Positive.IsZero())
	assert.True(t, agg.Totals.Negative.IsZero())
}

func TestAggregate_MissingRateFallsBackToOne(t *testing.T) {
	ledger := testutil.NewLedger().
		Deposit("t1", "nok", "p1", testutil.Day(2024, 1, 5), "100").
		Withdrawal("t2", "nok", "p1", testutil.Day(2024, 1, 6), "30").
		Deposit("t3", "chk", "p1", testutil.Day(2024, 1, 7), "1")

	agg := aggregate(t, ledger, january, false, unit)

	require.Len(t, agg.Warnings, 1, "one warning per account")
	var rw *RateWarning
	require.True(t, errors.As(agg.Warnings[0], &rw))
	assert.Equal(t, "nok", rw.AccountID)
	assert.ErrorIs(t, agg.Warnings[0], common.ErrUnknownAccount)

	assertDecimal(t, "101", agg.Stats["p1"].Income)
	assertDecimal(t, "-30", agg.Stats["p1"].Expense)
}

func TestAggregate_CorruptDataset(t *testing.T) {
	ledger := testutil.NewLedger().
		Deposit("t1", "chk", "p1", testutil.Day(2024, 1, 5), "100").
		WithSplits("ghost", "10")

	_, err := Aggregate(AggregateInput{
		Range:        january,
		Today:        today,
		Transactions: ledger.TxnList,
		Splits:       ledger.Splits,
		Rates:        unit,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCorruptDataset)
	assert.Contains(t, err.Error(), "ghost")
}

func TestAggregate_NoTransactions(t *testing.T) {
	agg := aggregate(t, testutil.NewLedger(), january, true, unit)

	assert.Empty(t, agg.Stats)
	assert.Empty(t, agg.Warnings)
	assert.Equal(t, 0, agg.Included)
}
