package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/service"
	"github.com/shopspring/decimal"
)

// UnknownPayee is shown when a payee name cannot be resolved.
const UnknownPayee = "Unknown payee"

// PayeeReport computes and holds the payee report for one date window.
// It is not safe for concurrent use.
type PayeeReport struct {
	ledger service.LedgerReader
	now    func() time.Time
	logger *slog.Logger

	window   model.DateRange
	rows     []model.ReportRow
	chart    []model.ValuePair
	warnings []error
	totals   model.Totals
}

// Option configures a PayeeReport.
type Option func(*PayeeReport)

// WithClock overrides the clock used to decide what is in the future.
func WithClock(now func() time.Time) Option {
	return func(r *PayeeReport) {
		r.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *PayeeReport) {
		r.logger = logger
	}
}

// New creates a payee report reading from ledger.
func New(ledger service.LedgerReader, opts ...Option) *PayeeReport {
	r := &PayeeReport{
		ledger: ledger,
		now:    time.Now,
		logger: slog.Default().With("component", "payee_report"),
		totals: model.Totals{Positive: decimal.Zero, Negative: decimal.Zero},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh recomputes the report for window. When ignoreFuture is set,
// transactions dated after today are left out. On error the previously
// computed state is kept.
func (r *PayeeReport) Refresh(ctx context.Context, window model.DateRange, ignoreFuture bool) error {
	accounts, err := r.ledger.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	rates, err := ResolveRates(ctx, r.ledger, accounts)
	if err != nil {
		return err
	}

	txns, err := r.ledger.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	splits, err := r.ledger.SplitEntriesByTransaction(ctx)
	if err != nil {
		return fmt.Errorf("failed to load split entries: %w", err)
	}

	agg, err := Aggregate(AggregateInput{
		Range:        window,
		IgnoreFuture: ignoreFuture,
		Today:        r.now(),
		Transactions: txns,
		Splits:       splits,
		Rates:        rates,
	})
	if err != nil {
		return err
	}

	for _, w := range agg.Warnings {
		r.logger.Warn("Currency rate missing", "error", w)
	}

	payeeIDs := make([]string, 0, len(agg.Stats))
	for id := range agg.Stats {
		payeeIDs = append(payeeIDs, id)
	}
	sort.Strings(payeeIDs)

	rows := make([]model.ReportRow, 0, len(payeeIDs))
	chart := make([]model.ValuePair, 0)
	totals := model.Totals{Positive: decimal.Zero, Negative: decimal.Zero}

	for _, id := range payeeIDs {
		stat := agg.Stats[id]

		name, nameErr := r.ledger.PayeeName(ctx, id)
		if nameErr != nil || name == "" {
			r.logger.Debug("Payee name unavailable", "payee_id", id, "error", nameErr)
			name = UnknownPayee
		}

		row := model.ReportRow{
			PayeeID: id,
			Name:    name,
			Income:  stat.Income,
			Expense: stat.Expense,
		}
		rows = append(rows, row)

		totals.Positive = totals.Positive.Add(stat.Income)
		totals.Negative = totals.Negative.Add(stat.Expense)

		if diff := row.Difference(); diff.IsNegative() {
			chart = append(chart, model.ValuePair{Label: name, Amount: diff})
		}
	}

	r.logger.Debug("Payee report refreshed",
		"payees", len(rows),
		"included", agg.Included,
		"skipped", agg.Skipped,
		"warnings", len(agg.Warnings))

	r.window = window
	r.rows = rows
	r.chart = chart
	r.totals = totals
	r.warnings = agg.Warnings
	return nil
}

// Rows returns a ranked copy of the report rows.
func (r *PayeeReport) Rows(key model.SortKey) []model.ReportRow {
	rows := make([]model.ReportRow, len(r.rows))
	copy(rows, r.rows)
	Rank(rows, key)
	return rows
}

// Totals returns the grand totals of the last refresh.
func (r *PayeeReport) Totals() model.Totals {
	return r.totals
}

// ChartValues returns one value per payee whose difference is negative.
func (r *PayeeReport) ChartValues() []model.ValuePair {
	out := make([]model.ValuePair, len(r.chart))
	copy(out, r.chart)
	return out
}

// Warnings returns the degraded-input warnings of the last refresh.
func (r *PayeeReport) Warnings() []error {
	out := make([]error, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Window returns the date window of the last refresh.
func (r *PayeeReport) Window() model.DateRange {
	return r.window
}

// Document renders the last refresh for presentation.
func (r *PayeeReport) Document(key model.SortKey, title, chartRef string) Document {
	if !key.Valid() {
		key = model.SortByDifference
	}
	return BuildDocument(title, r.window, chartRef, key, r.Rows(key), r.totals, r.chart, r.warnings)
}
