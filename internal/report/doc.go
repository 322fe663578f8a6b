// Package report computes the payee income/expense report.
//
// A refresh resolves a base-currency rate per account, walks every
// transaction once, and accumulates per-payee income and expense. Void
// transactions, transfers, future-dated transactions (optionally) and
// transactions outside the date window never contribute. Split transactions
// are classified entry by entry so that a refund inside a withdrawal counts
// as income and an adjustment inside a deposit counts as expense.
//
// The computed state is read back through Rows, Totals and ChartValues, or
// rendered into a Document for presentation sinks.
package report
