package report

import (
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/shopspring/decimal"
)

// Contribution is what one transaction adds to its payee, in base currency.
// Expense is never positive.
type Contribution struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Classify converts a transaction into income and expense deltas.
//
// Without splits the nominal amount goes entirely to income (deposit) or
// expense (withdrawal). With splits each entry is routed by its own sign:
// in a deposit non-negative entries are income and negative entries are
// expense; in a withdrawal negative entries are income (refunds) and
// non-negative entries are expense. A zero entry is treated as non-negative.
// Transfers contribute nothing.
func Classify(txn model.Transaction, splits []model.SplitEntry, rate decimal.Decimal) Contribution {
	var c Contribution

	if txn.Type == model.TypeTransfer {
		return c
	}

	if len(splits) == 0 {
		if txn.Type == model.TypeDeposit {
			c.Income = txn.Amount.Mul(rate)
		} else {
			c.Expense = txn.Amount.Mul(rate).Neg()
		}
		return c
	}

	for _, entry := range splits {
		converted := entry.Amount.Mul(rate)
		if txn.Type == model.TypeDeposit {
			if !entry.Amount.IsNegative() {
				c.Income = c.Income.Add(converted)
			} else {
				c.Expense = c.Expense.Add(converted)
			}
		} else {
			if entry.Amount.IsNegative() {
				c.Income = c.Income.Sub(converted)
			} else {
				c.Expense = c.Expense.Sub(converted)
			}
		}
	}

	return c
}
