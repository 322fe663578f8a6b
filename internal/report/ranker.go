package report

import (
	"sort"
	"strings"

	"github.com/Veraticus/payee-flow/internal/model"
)

// Rank sorts rows in place by key, ascending. Unknown keys sort by
// difference. Rows with an equal primary key are ordered by name and then by
// payee id, so ranking the same rows twice gives the same order.
func Rank(rows []model.ReportRow, key model.SortKey) {
	if !key.Valid() {
		key = model.SortByDifference
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		var c int
		switch key {
		case model.SortByName:
			c = strings.Compare(a.Name, b.Name)
		case model.SortByIncome:
			c = a.Income.Cmp(b.Income)
		case model.SortByExpense:
			c = a.Expense.Cmp(b.Expense)
		default:
			c = a.Difference().Cmp(b.Difference())
		}
		if c != 0 {
			return c < 0
		}

		if c = strings.Compare(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.PayeeID < b.PayeeID
	})
}
