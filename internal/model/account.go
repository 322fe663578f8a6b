package model

import "github.com/shopspring/decimal"

// Account is a ledger account holding transactions in a single currency.
type Account struct {
	ID             string
	Name           string
	CurrencySymbol string
}

// Currency is a currency known to the ledger. BaseRate converts one unit
// into the base currency and is nil when no rate has been supplied.
type Currency struct {
	BaseRate *decimal.Decimal
	Symbol   string
	Name     string
}
