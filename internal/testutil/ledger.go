package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/service"
	"github.com/shopspring/decimal"
)

// Ledger is an in-memory service.LedgerReader built with a fluent API.
//
// Example:
//
//	ledger := testutil.NewLedger().
//		WithCurrency("USD", "1").
//		WithAccount("chk", "USD").
//		WithPayee("p1", "Grocer").
//		Deposit("t1", "chk", "p1", testutil.Day(2024, 1, 5), "100")
type Ledger struct {
	Rates       map[string]decimal.Decimal
	Payees      map[string]string
	Splits      map[string][]model.SplitEntry
	Errors      map[string]error
	AccountList []model.Account
	TxnList     []model.Transaction
	Currencies  []model.Currency
}

var _ service.LedgerReader = (*Ledger)(nil)

// Reader operation names accepted by FailOn.
const (
	OpAccounts     = "accounts"
	OpCurrencyRate = "currency_rate"
	OpTransactions = "transactions"
	OpSplits       = "splits"
	OpPayeeName    = "payee_name"
)

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Rates:  make(map[string]decimal.Decimal),
		Payees: make(map[string]string),
		Splits: make(map[string][]model.SplitEntry),
		Errors: make(map[string]error),
	}
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// WithCurrency registers a currency. An empty rate leaves the currency without one.
func (l *Ledger) WithCurrency(symbol, rate string) *Ledger {
	symbol = strings.ToUpper(symbol)
	cur := model.Currency{Symbol: symbol, Name: symbol}
	if rate != "" {
		r := Dec(rate)
		l.Rates[symbol] = r
		cur.BaseRate = &r
	}
	l.Currencies = append(l.Currencies, cur)
	return l
}

// WithAccount registers an account held in the given currency.
func (l *Ledger) WithAccount(id, currency string) *Ledger {
	l.AccountList = append(l.AccountList, model.Account{ID: id, Name: id, CurrencySymbol: strings.ToUpper(currency)})
	return l
}

// WithPayee registers a payee name.
func (l *Ledger) WithPayee(id, name string) *Ledger {
	l.Payees[id] = name
	return l
}

// Deposit adds a deposit.
func (l *Ledger) Deposit(id, account, payee string, date time.Time, amount string) *Ledger {
	return l.add(id, account, payee, date, amount, model.TypeDeposit, model.StatusNone)
}

// Withdrawal adds a withdrawal.
func (l *Ledger) Withdrawal(id, account, payee string, date time.Time, amount string) *Ledger {
	return l.add(id, account, payee, date, amount, model.TypeWithdrawal, model.StatusNone)
}

// Transfer adds a transfer.
func (l *Ledger) Transfer(id, account, payee string, date time.Time, amount string) *Ledger {
	return l.add(id, account, payee, date, amount, model.TypeTransfer, model.StatusNone)
}

// Void marks an existing transaction void.
func (l *Ledger) Void(id string) *Ledger {
	for i := range l.TxnList {
		if l.TxnList[i].ID == id {
			l.TxnList[i].Status = model.StatusVoid
		}
	}
	return l
}

// WithSplits attaches split entries to a transaction id. The id does not have
// to exist, which lets tests build corrupt datasets.
func (l *Ledger) WithSplits(txnID string, amounts ...string) *Ledger {
	for _, a := range amounts {
		l.Splits[txnID] = append(l.Splits[txnID], model.SplitEntry{
			ID:            int64(len(l.Splits[txnID]) + 1),
			TransactionID: txnID,
			Amount:        Dec(a),
		})
	}
	return l
}

// FailOn makes the named reader operation return err.
func (l *Ledger) FailOn(op string, err error) *Ledger {
	l.Errors[op] = err
	return l
}

func (l *Ledger) add(id, account, payee string, date time.Time, amount string, typ model.TransactionType, status model.TransactionStatus) *Ledger {
	l.TxnList = append(l.TxnList, model.Transaction{
		ID:        id,
		AccountID: account,
		PayeeID:   payee,
		Date:      date,
		Amount:    Dec(amount),
		Type:      typ,
		Status:    status,
	})
	return l
}

// Accounts implements service.LedgerReader.
func (l *Ledger) Accounts(_ context.Context) ([]model.Account, error) {
	if err := l.Errors[OpAccounts]; err != nil {
		return nil, err
	}
	out := make([]model.Account, len(l.AccountList))
	copy(out, l.AccountList)
	return out, nil
}

// CurrencyRate implements service.LedgerReader.
func (l *Ledger) CurrencyRate(_ context.Context, symbol string) (decimal.Decimal, error) {
	if err := l.Errors[OpCurrencyRate]; err != nil {
		return decimal.Zero, err
	}
	r, ok := l.Rates[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", common.ErrMissingRate, symbol)
	}
	return r, nil
}

// Transactions implements service.LedgerReader. Transactions are returned in
// reverse insertion order so consumers cannot rely on provider ordering.
func (l *Ledger) Transactions(_ context.Context) ([]model.Transaction, error) {
	if err := l.Errors[OpTransactions]; err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(l.TxnList))
	for i := len(l.TxnList) - 1; i >= 0; i-- {
		out = append(out, l.TxnList[i])
	}
	return out, nil
}

// SplitEntriesByTransaction implements service.LedgerReader.
func (l *Ledger) SplitEntriesByTransaction(_ context.Context) (map[string][]model.SplitEntry, error) {
	if err := l.Errors[OpSplits]; err != nil {
		return nil, err
	}
	out := make(map[string][]model.SplitEntry, len(l.Splits))
	for id, entries := range l.Splits {
		out[id] = append([]model.SplitEntry(nil), entries...)
	}
	return out, nil
}

// PayeeName implements service.LedgerReader.
func (l *Ledger) PayeeName(_ context.Context, payeeID string) (string, error) {
	if err := l.Errors[OpPayeeName]; err != nil {
		return "", err
	}
	name, ok := l.Payees[payeeID]
	if !ok {
		return "", fmt.Errorf("payee %s: %w", payeeID, common.ErrNotFound)
	}
	return name, nil
}

// PayeeList returns the registered payees ordered by id.
func (l *Ledger) PayeeList() []model.Payee {
	out := make([]model.Payee, 0, len(l.Payees))
	for id, name := range l.Payees {
		out = append(out, model.Payee{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
