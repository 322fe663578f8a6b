// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/shopspring/decimal"
)

// LedgerReader is the read-only view of the ledger consumed by the payee report.
// Implementations must return a consistent snapshot for the duration of one report refresh.
type LedgerReader interface {
	Accounts(ctx context.Context) ([]model.Account, error)
	// CurrencyRate returns common.ErrMissingRate when the currency has no base rate.
	CurrencyRate(ctx context.Context, currencySymbol string) (decimal.Decimal, error)
	Transactions(ctx context.Context) ([]model.Transaction, error)
	SplitEntriesByTransaction(ctx context.Context) (map[string][]model.SplitEntry, error)
	PayeeName(ctx context.Context, payeeID string) (string, error)
}

// TransactionFilter defines filtering options for transaction listings.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountID string
	PayeeID   string
	Limit     int
	Offset    int
}

// LedgerWriter records ledger data coming from importers and CLI commands.
type LedgerWriter interface {
	SaveCurrency(ctx context.Context, currency *model.Currency) error
	SetCurrencyRate(ctx context.Context, symbol string, rate decimal.Decimal) error
	SaveAccount(ctx context.Context, account *model.Account) error
	SavePayee(ctx context.Context, payee *model.Payee) error
	SavePayees(ctx context.Context, payees []model.Payee) error
	// SaveTransactions stores transactions together with their split entries.
	// Transactions already present (same ID) are left untouched.
	SaveTransactions(ctx context.Context, transactions []model.Transaction, splits map[string][]model.SplitEntry) (int, error)
	SetTransactionStatus(ctx context.Context, transactionID string, status model.TransactionStatus) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	LedgerReader
	LedgerWriter

	GetCurrencies(ctx context.Context) ([]model.Currency, error)
	GetPayees(ctx context.Context) ([]model.Payee, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TransactionFetcher retrieves transactions from a remote source.
type TransactionFetcher interface {
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, []model.Payee, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
