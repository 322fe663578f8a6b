package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/payee-flow/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidSplit       = errors.New("invalid split entry")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidPayee       = errors.New("invalid payee")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateCurrency(currency *model.Currency) error {
	if currency == nil {
		return fmt.Errorf("%w: currency", ErrNilParameter)
	}
	if strings.TrimSpace(currency.Symbol) == "" {
		return fmt.Errorf("%w: missing symbol", ErrInvalidCurrency)
	}
	if currency.BaseRate != nil && !currency.BaseRate.IsPositive() {
		return fmt.Errorf("%w: base rate must be positive", ErrInvalidCurrency)
	}
	return nil
}

func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(account.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.CurrencySymbol) == "" {
		return fmt.Errorf("%w: missing currency", ErrInvalidAccount)
	}
	return nil
}

func validatePayee(payee *model.Payee) error {
	if payee == nil {
		return fmt.Errorf("%w: payee", ErrNilParameter)
	}
	if strings.TrimSpace(payee.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidPayee)
	}
	if strings.TrimSpace(payee.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPayee)
	}
	return nil
}

// validateTransactions validates a batch and the split entries attached to it.
func validateTransactions(transactions []model.Transaction, splits map[string][]model.SplitEntry) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	ids := make(map[string]struct{}, len(transactions))
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
		ids[transactions[i].ID] = struct{}{}
	}

	for txnID := range splits {
		if _, ok := ids[txnID]; !ok {
			return fmt.Errorf("%w: references unknown transaction %s", ErrInvalidSplit, txnID)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidTransaction)
	}
	switch txn.Type {
	case model.TypeDeposit, model.TypeWithdrawal, model.TypeTransfer:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txn.Type)
	}
	return nil
}
