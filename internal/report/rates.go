package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/service"
	"github.com/shopspring/decimal"
)

// RateTable maps account identifiers to base-currency conversion rates.
// It is a snapshot taken once per refresh.
type RateTable struct {
	rates   map[string]decimal.Decimal
	missing map[string]error
}

// NewRateTable builds a table from explicit rates, mainly for tests and callers
// that already hold a rate snapshot.
func NewRateTable(rates map[string]decimal.Decimal) RateTable {
	t := RateTable{
		rates:   make(map[string]decimal.Decimal, len(rates)),
		missing: make(map[string]error),
	}
	for id, r := range rates {
		t.rates[id] = r
	}
	return t
}

// Rate returns the conversion rate for an account. The error wraps
// common.ErrMissingRate when the account's currency has no rate and
// common.ErrUnknownAccount when the account was never seen.
func (t RateTable) Rate(accountID string) (decimal.Decimal, error) {
	if r, ok := t.rates[accountID]; ok {
		return r, nil
	}
	if err, ok := t.missing[accountID]; ok {
		return decimal.Zero, err
	}
	return decimal.Zero, fmt.Errorf("%w: %s", common.ErrUnknownAccount, accountID)
}

// Len returns the number of accounts with a usable rate.
func (t RateTable) Len() int {
	return len(t.rates)
}

// ResolveRates looks up the rate of every account's currency. Accounts whose
// currency has no rate, or whose lookup fails, are recorded as missing rather
// than defaulted. Only context cancellation aborts the resolution.
func ResolveRates(ctx context.Context, ledger service.LedgerReader, accounts []model.Account) (RateTable, error) {
	table := RateTable{
		rates:   make(map[string]decimal.Decimal, len(accounts)),
		missing: make(map[string]error),
	}

	// several accounts usually share a currency
	bySymbol := make(map[string]decimal.Decimal)
	missingSymbol := make(map[string]error)

	for _, account := range accounts {
		symbol := account.CurrencySymbol
		if r, ok := bySymbol[symbol]; ok {
			table.rates[account.ID] = r
			continue
		}
		if err, ok := missingSymbol[symbol]; ok {
			table.missing[account.ID] = err
			continue
		}

		r, err := ledger.CurrencyRate(ctx, symbol)
		switch {
		case ctx.Err() != nil:
			return RateTable{}, fmt.Errorf("failed to resolve rate for currency %s: %w", symbol, ctx.Err())
		case err != nil:
			if !errors.Is(err, common.ErrMissingRate) {
				err = fmt.Errorf("%w: %s: %w", common.ErrMissingRate, symbol, err)
			}
			missingSymbol[symbol] = err
			table.missing[account.ID] = err
		default:
			bySymbol[symbol] = r
			table.rates[account.ID] = r
		}
	}

	return table, nil
}
