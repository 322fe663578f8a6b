package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/shopspring/decimal"
)

// SaveCurrency inserts or updates a currency.
func (s *SQLiteStorage) SaveCurrency(ctx context.Context, currency *model.Currency) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCurrency(currency); err != nil {
		return err
	}

	var rate decimal.NullDecimal
	if currency.BaseRate != nil {
		rate = decimal.NewNullDecimal(*currency.BaseRate)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO currencies (symbol, name, base_rate)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = CASE WHEN excluded.name = '' THEN currencies.name ELSE excluded.name END,
			base_rate = COALESCE(excluded.base_rate, currencies.base_rate)
	`, normalizeSymbol(currency.Symbol), currency.Name, rate)
	if err != nil {
		return fmt.Errorf("failed to save currency: %w", err)
	}
	return nil
}

// SetCurrencyRate sets the base conversion rate of an existing currency.
func (s *SQLiteStorage) SetCurrencyRate(ctx context.Context, symbol string, rate decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(symbol, "symbol"); err != nil {
		return err
	}
	if !rate.IsPositive() {
		return fmt.Errorf("%w: base rate must be positive", ErrInvalidCurrency)
	}

	result, err := s.db.ExecContext(ctx, `UPDATE currencies SET base_rate = ? WHERE symbol = ?`,
		rate, normalizeSymbol(symbol))
	if err != nil {
		return fmt.Errorf("failed to set currency rate: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", common.ErrUnknownCurrency, symbol)
	}
	return nil
}

// GetCurrencies returns all currencies ordered by symbol.
func (s *SQLiteStorage) GetCurrencies(ctx context.Context) ([]model.Currency, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT symbol, name, base_rate FROM currencies ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var currencies []model.Currency
	for rows.Next() {
		var c model.Currency
		var rate decimal.NullDecimal
		if err := rows.Scan(&c.Symbol, &c.Name, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		if rate.Valid {
			r := rate.Decimal
			c.BaseRate = &r
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}

// CurrencyRate returns the base conversion rate of a currency.
func (s *SQLiteStorage) CurrencyRate(ctx context.Context, currencySymbol string) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}

	var rate decimal.NullDecimal
	err := s.db.QueryRowContext(ctx, `SELECT base_rate FROM currencies WHERE symbol = ?`,
		normalizeSymbol(currencySymbol)).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: %s is not a known currency", common.ErrMissingRate, currencySymbol)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get currency rate: %w", err)
	}
	if !rate.Valid {
		return decimal.Zero, fmt.Errorf("%w: %s", common.ErrMissingRate, currencySymbol)
	}
	return rate.Decimal, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
