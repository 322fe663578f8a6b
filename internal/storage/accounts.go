package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/payee-flow/internal/model"
)

// SaveAccount inserts or updates an account. The account's currency is
// registered without a rate if it is not known yet.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	symbol := normalizeSymbol(account.CurrencySymbol)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO currencies (symbol) VALUES (?)`, symbol); err != nil {
			return fmt.Errorf("failed to register currency: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, name, currency_symbol)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				currency_symbol = excluded.currency_symbol
		`, account.ID, account.Name, symbol)
		if err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		return nil
	})
}

// Accounts returns every account ordered by ID.
func (s *SQLiteStorage) Accounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, currency_symbol FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.CurrencySymbol); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
