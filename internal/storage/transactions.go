package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/service"
)

const transactionColumns = `id, hash, account_id, payee_id, date, amount, transaction_type, status, notes`

// SaveTransactions saves transactions and their split entries. Transactions
// whose ID already exists are skipped along with their splits. It returns the
// number of newly stored transactions.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction, splits map[string][]model.SplitEntry) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions, splits); err != nil {
		return 0, err
	}

	var inserted int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		n, err := s.saveTransactionsTx(ctx, tx, transactions, splits)
		inserted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction, splits map[string][]model.SplitEntry) (int, error) {
	txnStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = txnStmt.Close() }()

	splitStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO split_entries (transaction_id, amount, notes) VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = splitStmt.Close() }()

	inserted := 0
	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		result, err := txnStmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.AccountID,
			txn.PayeeID,
			txn.Date,
			txn.Amount,
			string(txn.Type),
			string(txn.Status),
			txn.Notes,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to check affected rows: %w", err)
		}
		if affected == 0 {
			continue
		}
		inserted++

		for _, entry := range splits[txn.ID] {
			if _, err := splitStmt.ExecContext(ctx, txn.ID, entry.Amount, entry.Notes); err != nil {
				return 0, fmt.Errorf("failed to insert split for transaction %s: %w", txn.ID, err)
			}
		}
	}

	return inserted, nil
}

// Transactions returns every transaction ordered by date then ID.
func (s *SQLiteStorage) Transactions(ctx context.Context) ([]model.Transaction, error) {
	return s.GetTransactions(ctx, service.TransactionFilter{})
}

// GetTransactions returns transactions matching the filter ordered by date then ID.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.PayeeID != "" {
		where = append(where, "payee_id = ?")
		args = append(args, filter.PayeeID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var (
		txn       model.Transaction
		txnType   string
		txnStatus string
	)
	err := rows.Scan(
		&txn.ID,
		&txn.Hash,
		&txn.AccountID,
		&txn.PayeeID,
		&txn.Date,
		&txn.Amount,
		&txnType,
		&txnStatus,
		&txn.Notes,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}
	txn.Type = model.TransactionType(txnType)
	txn.Status = model.TransactionStatus(txnStatus)
	return txn, nil
}

// SplitEntriesByTransaction returns all split entries grouped by transaction ID.
func (s *SQLiteStorage) SplitEntriesByTransaction(ctx context.Context) (map[string][]model.SplitEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, amount, notes FROM split_entries ORDER BY transaction_id, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query split entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	splits := make(map[string][]model.SplitEntry)
	for rows.Next() {
		var entry model.SplitEntry
		if err := rows.Scan(&entry.ID, &entry.TransactionID, &entry.Amount, &entry.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan split entry: %w", err)
		}
		splits[entry.TransactionID] = append(splits[entry.TransactionID], entry)
	}
	return splits, rows.Err()
}

// SetTransactionStatus updates the status of a single transaction.
func (s *SQLiteStorage) SetTransactionStatus(ctx context.Context, transactionID string, status model.TransactionStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE transactions SET status = ? WHERE id = ?`,
		string(status), transactionID)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %s", common.ErrNotFound, transactionID)
	}
	return nil
}
