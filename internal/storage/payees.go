package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
)

// SavePayee inserts or renames a payee.
func (s *SQLiteStorage) SavePayee(ctx context.Context, payee *model.Payee) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePayee(payee); err != nil {
		return err
	}

	name := strings.TrimSpace(payee.Name)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payees (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, payee.ID, name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: payee %q", common.ErrDuplicateEntry, name)
		}
		return fmt.Errorf("failed to save payee: %w", err)
	}

	s.cachePayee(payee.ID, name)
	return nil
}

// savePayeesTx stores payees referenced by an import batch, keeping existing names.
func (s *SQLiteStorage) savePayeesTx(ctx context.Context, q queryable, payees []model.Payee) error {
	for i := range payees {
		if err := validatePayee(&payees[i]); err != nil {
			return fmt.Errorf("payee at index %d: %w", i, err)
		}
		_, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO payees (id, name) VALUES (?, ?)`,
			payees[i].ID, strings.TrimSpace(payees[i].Name))
		if err != nil {
			return fmt.Errorf("failed to save payee %s: %w", payees[i].ID, err)
		}
	}
	return nil
}

// SavePayees stores a batch of payees, ignoring ones that already exist.
func (s *SQLiteStorage) SavePayees(ctx context.Context, payees []model.Payee) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(payees) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.savePayeesTx(ctx, tx, payees)
	})
}

// GetPayees returns every payee ordered by name.
func (s *SQLiteStorage) GetPayees(ctx context.Context) ([]model.Payee, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM payees ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var payees []model.Payee
	for rows.Next() {
		var p model.Payee
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan payee: %w", err)
		}
		payees = append(payees, p)
	}
	return payees, rows.Err()
}

// PayeeName resolves a payee identifier to its display name.
func (s *SQLiteStorage) PayeeName(ctx context.Context, payeeID string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(payeeID, "payeeID"); err != nil {
		return "", err
	}

	if name, ok := s.getCachedPayee(payeeID); ok {
		return name, nil
	}

	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM payees WHERE id = ?`, payeeID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: payee %s", common.ErrNotFound, payeeID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get payee: %w", err)
	}

	s.cachePayee(payeeID, name)
	return name, nil
}

// WarmPayeeCache loads all payee names into the cache.
func (s *SQLiteStorage) WarmPayeeCache(ctx context.Context) error {
	payees, err := s.GetPayees(ctx)
	if err != nil {
		return err
	}

	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.payeeCache = make(map[string]string, len(payees))
	for _, p := range payees {
		s.payeeCache[p.ID] = p.Name
	}
	return nil
}

func (s *SQLiteStorage) getCachedPayee(id string) (string, bool) {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()
	name, ok := s.payeeCache[id]
	return name, ok
}

func (s *SQLiteStorage) cachePayee(id, name string) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.payeeCache[id] = name
}
