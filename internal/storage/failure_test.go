package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (*SQLiteStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newStorage(db, "mock"), mock
}

func TestSQLiteStorage_QueryFailures(t *testing.T) {
	errDisk := errors.New("disk I/O error")
	ctx := context.Background()

	t.Run("accounts", func(t *testing.T) {
		store, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, currency_symbol FROM accounts`)).WillReturnError(errDisk)

		_, err := store.Accounts(ctx)
		assert.ErrorIs(t, err, errDisk)
		assert.Contains(t, err.Error(), "failed to query accounts")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("payee name", func(t *testing.T) {
		store, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM payees WHERE id = ?`)).
			WithArgs("p1").
			WillReturnError(errDisk)

		_, err := store.PayeeName(ctx, "p1")
		assert.ErrorIs(t, err, errDisk)
		assert.NotErrorIs(t, err, common.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("payee name is cached after first lookup", func(t *testing.T) {
		store, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM payees WHERE id = ?`)).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Grocer"))

		for i := 0; i < 3; i++ {
			name, err := store.PayeeName(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, "Grocer", name)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("split entries", func(t *testing.T) {
		store, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, transaction_id, amount, notes FROM split_entries`)).
			WillReturnError(errDisk)

		_, err := store.SplitEntriesByTransaction(ctx)
		assert.ErrorIs(t, err, errDisk)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("currency rate", func(t *testing.T) {
		store, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT base_rate FROM currencies WHERE symbol = ?`)).
			WithArgs("USD").
			WillReturnError(errDisk)

		_, err := store.CurrencyRate(ctx, "usd")
		assert.ErrorIs(t, err, errDisk)
		assert.NotErrorIs(t, err, common.ErrMissingRate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
