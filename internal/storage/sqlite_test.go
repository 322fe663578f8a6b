package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// createSeededStorage creates storage with one USD checking account and one payee.
func createSeededStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	store, cleanup := createTestStorage(t)
	ctx := context.Background()

	rate := decimal.NewFromInt(1)
	require.NoError(t, store.SaveCurrency(ctx, &model.Currency{Symbol: "USD", Name: "US Dollar", BaseRate: &rate}))
	require.NoError(t, store.SaveAccount(ctx, &model.Account{ID: "chk", Name: "Checking", CurrencySymbol: "USD"}))
	require.NoError(t, store.SavePayee(ctx, &model.Payee{ID: "p1", Name: "Grocer"}))

	return store, cleanup
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
	assert.Equal(t, ":memory:", store.Path())
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestSQLiteStorage_Migrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSQLiteStorage_Currencies(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rate := decimal.RequireFromString("1.25")
	require.NoError(t, store.SaveCurrency(ctx, &model.Currency{Symbol: "eur", Name: "Euro", BaseRate: &rate}))
	require.NoError(t, store.SaveCurrency(ctx, &model.Currency{Symbol: "GBP", Name: "Pound"}))

	got, err := store.CurrencyRate(ctx, "EUR")
	require.NoError(t, err)
	assert.True(t, rate.Equal(got), "got %s", got)

	_, err = store.CurrencyRate(ctx, "GBP")
	assert.ErrorIs(t, err, common.ErrMissingRate)

	_, err = store.CurrencyRate(ctx, "JPY")
	assert.ErrorIs(t, err, common.ErrMissingRate)

	require.NoError(t, store.SetCurrencyRate(ctx, "gbp", decimal.RequireFromString("1.4")))
	got, err = store.CurrencyRate(ctx, "GBP")
	require.NoError(t, err)
	assert.Equal(t, "1.4", got.String())

	// saving without a rate keeps the stored one
	require.NoError(t, store.SaveCurrency(ctx, &model.Currency{Symbol: "GBP"}))
	currencies, err := store.GetCurrencies(ctx)
	require.NoError(t, err)
	require.Len(t, currencies, 2)
	assert.Equal(t, "EUR", currencies[0].Symbol)
	assert.Equal(t, "GBP", currencies[1].Symbol)
	assert.Equal(t, "Pound", currencies[1].Name)
	require.NotNil(t, currencies[1].BaseRate)
	assert.Equal(t, "1.4", currencies[1].BaseRate.String())
}

func TestSQLiteStorage_SetCurrencyRate_Errors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	err := store.SetCurrencyRate(ctx, "XXX", decimal.NewFromInt(2))
	assert.ErrorIs(t, err, common.ErrUnknownCurrency)

	err = store.SetCurrencyRate(ctx, "XXX", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestSQLiteStorage_Accounts(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveAccount(ctx, &model.Account{ID: "b", Name: "Savings", CurrencySymbol: "chf"}))
	require.NoError(t, store.SaveAccount(ctx, &model.Account{ID: "a", Name: "Checking", CurrencySymbol: "USD"}))

	accounts, err := store.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, model.Account{ID: "a", Name: "Checking", CurrencySymbol: "USD"}, accounts[0])
	assert.Equal(t, "CHF", accounts[1].CurrencySymbol)

	// the account currency is registered without a rate
	_, err = store.CurrencyRate(ctx, "CHF")
	assert.ErrorIs(t, err, common.ErrMissingRate)

	err = store.SaveAccount(ctx, &model.Account{ID: "c", Name: "No currency"})
	assert.ErrorIs(t, err, ErrInvalidAccount)
}

func TestSQLiteStorage_Payees(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SavePayee(ctx, &model.Payee{ID: "p2", Name: "zoo"}))
	require.NoError(t, store.SavePayees(ctx, []model.Payee{
		{ID: "p1", Name: "Acme"},
		{ID: "p2", Name: "ignored rename"},
	}))

	payees, err := store.GetPayees(ctx)
	require.NoError(t, err)
	require.Len(t, payees, 2)
	assert.Equal(t, "Acme", payees[0].Name)
	assert.Equal(t, "zoo", payees[1].Name)

	name, err := store.PayeeName(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", name)

	_, err = store.PayeeName(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.SavePayee(ctx, &model.Payee{ID: "p3", Name: "ACME"})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestSQLiteStorage_PayeeCache(t *testing.T) {
	store, cleanup := createSeededStorage(t)
	defer cleanup()
	ctx := context.Background()

	store.payeeCache = make(map[string]string)
	require.NoError(t, store.WarmPayeeCache(ctx))

	cached, ok := store.getCachedPayee("p1")
	require.True(t, ok)
	assert.Equal(t, "Grocer", cached)

	require.NoError(t, store.SavePayee(ctx, &model.Payee{ID: "p1", Name: "Green Grocer"}))
	cached, ok = store.getCachedPayee("p1")
	require.True(t, ok)
	assert.Equal(t, "Green Grocer", cached)
}

func TestSQLiteStorage_SaveTransactions(t *testing.T) {
	store, cleanup := createSeededStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "t1", AccountID: "chk", PayeeID: "p1", Date: day(2024, 3, 2), Amount: decimal.RequireFromString("50.00"), Type: model.TypeDeposit},
		{ID: "t2", AccountID: "chk", PayeeID: "p1", Date: day(2024, 3, 1), Amount: decimal.RequireFromString("12.34"), Type: model.TypeWithdrawal, Status: model.StatusVoid},
	}
	splits := map[string][]model.SplitEntry{
		"t1": {
			{Amount: decimal.RequireFromString("30")},
			{Amount: decimal.RequireFromString("-5.5"), Notes: "fee"},
		},
	}

	inserted, err := store.SaveTransactions(ctx, txns, splits)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// re-import is a no-op and does not duplicate splits
	inserted, err = store.SaveTransactions(ctx, txns, splits)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	all, err := store.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "t2", all[0].ID, "ordered by date")
	assert.Equal(t, model.StatusVoid, all[0].Status)
	assert.Equal(t, model.TypeWithdrawal, all[0].Type)
	assert.True(t, decimal.RequireFromString("12.34").Equal(all[0].Amount))
	assert.True(t, all[1].Date.Equal(day(2024, 3, 2)))
	assert.NotEmpty(t, all[1].Hash)

	got, err := store.SplitEntriesByTransaction(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got["t1"], 2)
	assert.Equal(t, "30", got["t1"][0].Amount.String())
	assert.Equal(t, "-5.5", got["t1"][1].Amount.String())
	assert.Equal(t, "fee", got["t1"][1].Notes)
}

func TestSQLiteStorage_SaveTransactions_Validation(t *testing.T) {
	store, cleanup := createSeededStorage(t)
	defer cleanup()
	ctx := context.Background()

	valid := model.Transaction{ID: "t1", AccountID: "chk", PayeeID: "p1", Date: day(2024, 1, 1), Amount: decimal.NewFromInt(1), Type: model.TypeDeposit}

	tests := []struct {
		wantErr error
		splits  map[string][]model.SplitEntry
		name    string
		txns    []model.Transaction
	}{
		{name: "nil slice", txns: nil, wantErr: ErrNilParameter},
		{name: "empty slice", txns: []model.Transaction{}, wantErr: ErrEmptySlice},
		{
			name:    "negative amount",
			txns:    []model.Transaction{{ID: "x", AccountID: "chk", Date: day(2024, 1, 1), Amount: decimal.NewFromInt(-1), Type: model.TypeDeposit}},
			wantErr: ErrInvalidTransaction,
		},
		{
			name:    "unknown type",
			txns:    []model.Transaction{{ID: "x", AccountID: "chk", Date: day(2024, 1, 1), Amount: decimal.NewFromInt(1), Type: "BOGUS"}},
			wantErr: ErrInvalidTransaction,
		},
		{
			name:    "split for transaction outside batch",
			txns:    []model.Transaction{valid},
			splits:  map[string][]model.SplitEntry{"other": {{Amount: decimal.NewFromInt(1)}}},
			wantErr: ErrInvalidSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveTransactions(ctx, tt.txns, tt.splits)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSQLiteStorage_GetTransactions_Filter(t *testing.T) {
	store, cleanup := createSeededStorage(t)
	defer cleanup()
	ctx := context.Background()

	var txns []model.Transaction
	for i := 1; i <= 5; i++ {
		txns = append(txns, model.Transaction{
			ID:        string(rune('a' + i - 1)),
			AccountID: "chk",
			PayeeID:   "p1",
			Date:      day(2024, 1, i),
			Amount:    decimal.NewFromInt(int64(i)),
			Type:      model.TypeWithdrawal,
		})
	}
	_, err := store.SaveTransactions(ctx, txns, nil)
	require.NoError(t, err)

	start, end := day(2024, 1, 2), day(2024, 1, 4)
	got, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ID)

	got, err = store.GetTransactions(ctx, service.TransactionFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)

	got, err = store.GetTransactions(ctx, service.TransactionFilter{PayeeID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStorage_SetTransactionStatus(t *testing.T) {
	store, cleanup := createSeededStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.SaveTransactions(ctx, []model.Transaction{
		{ID: "t1", AccountID: "chk", PayeeID: "p1", Date: day(2024, 1, 1), Amount: decimal.NewFromInt(9), Type: model.TypeWithdrawal},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, store.SetTransactionStatus(ctx, "t1", model.StatusVoid))
	all, err := store.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsVoid())

	err = store.SetTransactionStatus(ctx, "nope", model.StatusVoid)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
