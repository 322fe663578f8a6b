// Package testutil provides test fixtures for the payee-flow project: an
// in-memory ledger fake and helpers that seed a real SQLite ledger from it.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/payee-flow/internal/storage"
)

// TestDB is a migrated in-memory SQLite ledger.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database seeded with the contents
// of ledger. A nil ledger leaves the database empty. Cleanup is registered on t.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.NewLedger().
//		WithCurrency("USD", "1").
//		WithAccount("chk", "USD"))
func SetupTestDB(t *testing.T, ledger *Ledger) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store, t: t}
	if ledger != nil {
		db.Seed(ctx, ledger)
	}
	return db
}

// Seed copies currencies, accounts, payees, transactions and splits from
// ledger into the database, failing the test on any error.
func (db *TestDB) Seed(ctx context.Context, ledger *Ledger) {
	db.t.Helper()

	for i := range ledger.Currencies {
		if err := db.Storage.SaveCurrency(ctx, &ledger.Currencies[i]); err != nil {
			db.t.Fatalf("failed to seed currency %q: %v", ledger.Currencies[i].Symbol, err)
		}
	}
	for i := range ledger.AccountList {
		if err := db.Storage.SaveAccount(ctx, &ledger.AccountList[i]); err != nil {
			db.t.Fatalf("failed to seed account %q: %v", ledger.AccountList[i].ID, err)
		}
	}
	if payees := ledger.PayeeList(); len(payees) > 0 {
		if err := db.Storage.SavePayees(ctx, payees); err != nil {
			db.t.Fatalf("failed to seed payees: %v", err)
		}
	}
	if len(ledger.TxnList) > 0 {
		if _, err := db.Storage.SaveTransactions(ctx, ledger.TxnList, ledger.Splits); err != nil {
			db.t.Fatalf("failed to seed transactions: %v", err)
		}
	}
}
