// Package importer stores ledger data pulled from external sources.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/service"
)

// Batch is one unit of imported ledger data.
type Batch struct {
	Splits       map[string][]model.SplitEntry
	Source       string
	Accounts     []model.Account
	Payees       []model.Payee
	Transactions []model.Transaction
}

// Result summarizes a saved batch.
type Result struct {
	Source     string
	Accounts   int
	Payees     int
	Fetched    int
	Inserted   int
	Duplicates int
}

// AddPayee registers a payee once and returns its identifier.
func (b *Batch) AddPayee(name string) string {
	id := model.PayeeIDFromName(name)
	for _, p := range b.Payees {
		if p.ID == id {
			return id
		}
	}
	b.Payees = append(b.Payees, model.Payee{ID: id, Name: name})
	return id
}

// AddAccount registers an account once.
func (b *Batch) AddAccount(account model.Account) {
	for _, a := range b.Accounts {
		if a.ID == account.ID {
			return
		}
	}
	b.Accounts = append(b.Accounts, account)
}

// Merge appends other into b.
func (b *Batch) Merge(other *Batch) {
	for _, a := range other.Accounts {
		b.AddAccount(a)
	}
	for _, p := range other.Payees {
		b.AddPayee(p.Name)
	}
	b.Transactions = append(b.Transactions, other.Transactions...)
	for id, entries := range other.Splits {
		if b.Splits == nil {
			b.Splits = make(map[string][]model.SplitEntry)
		}
		b.Splits[id] = append(b.Splits[id], entries...)
	}
}

// Save writes the batch through w. Accounts and payees are upserted first so
// every stored transaction resolves. Transactions already in the ledger are
// counted as duplicates.
func Save(ctx context.Context, w service.LedgerWriter, batch *Batch) (Result, error) {
	res := Result{
		Source:   batch.Source,
		Accounts: len(batch.Accounts),
		Payees:   len(batch.Payees),
		Fetched:  len(batch.Transactions),
	}

	for i := range batch.Accounts {
		if err := w.SaveAccount(ctx, &batch.Accounts[i]); err != nil {
			return res, fmt.Errorf("failed to save account %s: %w", batch.Accounts[i].ID, err)
		}
	}

	if len(batch.Payees) > 0 {
		if err := w.SavePayees(ctx, batch.Payees); err != nil {
			return res, fmt.Errorf("failed to save payees: %w", err)
		}
	}

	if len(batch.Transactions) == 0 {
		return res, nil
	}

	inserted, err := w.SaveTransactions(ctx, batch.Transactions, batch.Splits)
	if err != nil {
		return res, fmt.Errorf("failed to save transactions: %w", err)
	}
	res.Inserted = inserted
	res.Duplicates = res.Fetched - inserted

	slog.Info("Imported transactions",
		"source", batch.Source,
		"fetched", res.Fetched,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates)

	return res, nil
}

// FromFetcher pulls accounts and transactions from a remote source into a batch.
func FromFetcher(ctx context.Context, source string, fetcher service.TransactionFetcher, start, end time.Time) (*Batch, error) {
	accounts, err := fetcher.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	txns, payees, err := fetcher.GetTransactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	batch := &Batch{Source: source}
	for _, a := range accounts {
		batch.AddAccount(a)
	}
	for _, p := range payees {
		batch.AddPayee(p.Name)
	}
	batch.Transactions = txns
	return batch, nil
}
