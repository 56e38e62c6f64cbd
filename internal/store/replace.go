package store

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Replacement is a wholesale restore. Transactions are always replaced; a nil
// category or bank slice leaves that collection as it is.
type Replacement struct {
	Transactions      []core.Transaction
	IncomeCategories  []core.Category
	ExpenseCategories []core.Category
	Banks             []core.Bank
}

// Replace swaps in r and persists every replaced collection.
func (s *Store) Replace(ctx context.Context, r Replacement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := make([]core.Transaction, len(r.Transactions))
	for i, t := range r.Transactions {
		txs[i] = t.Normalized()
	}
	core.SortTransactions(txs)
	s.data.Transactions = txs
	keys := []storage.Key{storage.KeyTransactions}

	if r.IncomeCategories != nil {
		s.data.IncomeCategories = append([]core.Category{}, r.IncomeCategories...)
		keys = append(keys, storage.KeyIncomeCategories)
	}
	if r.ExpenseCategories != nil {
		s.data.ExpenseCategories = append([]core.Category{}, r.ExpenseCategories...)
		keys = append(keys, storage.KeyExpenseCategories)
	}
	if r.Banks != nil {
		s.data.Banks = append([]core.Bank{}, r.Banks...)
		keys = append(keys, storage.KeyBanks)
	}

	s.commit(ctx, log.OpReplace, nil, keys...)
	s.logger.InfoContext(ctx, "Ledger replaced",
		log.FieldCount, len(txs),
		"collections", len(keys))
}

// Reset empties the transactions and restores the default categories and
// banks.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = core.DefaultCollection()
	s.commit(ctx, log.OpReset, nil, storage.Keys()...)
	s.logger.InfoContext(ctx, "Ledger reset to defaults")
}
