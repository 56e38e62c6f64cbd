// Package storage persists the ledger's collections as opaque JSON documents,
// one document per key, so that one corrupt collection cannot take down the
// others.
package storage

import (
	"context"
	"errors"
)

// Key names a persisted collection.
type Key string

const (
	KeyTransactions      Key = "transactions"
	KeyIncomeCategories  Key = "income_categories"
	KeyExpenseCategories Key = "expense_categories"
	KeyBanks             Key = "banks"
)

// Keys lists every collection key in load order.
func Keys() []Key {
	return []Key{KeyTransactions, KeyIncomeCategories, KeyExpenseCategories, KeyBanks}
}

// ErrKeyNotFound is returned by Load when nothing has been saved under a key.
// A missing key is not corruption.
var ErrKeyNotFound = errors.New("storage: key not found")

// Backend reads and writes whole documents.
type Backend interface {
	Load(ctx context.Context, key Key) ([]byte, error)
	Save(ctx context.Context, key Key, data []byte) error
	Close() error
}
