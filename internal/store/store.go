// Package store owns the ledger's collections. Every mutation validates,
// applies in memory, re-sorts and then persists the touched collections.
// Persistence is best-effort: failures are logged, counted and exposed via
// Degraded, never returned to the caller.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/storage"
)

var (
	ErrNotFound             = errors.New("transaction not found")
	ErrReferentialIntegrity = errors.New("referenced by transactions")
	ErrCategoryInUse        = fmt.Errorf("category in use: %w", ErrReferentialIntegrity)
	ErrBankInUse            = fmt.Errorf("bank in use: %w", ErrReferentialIntegrity)
	ErrStorageUnavailable   = errors.New("storage unavailable, changes are kept in memory only")
)

// Publisher is told about every persisted mutation.
type Publisher interface {
	PublishLedgerChange(ctx context.Context, op string, ids []string, revision int64) error
}

// Options configure a Store. Only Backend is required.
type Options struct {
	Backend   storage.Backend
	Logger    *log.Logger
	Metrics   metrics.Collector
	Publisher Publisher

	// RetryInterval is how long persistence stays off after a failure
	// before it is tried again.
	RetryInterval time.Duration

	Now   func() time.Time
	NewID func() string
}

// Store holds the collections. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	backend   storage.Backend
	logger    *log.Logger
	metrics   metrics.Collector
	publisher Publisher
	breaker   *gobreaker.CircuitBreaker
	now       func() time.Time
	newID     func() string

	data     core.Collection
	revision int64

	dirty      map[storage.Key]struct{}
	unreadable map[storage.Key]struct{}
	degraded   bool
	warned     bool
	lastErr    error
}

// New creates an empty store. Call Load to read persisted data.
func New(opts Options) *Store {
	if opts.Backend == nil {
		opts.Backend = storage.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoOpCollector{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = core.NewTransactionID
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 5 * time.Minute
	}

	s := &Store{
		backend:    opts.Backend,
		logger:     opts.Logger.WithComponent(log.ComponentStore),
		metrics:    opts.Metrics,
		publisher:  opts.Publisher,
		now:        opts.Now,
		newID:      opts.NewID,
		data:       core.DefaultCollection(),
		dirty:      make(map[storage.Key]struct{}),
		unreadable: make(map[storage.Key]struct{}),
	}
	s.breaker = newBreaker(opts.RetryInterval, s.logger, s.metrics)
	return s
}

// Open creates a store and loads it.
func Open(ctx context.Context, opts Options) *Store {
	s := New(opts)
	s.Load(ctx)
	return s
}

// Revision changes after every load or mutation.
func (s *Store) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Degraded reports whether the last persistence attempt failed, meaning
// recent changes live only in memory.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// LastPersistError is the most recent persistence failure, wrapped in
// ErrStorageUnavailable, or nil.
func (s *Store) LastPersistError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Snapshot returns a copy of every collection.
func (s *Store) Snapshot() core.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Transactions returns a copy of the transactions in store order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction{}, s.data.Transactions...)
}

// Transaction looks up a single record.
func (s *Store) Transaction(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, false
	}
	return s.data.Transactions[i], true
}

// Categories returns a copy of the category set for typ.
func (s *Store) Categories(typ core.TransactionType) []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category{}, s.data.Categories(typ)...)
}

// Banks returns a copy of the banks.
func (s *Store) Banks() []core.Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Bank{}, s.data.Banks...)
}

// CategoryLabel resolves a category value within the set for typ.
func (s *Store) CategoryLabel(typ core.TransactionType, value string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.CategoryLabel(typ, value)
}

// BankName resolves a bank id.
func (s *Store) BankName(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.BankName(id)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.data.Transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// commit finishes a mutation: bump the revision, persist the touched keys
// and announce the change.
func (s *Store) commit(ctx context.Context, op string, ids []string, keys ...storage.Key) {
	s.revision++
	s.persistLocked(ctx, op, keys...)
	s.metrics.RecordMutation(op, true)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChange(ctx, op, ids, s.revision); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger change",
			log.FieldOperation, op,
			log.FieldRevision, s.revision,
			log.FieldError, err)
	}
}
