package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/storage"
)

// newBreaker trips on the first write failure and lets a single trial write
// through once retry has elapsed. Reads do not go through it.
func newBreaker(retry time.Duration, logger *log.Logger, m metrics.Collector) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "storage",
		MaxRequests: 1,
		Timeout:     retry,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, storage.ErrKeyNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Debug("Storage breaker state changed",
				"from", from.String(),
				"to", to.String())

			var state metrics.CircuitState
			switch to {
			case gobreaker.StateClosed:
				state = metrics.CircuitClosed
			case gobreaker.StateHalfOpen:
				state = metrics.CircuitHalfOpen
			case gobreaker.StateOpen:
				state = metrics.CircuitOpen
			}
			m.RecordCircuitState(state)
		},
	})
}

// Load reads every collection from the backend. It never fails: a missing
// key yields the default for that collection, an unreadable or corrupt one
// yields the default and is logged. A key the backend could not read is
// never written back for the rest of the session, so the stored copy is not
// replaced by defaults. The loaded collections are returned.
func (s *Store) Load(ctx context.Context) core.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := core.DefaultCollection()
	loaded := core.Collection{}
	s.unreadable = make(map[storage.Key]struct{})

	for _, key := range storage.Keys() {
		var err error
		switch key {
		case storage.KeyTransactions:
			loaded.Transactions, err = loadKey(ctx, s, key, defaults.Transactions)
		case storage.KeyIncomeCategories:
			loaded.IncomeCategories, err = loadKey(ctx, s, key, defaults.IncomeCategories)
		case storage.KeyExpenseCategories:
			loaded.ExpenseCategories, err = loadKey(ctx, s, key, defaults.ExpenseCategories)
		case storage.KeyBanks:
			loaded.Banks, err = loadKey(ctx, s, key, defaults.Banks)
		}
		if err != nil {
			s.unreadable[key] = struct{}{}
			delete(s.dirty, key)
			s.storageFailedLocked(ctx, log.OpLoad, err)
		}
	}

	for i, t := range loaded.Transactions {
		loaded.Transactions[i] = t.Normalized()
	}
	if !core.IsOrdered(loaded.Transactions) {
		s.logger.DebugContext(ctx, "Stored transactions out of order, sorting",
			log.FieldCount, len(loaded.Transactions))
		core.SortTransactions(loaded.Transactions)
	}
	s.data = loaded
	s.revision++

	s.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldCount, len(loaded.Transactions),
		log.FieldRevision, s.revision)

	return loaded.Clone()
}

// loadKey decodes one collection. The returned error is non-nil only when
// the backend itself failed; corrupt data is handled here.
func loadKey[T any](ctx context.Context, s *Store, key storage.Key, fallback []T) ([]T, error) {
	raw, err := s.backend.Load(ctx, key)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		s.metrics.RecordLoad(string(key), metrics.LoadMissing)
		s.logger.DebugContext(ctx, "Collection not found, using defaults", log.FieldKey, key)
		return fallback, nil
	case err != nil:
		s.metrics.RecordLoad(string(key), metrics.LoadError)
		s.logger.ErrorContext(ctx, "Failed to read collection, using defaults",
			log.FieldKey, key,
			log.FieldErrorType, log.ErrorTypeStorage,
			log.FieldError, err)
		return fallback, fmt.Errorf("load %s: %w", key, err)
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		if err == nil {
			err = errors.New("not an array")
		}
		s.metrics.RecordLoad(string(key), metrics.LoadCorrupt)
		s.logger.ErrorContext(ctx, "Corrupt collection, using defaults",
			log.FieldKey, key,
			log.FieldErrorType, log.ErrorTypeCorrupt,
			log.FieldError, err)
		return fallback, nil
	}
	s.metrics.RecordLoad(string(key), metrics.LoadOK)
	return out, nil
}

// persistLocked writes keys plus anything left over from earlier failures.
// Keys are written concurrently and independently. Keys that failed to load
// are skipped and keep the store degraded.
func (s *Store) persistLocked(ctx context.Context, op string, keys ...storage.Key) {
	for _, k := range keys {
		if _, ok := s.unreadable[k]; ok {
			s.logger.DebugContext(ctx, "Skipping write of unreadable collection",
				log.FieldOperation, op,
				log.FieldKey, k)
			continue
		}
		s.dirty[k] = struct{}{}
	}
	pending := make([]storage.Key, 0, len(s.dirty))
	for k := range s.dirty {
		pending = append(pending, k)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })

	var (
		g    errgroup.Group
		mu   sync.Mutex
		done []storage.Key
	)
	for _, key := range pending {
		data, err := s.encodeLocked(key)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to encode collection",
				log.FieldKey, key,
				log.FieldErrorType, log.ErrorTypeInternal,
				log.FieldError, err)
			continue
		}
		g.Go(func() error {
			start := time.Now()
			_, err := s.breaker.Execute(func() (interface{}, error) {
				return nil, s.backend.Save(ctx, key, data)
			})
			s.metrics.RecordPersist(string(key), err == nil, time.Since(start))
			if err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
			mu.Lock()
			done = append(done, key)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	for _, k := range done {
		delete(s.dirty, k)
	}

	if err != nil {
		s.storageFailedLocked(ctx, op, err)
		return
	}
	if s.degraded && len(s.dirty) == 0 && len(s.unreadable) == 0 {
		s.degraded = false
		s.lastErr = nil
		s.logger.InfoContext(ctx, "Storage available again, pending changes saved",
			log.FieldOperation, op)
	}
}

func (s *Store) storageFailedLocked(ctx context.Context, op string, err error) {
	s.degraded = true
	s.lastErr = fmt.Errorf("%w: %v", ErrStorageUnavailable, err)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) || s.warned {
		s.logger.DebugContext(ctx, "Persistence skipped",
			log.FieldOperation, op,
			log.FieldError, err)
		return
	}
	s.warned = true
	s.logger.WarnContext(ctx, ErrStorageUnavailable.Error(),
		log.FieldOperation, op,
		log.FieldErrorType, log.ErrorTypeStorage,
		log.FieldError, err)
}

func (s *Store) encodeLocked(key storage.Key) ([]byte, error) {
	switch key {
	case storage.KeyTransactions:
		return json.Marshal(s.data.Transactions)
	case storage.KeyIncomeCategories:
		return json.Marshal(s.data.IncomeCategories)
	case storage.KeyExpenseCategories:
		return json.Marshal(s.data.ExpenseCategories)
	case storage.KeyBanks:
		return json.Marshal(s.data.Banks)
	default:
		return nil, fmt.Errorf("unknown key %q", key)
	}
}
