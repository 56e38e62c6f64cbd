package store

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// AddTransaction validates d, assigns an id and inserts the record.
func (s *Store) AddTransaction(ctx context.Context, d core.Draft) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := d.Build(s.uniqueIDLocked(), s.now())
	if err := t.Validate(); err != nil {
		s.rejected(ctx, log.OpCreate, err)
		return core.Transaction{}, err
	}

	s.data.Transactions = append(s.data.Transactions, t)
	core.SortTransactions(s.data.Transactions)
	s.commit(ctx, log.OpCreate, []string{t.ID}, storage.KeyTransactions)

	s.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithTransaction(t.ID, t.Category, t.Amount.StringFixed(core.AmountPlaces)).
			ToSlice()...)
	return t, nil
}

// DeleteTransaction removes id. It reports whether anything was removed; a
// missing id is not an error.
func (s *Store) DeleteTransaction(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.data.Transactions = append(s.data.Transactions[:i], s.data.Transactions[i+1:]...)
	s.commit(ctx, log.OpDelete, []string{id}, storage.KeyTransactions)

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	return true
}

// UpdateTransaction merges p into the record with id. The merged record must
// validate; on any error nothing changes.
func (s *Store) UpdateTransaction(ctx context.Context, id string, p core.Patch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		s.rejected(ctx, log.OpUpdate, err)
		return core.Transaction{}, err
	}

	t := p.Apply(s.data.Transactions[i])
	if err := t.Validate(); err != nil {
		s.rejected(ctx, log.OpUpdate, err)
		return core.Transaction{}, err
	}

	s.data.Transactions[i] = t
	core.SortTransactions(s.data.Transactions)
	s.commit(ctx, log.OpUpdate, []string{id}, storage.KeyTransactions)

	s.logger.InfoContext(ctx, "Transaction updated", log.FieldTransactionID, id)
	return t, nil
}

// BulkUpdateTransactions applies p to every id that exists; missing ids are
// skipped. If any merged record fails validation nothing changes. The ids
// actually updated are returned.
func (s *Store) BulkUpdateTransactions(ctx context.Context, ids []string, p core.Patch) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	next := append([]core.Transaction{}, s.data.Transactions...)
	var updated []string
	for i, t := range next {
		if _, ok := want[t.ID]; !ok {
			continue
		}
		merged := p.Apply(t)
		if err := merged.Validate(); err != nil {
			err = fmt.Errorf("transaction %s: %w", t.ID, err)
			s.rejected(ctx, log.OpBulkUpdate, err)
			return nil, err
		}
		next[i] = merged
		updated = append(updated, t.ID)
	}
	if len(updated) == 0 {
		return nil, nil
	}

	core.SortTransactions(next)
	s.data.Transactions = next
	s.commit(ctx, log.OpBulkUpdate, updated, storage.KeyTransactions)

	s.logger.InfoContext(ctx, "Transactions updated",
		log.FieldOperation, log.OpBulkUpdate,
		log.FieldCount, len(updated),
		"skipped", len(want)-len(updated))
	return updated, nil
}

func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

// rejected records a refused mutation. State is unchanged.
func (s *Store) rejected(ctx context.Context, op string, err error) {
	s.metrics.RecordMutation(op, false)
	s.logger.DebugContext(ctx, "Mutation rejected",
		log.FieldOperation, op,
		log.FieldErrorType, errorType(err),
		log.FieldError, err)
}
