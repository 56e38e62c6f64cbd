package store

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// ClearReimbursement moves a Pending transaction to Cleared.
func (s *Store) ClearReimbursement(ctx context.Context, id string) (core.Transaction, error) {
	return s.transition(ctx, log.OpClear, id, core.Transaction.Clear)
}

// CancelClear moves a Cleared transaction back to Pending.
func (s *Store) CancelClear(ctx context.Context, id string) (core.Transaction, error) {
	return s.transition(ctx, log.OpCancelClear, id, core.Transaction.CancelClear)
}

// MarkReimbursable moves an expense to Pending. Income is rejected.
func (s *Store) MarkReimbursable(ctx context.Context, id string) (core.Transaction, error) {
	return s.transition(ctx, log.OpMark, id, core.Transaction.MarkReimbursable)
}

// UnmarkReimbursable returns a transaction to NotReimbursable from any state.
func (s *Store) UnmarkReimbursable(ctx context.Context, id string) (core.Transaction, error) {
	return s.transition(ctx, log.OpUnmark, id, func(t core.Transaction) (core.Transaction, error) {
		return t.UnmarkReimbursable(), nil
	})
}

func (s *Store) transition(ctx context.Context, op, id string, step func(core.Transaction) (core.Transaction, error)) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		s.rejected(ctx, op, err)
		return core.Transaction{}, err
	}
	t, err := step(s.data.Transactions[i])
	if err != nil {
		s.rejected(ctx, op, err)
		return core.Transaction{}, err
	}

	s.data.Transactions[i] = t
	s.commit(ctx, op, []string{id}, storage.KeyTransactions)

	s.logger.InfoContext(ctx, "Reimbursement state changed",
		log.FieldOperation, op,
		log.FieldTransactionID, id,
		"state", t.ReimbursementState().String())
	return t, nil
}

// BulkClear clears every id of selection that is in view and still Pending in
// the store. Anything else is skipped. The cleared ids are returned, in store
// order; an empty result means nothing changed.
func (s *Store) BulkClear(ctx context.Context, selection []string, view []core.Transaction) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	inView := make(map[string]struct{}, len(view))
	for _, t := range view {
		inView[t.ID] = struct{}{}
	}
	selected := make(map[string]struct{}, len(selection))
	for _, id := range selection {
		if _, ok := inView[id]; ok {
			selected[id] = struct{}{}
		}
	}

	var cleared []string
	for i, t := range s.data.Transactions {
		if _, ok := selected[t.ID]; !ok {
			continue
		}
		next, err := t.Clear()
		if err != nil {
			continue
		}
		s.data.Transactions[i] = next
		cleared = append(cleared, t.ID)
	}
	if len(cleared) == 0 {
		return nil
	}

	s.commit(ctx, log.OpBulkClear, cleared, storage.KeyTransactions)
	s.logger.InfoContext(ctx, "Reimbursements cleared",
		log.FieldOperation, log.OpBulkClear,
		log.FieldCount, len(cleared),
		"skipped", len(selection)-len(cleared))
	return cleared
}
