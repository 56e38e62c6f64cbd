package core

import (
	"errors"
	"fmt"
)

// ReimbursementState is the lifecycle position of a reimbursable expense.
type ReimbursementState int

const (
	NotReimbursable ReimbursementState = iota
	Pending
	Cleared
)

// ErrInvalidTransition is returned when an action does not apply to the
// transaction's current state.
var ErrInvalidTransition = errors.New("invalid reimbursement transition")

func (s ReimbursementState) String() string {
	switch s {
	case NotReimbursable:
		return "not_reimbursable"
	case Pending:
		return "pending"
	case Cleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// ReimbursementState derives the state from the flags. isCleared is ignored
// unless the transaction is reimbursable.
func (t Transaction) ReimbursementState() ReimbursementState {
	if !t.IsReimbursable {
		return NotReimbursable
	}
	if t.IsCleared {
		return Cleared
	}
	return Pending
}

// MarkReimbursable moves a non-reimbursable expense to Pending. Already
// reimbursable transactions are returned unchanged.
func (t Transaction) MarkReimbursable() (Transaction, error) {
	if t.Type != Expense {
		return t, fmt.Errorf("%w: only expenses can be reimbursable", ErrInvalidTransition)
	}
	if t.IsReimbursable {
		return t, nil
	}
	t.IsReimbursable = true
	t.IsCleared = false
	return t, nil
}

// Clear moves Pending to Cleared.
func (t Transaction) Clear() (Transaction, error) {
	if s := t.ReimbursementState(); s != Pending {
		return t, fmt.Errorf("%w: cannot clear a %s transaction", ErrInvalidTransition, s)
	}
	t.IsCleared = true
	return t, nil
}

// CancelClear moves Cleared back to Pending.
func (t Transaction) CancelClear() (Transaction, error) {
	if s := t.ReimbursementState(); s != Cleared {
		return t, fmt.Errorf("%w: cannot cancel clearing a %s transaction", ErrInvalidTransition, s)
	}
	t.IsCleared = false
	return t, nil
}

// UnmarkReimbursable returns any state to NotReimbursable; a transaction that
// is not reimbursable cannot stay cleared.
func (t Transaction) UnmarkReimbursable() Transaction {
	t.IsReimbursable = false
	t.IsCleared = false
	return t
}

// PendingIDs returns the ids of every Pending transaction in view, in view
// order. It is the selection used to clear everything a view shows.
func PendingIDs(view []Transaction) []string {
	var ids []string
	for _, t := range view {
		if t.ReimbursementState() == Pending {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// ClearPrompt is the confirmation text shown before clearing t.
func ClearPrompt(t Transaction) string {
	return fmt.Sprintf("Mark %q (%s) as reimbursed?", t.Description, t.Amount.StringFixed(AmountPlaces))
}
