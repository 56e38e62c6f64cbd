package main

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/filter"
	"fintrack/internal/summary"
)

func runReimburse(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "clear":
		return reimburseClear(ctx, e, args[1:])
	case "cancel":
		if len(args) != 2 {
			return errUsage
		}
		t, err := e.app.Store.CancelClear(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s is pending again\n", t.ID)
		return nil
	case "mark", "unmark":
		if len(args) != 2 {
			return errUsage
		}
		step := e.app.Store.MarkReimbursable
		if args[0] == "unmark" {
			step = e.app.Store.UnmarkReimbursable
		}
		t, err := step(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s is %s\n", t.ID, t.ReimbursementState())
		return nil
	case "pending":
		view, err := parseView("reimburse pending", e, args[1:])
		if err != nil {
			return err
		}
		var pending []core.Transaction
		for _, t := range view {
			if t.ReimbursementState() == core.Pending {
				pending = append(pending, t)
			}
		}
		printTransactions(e.out, pending, e)
		if len(pending) > 0 {
			fmt.Fprintf(e.out, "\nPending total: %s\n", summary.PendingTotal(pending).StringFixed(core.AmountPlaces))
		}
		return nil
	default:
		return errUsage
	}
}

// reimburseClear clears one id after a confirmation, or a selection through
// the store's bulk clear. A selection is limited to the filtered view; -all
// selects every pending transaction of it.
func reimburseClear(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("reimburse clear", e)
	all := fs.Bool("all", false, "clear every pending transaction in the view")
	cf := bindCriteria(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids := fs.Args()

	if !*all && len(ids) == 1 {
		t, ok := e.app.Store.Transaction(ids[0])
		if !ok {
			return fmt.Errorf("transaction %s not found", ids[0])
		}
		if t.ReimbursementState() != core.Pending {
			return fmt.Errorf("%w: %s is %s", core.ErrInvalidTransition, t.ID, t.ReimbursementState())
		}
		if !e.confirm(core.ClearPrompt(t)) {
			fmt.Fprintln(e.out, "cancelled")
			return nil
		}
		if _, err := e.app.Store.ClearReimbursement(ctx, t.ID); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "cleared %s\n", t.ID)
		return nil
	}

	if *all == (len(ids) > 0) {
		return errUsage
	}
	c, err := cf.criteria(e.criteria())
	if err != nil {
		return err
	}
	view := filter.Apply(e.app.Store.Transactions(), c)
	if *all {
		ids = core.PendingIDs(view)
	}

	selected := filterIDs(view, ids)
	pending := len(core.PendingIDs(selected))
	if pending == 0 {
		fmt.Fprintln(e.out, "nothing to clear")
		return nil
	}
	question := fmt.Sprintf("Mark %d transaction(s) totalling %s as reimbursed?",
		pending, summary.PendingTotal(selected).StringFixed(core.AmountPlaces))
	if !e.confirm(question) {
		fmt.Fprintln(e.out, "cancelled")
		return nil
	}
	cleared := e.app.Store.BulkClear(ctx, ids, view)
	fmt.Fprintf(e.out, "cleared %d transaction(s)\n", len(cleared))
	return nil
}

func filterIDs(view []core.Transaction, ids []string) []core.Transaction {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []core.Transaction
	for _, t := range view {
		if _, ok := want[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}
