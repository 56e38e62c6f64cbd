package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/filter"
)

func runAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("add", e)
	desc := fs.String("desc", "", "description")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	typ := fs.String("type", string(core.Expense), "income or expense")
	category := fs.String("category", "", "category value")
	date := fs.String("date", "", "YYYY-MM-DD (default today)")
	method := fs.String("method", string(core.Cash), "cash or online")
	bank := fs.String("bank", "", "bank id, required for online payments")
	source := fs.String("source", string(core.Personal), "source tag")
	reimbursable := fs.Bool("reimbursable", false, "expense is to be reimbursed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amt, err := core.ParseAmount(*amount)
	if err != nil {
		return err
	}
	day := e.now()
	if *date != "" {
		if day, err = core.ParseDate(*date, time.Local); err != nil {
			return err
		}
	}

	t, err := e.app.Store.AddTransaction(ctx, core.Draft{
		Description:    *desc,
		Amount:         amt,
		Type:           core.TransactionType(strings.ToLower(*typ)),
		Category:       *category,
		Date:           day,
		PaymentMethod:  core.PaymentMethod(strings.ToLower(*method)),
		Bank:           *bank,
		Source:         core.Source(*source),
		IsReimbursable: *reimbursable,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "added %s\n", t.ID)
	return nil
}

func runEdit(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("edit", e)
	id := fs.String("id", "", "transaction id")
	ids := fs.String("ids", "", "comma separated ids for a bulk edit")
	desc := fs.String("desc", "", "description")
	amount := fs.String("amount", "", "amount")
	typ := fs.String("type", "", "income or expense")
	category := fs.String("category", "", "category value")
	date := fs.String("date", "", "YYYY-MM-DD")
	method := fs.String("method", "", "cash or online")
	bank := fs.String("bank", "", "bank id")
	source := fs.String("source", "", "source tag")
	reimbursable := fs.Bool("reimbursable", false, "expense is to be reimbursed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var p core.Patch
	var perr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "desc":
			p.Description = desc
		case "amount":
			a, err := core.ParseAmount(*amount)
			if err != nil {
				perr = err
				return
			}
			p.Amount = &a
		case "type":
			t := core.TransactionType(strings.ToLower(*typ))
			p.Type = &t
		case "category":
			p.Category = category
		case "date":
			d, err := core.ParseDate(*date, time.Local)
			if err != nil {
				perr = err
				return
			}
			p.Date = &d
		case "method":
			m := core.PaymentMethod(strings.ToLower(*method))
			p.PaymentMethod = &m
		case "bank":
			p.Bank = bank
		case "source":
			s := core.Source(*source)
			p.Source = &s
		case "reimbursable":
			p.IsReimbursable = reimbursable
		}
	})
	if perr != nil {
		return perr
	}
	if p.IsEmpty() {
		return fmt.Errorf("%w: nothing to change", errUsage)
	}

	switch {
	case *id != "" && *ids == "":
		t, err := e.app.Store.UpdateTransaction(ctx, *id, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "updated %s\n", t.ID)
	case *ids != "" && *id == "":
		updated, err := e.app.Store.BulkUpdateTransactions(ctx, splitList(*ids), p)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "updated %d transaction(s)\n", len(updated))
	default:
		return errUsage
	}
	return nil
}

func runDelete(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id := args[0]
	t, ok := e.app.Store.Transaction(id)
	if !ok {
		return fmt.Errorf("transaction %s not found", id)
	}
	if !e.confirm(fmt.Sprintf("Delete %q (%s)?", t.Description, t.Amount.StringFixed(core.AmountPlaces))) {
		fmt.Fprintln(e.out, "cancelled")
		return nil
	}
	e.app.Store.DeleteTransaction(ctx, id)
	fmt.Fprintf(e.out, "deleted %s\n", id)
	return nil
}

func runList(_ context.Context, e *env, args []string) error {
	view, err := parseView("list", e, args)
	if err != nil {
		return err
	}
	printTransactions(e.out, view, e)
	return nil
}

// parseView parses filter flags and returns the matching transactions.
func parseView(name string, e *env, args []string) ([]core.Transaction, error) {
	fs := newFlagSet(name, e)
	cf := bindCriteria(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c, err := cf.criteria(e.criteria())
	if err != nil {
		return nil, err
	}
	return filter.Apply(e.app.Store.Transactions(), c), nil
}

func (e *env) criteria() filter.Criteria {
	c := e.app.Criteria()
	c.Now = e.now
	return c
}

func printTransactions(w io.Writer, ts []core.Transaction, e *env) {
	if len(ts) == 0 {
		fmt.Fprintln(w, "no transactions")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tCATEGORY\tTYPE\tAMOUNT\tSOURCE\tSTATUS")
	for _, t := range ts {
		category, ok := e.app.Store.CategoryLabel(t.Type, t.Category)
		if !ok {
			category = t.Category
		}
		status := ""
		if s := t.ReimbursementState(); s != core.NotReimbursable {
			status = s.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Date.Local().Format("2006-01-02"),
			t.Description,
			category,
			e.app.Labels.Type(t.Type),
			t.Amount.StringFixed(core.AmountPlaces),
			e.app.Labels.Source(t.Source),
			status)
	}
	tw.Flush()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
