package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"fintrack/internal/core"
	"fintrack/internal/filter"
)

func runCategory(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	fs := newFlagSet("category "+args[0], e)
	typ := fs.String("type", string(core.Expense), "income or expense")
	label := fs.String("label", "", "display label")
	icon := fs.String("icon", core.IconOther, "icon key")
	used := fs.Bool("used", false, "list only categories used by transactions")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	t := core.TransactionType(strings.ToLower(*typ))

	switch args[0] {
	case "add":
		c, err := e.app.Store.AddCategory(ctx, t, *label, *icon)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "added %s category %s\n", t, c.Value)
	case "delete":
		if fs.NArg() != 1 {
			return errUsage
		}
		if err := e.app.Store.DeleteCategory(ctx, t, fs.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "deleted %s\n", fs.Arg(0))
	case "list":
		if *used {
			listUsedCategories(e, t)
			return nil
		}
		tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "VALUE\tLABEL\tICON")
		for _, c := range e.app.Store.Categories(t) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Value, c.Label, c.Icon)
		}
		tw.Flush()
	default:
		return errUsage
	}
	return nil
}

func listUsedCategories(e *env, t core.TransactionType) {
	var ts []core.Transaction
	for _, tx := range e.app.Store.Transactions() {
		if tx.Type == t {
			ts = append(ts, tx)
		}
	}
	opts := filter.CategoryOptions(ts, func(v string) (string, bool) {
		return e.app.Store.CategoryLabel(t, v)
	})
	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VALUE\tLABEL")
	for _, o := range opts {
		fmt.Fprintf(tw, "%s\t%s\n", o.Value, o.Label)
	}
	tw.Flush()
}

func runBank(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "add":
		if len(args) < 2 {
			return errUsage
		}
		b, err := e.app.Store.AddBank(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "added bank %s\n", b.ID)
	case "delete":
		if len(args) != 2 {
			return errUsage
		}
		if err := e.app.Store.DeleteBank(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "deleted %s\n", args[1])
	case "list":
		tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, b := range e.app.Store.Banks() {
			fmt.Fprintf(tw, "%s\t%s\n", b.ID, b.Name)
		}
		tw.Flush()
	default:
		return errUsage
	}
	return nil
}
