package main

import (
	"context"
	"fmt"
	"io"

	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/summary"
)

func runDashboard(_ context.Context, e *env, args []string) error {
	d, err := parseDashboard("dashboard", e, args)
	if err != nil {
		return err
	}
	printDashboard(e.out, d)
	return nil
}

func parseDashboard(name string, e *env, args []string) (report.Dashboard, error) {
	fs := newFlagSet(name, e)
	cf := bindCriteria(fs)
	if err := fs.Parse(args); err != nil {
		return report.Dashboard{}, err
	}
	c, err := cf.criteria(e.criteria())
	if err != nil {
		return report.Dashboard{}, err
	}
	return e.app.Reporter.Dashboard(c), nil
}

func printDashboard(w io.Writer, d report.Dashboard) {
	fmt.Fprintf(w, "Transactions: %d\n", d.Count)
	fmt.Fprintf(w, "Income:       %s\n", d.Totals.Income.StringFixed(core.AmountPlaces))
	fmt.Fprintf(w, "Expenses:     %s\n", d.Totals.Expense.StringFixed(core.AmountPlaces))
	fmt.Fprintf(w, "Balance:      %s\n", d.Totals.Balance.StringFixed(core.AmountPlaces))
	fmt.Fprintf(w, "Savings rate: %.1f%%\n", d.Totals.SavingsRate)

	printRanked(w, "Top expense categories", d.TopExpenseCategories)
	printRanked(w, "Expenses by source", d.ExpenseBySource)
	printRanked(w, "Income by source", d.IncomeBySource)

	if d.PendingCount > 0 {
		fmt.Fprintf(w, "\nPending reimbursements: %d (%s)\n", d.PendingCount, d.PendingTotal.StringFixed(core.AmountPlaces))
	}
	if len(d.Recent) > 0 {
		fmt.Fprintln(w, "\nRecent:")
		for _, t := range d.Recent {
			fmt.Fprintf(w, "  %s  %-30s %10s\n", t.Date.Local().Format("2006-01-02"), t.Description, t.Amount.StringFixed(core.AmountPlaces))
		}
	}
}

func printRanked(w io.Writer, title string, rows []summary.Ranked) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, r := range rows {
		fmt.Fprintf(w, "  %-24s %10s\n", r.Label, r.Amount.StringFixed(core.AmountPlaces))
	}
}

func runYears(_ context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	for _, y := range summary.DistinctYears(e.app.Store.Transactions(), e.now()) {
		fmt.Fprintln(e.out, y)
	}
	return nil
}

func runAdvice(ctx context.Context, e *env, args []string) error {
	d, err := parseDashboard("advice", e, args)
	if err != nil {
		return err
	}
	adv, err := e.app.Advisor(ctx)
	if err != nil {
		return err
	}
	text, err := adv.Advise(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, text)
	return nil
}
