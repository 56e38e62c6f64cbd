// Package advisor turns a dashboard into a short piece of spending advice
// using a text generation model.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/log"
	"fintrack/internal/report"
)

// NoDataMessage is returned without calling the model when the view is empty.
const NoDataMessage = "Add some transactions first to get personalised advice."

var ErrEmptyAdvice = errors.New("model returned no advice")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Advisor struct {
	gen    Generator
	logger *log.Logger
}

func New(gen Generator, logger *log.Logger) *Advisor {
	if logger == nil {
		logger = log.Discard()
	}
	return &Advisor{gen: gen, logger: logger.WithComponent(log.ComponentAdvisor)}
}

// Advise asks the generator for advice about d.
func (a *Advisor) Advise(ctx context.Context, d report.Dashboard) (string, error) {
	if d.Count == 0 {
		return NoDataMessage, nil
	}
	if a.gen == nil {
		return "", errors.New("advice generator not configured")
	}

	prompt := Prompt(d)
	a.logger.DebugContext(ctx, "Requesting advice", log.FieldCount, d.Count, "prompt_length", len(prompt))

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.logger.WarnContext(ctx, "Advice generation failed", log.FieldError, err)
		return "", fmt.Errorf("generate advice: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyAdvice
	}
	return text, nil
}

// Prompt renders d as plain text instructions for the model.
func Prompt(d report.Dashboard) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Based on the summary below, ")
	b.WriteString("give three short, concrete suggestions to improve savings. ")
	b.WriteString("Answer in plain text without markdown.\n\n")

	fmt.Fprintf(&b, "Transactions: %d\n", d.Count)
	fmt.Fprintf(&b, "Income: %s\n", d.Totals.Income.StringFixed(2))
	fmt.Fprintf(&b, "Expenses: %s\n", d.Totals.Expense.StringFixed(2))
	fmt.Fprintf(&b, "Balance: %s\n", d.Totals.Balance.StringFixed(2))
	fmt.Fprintf(&b, "Savings rate: %.1f%%\n", d.Totals.SavingsRate)

	if len(d.TopExpenseCategories) > 0 {
		b.WriteString("\nTop expense categories:\n")
		for _, r := range d.TopExpenseCategories {
			fmt.Fprintf(&b, "- %s: %s\n", r.Label, r.Amount.StringFixed(2))
		}
	}
	if len(d.ExpenseBySource) > 0 {
		b.WriteString("\nExpenses by source:\n")
		for _, r := range d.ExpenseBySource {
			fmt.Fprintf(&b, "- %s: %s\n", r.Label, r.Amount.StringFixed(2))
		}
	}
	if d.PendingCount > 0 {
		fmt.Fprintf(&b, "\nPending reimbursements: %d totalling %s\n", d.PendingCount, d.PendingTotal.StringFixed(2))
	}
	return b.String()
}
