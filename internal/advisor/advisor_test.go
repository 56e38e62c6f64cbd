package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fintrack/internal/report"
	"fintrack/internal/summary"

	"github.com/shopspring/decimal"
)

type fakeGenerator struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

func sampleDashboard() report.Dashboard {
	return report.Dashboard{
		Count: 3,
		Totals: summary.Totals{
			Income:      decimal.NewFromInt(1000),
			Expense:     decimal.NewFromInt(400),
			Balance:     decimal.NewFromInt(600),
			SavingsRate: 60,
		},
		TopExpenseCategories: []summary.Ranked{
			{Key: "food", Label: "Food", Amount: decimal.NewFromInt(300)},
			{Key: "transport", Label: "Transport", Amount: decimal.NewFromInt(100)},
		},
		PendingCount: 1,
		PendingTotal: decimal.NewFromInt(50),
	}
}

func TestAdviseEmptyViewSkipsModel(t *testing.T) {
	gen := &fakeGenerator{out: "unused"}
	got, err := New(gen, nil).Advise(context.Background(), report.Dashboard{})
	if err != nil {
		t.Fatalf("advise: %v", err)
	}
	if got != NoDataMessage {
		t.Fatalf("expected fixed message, got %q", got)
	}
	if len(gen.prompts) != 0 {
		t.Fatal("generator should not be called")
	}
}

func TestAdvise(t *testing.T) {
	gen := &fakeGenerator{out: "  Cook at home more.\n"}
	got, err := New(gen, nil).Advise(context.Background(), sampleDashboard())
	if err != nil {
		t.Fatalf("advise: %v", err)
	}
	if got != "Cook at home more." {
		t.Fatalf("unexpected advice %q", got)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected one call, got %d", len(gen.prompts))
	}
}

func TestAdviseErrors(t *testing.T) {
	boom := errors.New("quota")
	if _, err := New(&fakeGenerator{err: boom}, nil).Advise(context.Background(), sampleDashboard()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
	if _, err := New(&fakeGenerator{out: "   "}, nil).Advise(context.Background(), sampleDashboard()); !errors.Is(err, ErrEmptyAdvice) {
		t.Fatalf("expected ErrEmptyAdvice, got %v", err)
	}
	if _, err := New(nil, nil).Advise(context.Background(), sampleDashboard()); err == nil {
		t.Fatal("expected error without generator")
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt(sampleDashboard())
	for _, want := range []string{
		"Income: 1000.00",
		"Expenses: 400.00",
		"Savings rate: 60.0%",
		"- Food: 300.00",
		"Pending reimbursements: 1 totalling 50.00",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "Expenses by source") {
		t.Error("empty source section should be omitted")
	}
}
