// Package summary reduces a transaction subset to numbers: totals, grouped
// sums, rankings and the year list used by pickers.
package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Totals of a subset. Sums are exact; SavingsRate is a percentage.
type Totals struct {
	Income      decimal.Decimal
	Expense     decimal.Decimal
	Balance     decimal.Decimal
	SavingsRate float64
}

// ComputeTotals makes a single pass over ts. Unreadable amounts decode as zero
// upstream, so they add nothing here.
func ComputeTotals(ts []core.Transaction) Totals {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range ts {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount.Decimal)
		case core.Expense:
			expense = expense.Add(t.Amount.Decimal)
		}
	}
	out := Totals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
	if income.IsPositive() {
		out.SavingsRate = out.Balance.Div(income).Mul(hundred).InexactFloat64()
	}
	return out
}

// KeyAmount is a grouped sum.
type KeyAmount struct {
	Key    string
	Amount decimal.Decimal
}

// Grouping is a key -> sum mapping that remembers the order in which keys
// were first seen.
type Grouping struct {
	entries []KeyAmount
	index   map[string]int
}

// NewGrouping returns an empty grouping.
func NewGrouping() *Grouping {
	return &Grouping{index: make(map[string]int)}
}

// Add accumulates amount under key.
func (g *Grouping) Add(key string, amount decimal.Decimal) {
	if i, ok := g.index[key]; ok {
		g.entries[i].Amount = g.entries[i].Amount.Add(amount)
		return
	}
	g.index[key] = len(g.entries)
	g.entries = append(g.entries, KeyAmount{Key: key, Amount: amount})
}

// Entries returns a copy of the sums in first-seen order.
func (g *Grouping) Entries() []KeyAmount {
	out := make([]KeyAmount, len(g.entries))
	copy(out, g.entries)
	return out
}

// GroupByCategory sums the transactions of type typ by category value.
func GroupByCategory(ts []core.Transaction, typ core.TransactionType) *Grouping {
	g := NewGrouping()
	for _, t := range ts {
		if t.Type == typ {
			g.Add(t.Category, t.Amount.Decimal)
		}
	}
	return g
}

// GroupBySource sums the transactions of type typ by source. Every known
// source is present, in display order, even when its sum is zero; records
// without a source count as personal.
func GroupBySource(ts []core.Transaction, typ core.TransactionType) *Grouping {
	g := NewGrouping()
	for _, s := range core.Sources() {
		g.Add(string(s), decimal.Zero)
	}
	for _, t := range ts {
		if t.Type == typ {
			g.Add(string(t.EffectiveSource()), t.Amount.Decimal)
		}
	}
	return g
}

// Ranked is one row of a ranking.
type Ranked struct {
	Key    string
	Label  string
	Amount decimal.Decimal
}

// TopN ranks g by amount, largest first, and keeps at most n rows. Ties keep
// first-seen order. label resolves display text; a nil resolver or an unknown
// key falls back to the key itself. n <= 0 keeps every row.
func TopN(g *Grouping, n int, label func(key string) (string, bool)) []Ranked {
	entries := g.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount.GreaterThan(entries[j].Amount)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	out := make([]Ranked, len(entries))
	for i, e := range entries {
		l := e.Key
		if label != nil {
			if v, ok := label(e.Key); ok {
				l = v
			}
		}
		out[i] = Ranked{Key: e.Key, Label: l, Amount: e.Amount}
	}
	return out
}

// NonZero drops rows whose amount is zero.
func NonZero(rows []Ranked) []Ranked {
	out := rows[:0:0]
	for _, r := range rows {
		if !r.Amount.IsZero() {
			out = append(out, r)
		}
	}
	return out
}

// Recent returns the first n transactions of ts. ts is expected to be in store
// order, most recent first.
func Recent(ts []core.Transaction, n int) []core.Transaction {
	if n < 0 {
		n = 0
	}
	if len(ts) < n {
		n = len(ts)
	}
	out := make([]core.Transaction, n)
	copy(out, ts[:n])
	return out
}

// PendingTotal sums the amounts of the Pending transactions in ts.
func PendingTotal(ts []core.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range ts {
		if t.ReimbursementState() == core.Pending {
			sum = sum.Add(t.Amount.Decimal)
		}
	}
	return sum
}

// DistinctYears lists the years present in ts, most recent first. The year of
// now is always included.
func DistinctYears(ts []core.Transaction, now time.Time) []int {
	seen := map[int]struct{}{now.Year(): {}}
	for _, t := range ts {
		if t.Date.IsZero() {
			continue
		}
		seen[t.Date.In(now.Location()).Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
