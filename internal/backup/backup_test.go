package backup

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/store"
)

var ctx = context.Background()

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	n := 0
	s := store.Open(ctx, store.Options{
		Backend: storage.NewMemory(),
		NewID: func() string {
			n++
			return "id-" + string(rune('a'+n))
		},
	})
	drafts := []core.Draft{
		{Description: `Dinner "with" friends`, Amount: core.AmountFromFloat(120.5), Type: core.Expense, Category: "food",
			Date: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), PaymentMethod: core.Cash, Source: core.SourceA, IsReimbursable: true},
		{Description: "Salary", Amount: core.AmountFromFloat(3000), Type: core.Income, Category: "salary",
			Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), PaymentMethod: core.Online, Bank: "kbank"},
	}
	for _, d := range drafts {
		if _, err := s.AddTransaction(ctx, d); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := s.AddBank(ctx, "Local Credit"); err != nil {
		t.Fatalf("seed bank: %v", err)
	}
	return s
}

// restore applies raw to s the way the restore command does.
func restore(s *store.Store, raw []byte) ValidationResult {
	res := ParseSnapshot(raw)
	if res.OK() {
		s.Replace(ctx, res.Replacement)
	}
	return res
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := seededStore(t)
	var buf bytes.Buffer
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := ExportSnapshot(&buf, src.Snapshot(), now); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), `"version": "1.0"`) || !strings.Contains(buf.String(), `"exportedAt": "2024-03-01T10:00:00.000Z"`) {
		t.Fatalf("missing metadata in %s", buf.String())
	}

	dst := store.Open(ctx, store.Options{Backend: storage.NewMemory()})
	res := restore(dst, buf.Bytes())
	if !res.OK() {
		t.Fatalf("import: %v", res.Err)
	}
	if res.Version != Version {
		t.Fatalf("expected version %q, got %q", Version, res.Version)
	}

	want, got := src.Snapshot(), dst.Snapshot()
	if len(got.Transactions) != len(want.Transactions) {
		t.Fatalf("expected %d transactions, got %d", len(want.Transactions), len(got.Transactions))
	}
	for i := range want.Transactions {
		w, g := want.Transactions[i], got.Transactions[i]
		if w.ID != g.ID || w.Description != g.Description || !w.Amount.Equal(g.Amount.Decimal) ||
			!w.Date.Equal(g.Date) || w.IsReimbursable != g.IsReimbursable || w.Bank != g.Bank || w.Source != g.Source {
			t.Fatalf("transaction %d differs:\nwant %+v\ngot  %+v", i, w, g)
		}
	}
	if !reflect.DeepEqual(want.Banks, got.Banks) ||
		!reflect.DeepEqual(want.IncomeCategories, got.IncomeCategories) ||
		!reflect.DeepEqual(want.ExpenseCategories, got.ExpenseCategories) {
		t.Fatal("reference collections differ after round trip")
	}
}

func TestImportTransactionsOnly(t *testing.T) {
	s := seededStore(t)
	banks := s.Banks()
	cats := s.Categories(core.Expense)

	raw := []byte(`{"transactions":[
		{"id":"r1","description":"Restored","amount":10,"type":"expense","category":"food","date":"2023-05-05T08:00:00Z","paymentMethod":"cash"}
	]}`)
	res := restore(s, raw)
	if !res.OK() {
		t.Fatalf("import: %v", res.Err)
	}
	txs := s.Transactions()
	if len(txs) != 1 || txs[0].ID != "r1" {
		t.Fatalf("transactions should be fully replaced, got %v", txs)
	}
	if !reflect.DeepEqual(s.Banks(), banks) || !reflect.DeepEqual(s.Categories(core.Expense), cats) {
		t.Fatal("categories and banks must be untouched")
	}
}

func TestRestoreNormalizesReimbursementFlags(t *testing.T) {
	s := seededStore(t)
	raw := []byte(`{"transactions":[
		{"id":"stray","description":"Stray","amount":5,"type":"expense","category":"food","date":"2023-05-05T08:00:00Z","paymentMethod":"cash","isCleared":true},
		{"id":"pay","description":"Pay","amount":900,"type":"income","category":"salary","date":"2023-05-06T08:00:00Z","paymentMethod":"cash","isReimbursable":true}
	]}`)
	if res := restore(s, raw); !res.OK() {
		t.Fatalf("restore: %v", res.Err)
	}
	for _, tx := range s.Transactions() {
		if tx.IsReimbursable || tx.IsCleared {
			t.Fatalf("%s: expected flags normalized, got %+v", tx.ID, tx)
		}
	}
	if ids := core.PendingIDs(s.Transactions()); len(ids) != 0 {
		t.Fatalf("income must never be pending, got %v", ids)
	}
}

func TestImportIgnoresNonArrayFields(t *testing.T) {
	s := seededStore(t)
	banks := s.Banks()
	res := restore(s, []byte(`{"transactions":[],"banks":"nope","incomeCategories":[]}`))
	if !res.OK() {
		t.Fatalf("import: %v", res.Err)
	}
	if len(res.Ignored) != 1 || res.Ignored[0] != "banks" {
		t.Fatalf("expected banks ignored, got %v", res.Ignored)
	}
	if !reflect.DeepEqual(s.Banks(), banks) {
		t.Fatal("non-array banks must leave banks untouched")
	}
	if len(s.Categories(core.Income)) != 0 {
		t.Fatal("an empty array replaces the collection")
	}
}

func TestImportRejected(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `hello`, ErrInvalidFormat},
		{"array", `[1,2]`, ErrInvalidFormat},
		{"null", `null`, ErrInvalidFormat},
		{"no transactions", `{"banks":[]}`, ErrMissingTransactions},
		{"transactions not array", `{"transactions":{"a":1}}`, ErrMissingTransactions},
		{"bad record", `{"transactions":[{"id":"x","date":"yesterday"}]}`, ErrCorruptSnapshot},
		{"bad banks", `{"transactions":[],"banks":[1]}`, ErrCorruptSnapshot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := seededStore(t)
			before := s.Snapshot()
			rev := s.Revision()

			res := restore(s, []byte(tc.raw))
			if res.OK() || !errors.Is(res.Err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, res.Err)
			}
			if s.Revision() != rev || len(s.Transactions()) != len(before.Transactions) {
				t.Fatal("rejected import must not touch the store")
			}
		})
	}
}

func TestImportLenientAmount(t *testing.T) {
	res := ParseSnapshot([]byte(`{"transactions":[
		{"id":"a","description":"x","amount":"abc","type":"expense","category":"food","date":"2024-01-01","paymentMethod":"cash"}
	]}`))
	if !res.OK() {
		t.Fatalf("unexpected error %v", res.Err)
	}
	if !res.Replacement.Transactions[0].Amount.IsZero() {
		t.Fatal("non-numeric amount should decode as zero")
	}
}

func TestWriteCSV(t *testing.T) {
	s := seededStore(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, s.Transactions(), s, core.DefaultLabels()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\uFEFF") {
		t.Fatal("expected byte order mark")
	}
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, "\uFEFF"), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d: %q", len(lines), lines)
	}
	if lines[0] != "Date,Description,Category,Source,Type,Amount,Payment Method,Bank" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	wantDinner := `"Dinner ""with"" friends",Food,Source A,Expense,120.5,Cash,`
	if !strings.HasPrefix(lines[1], "2024-02-10T") || !strings.HasSuffix(lines[1], wantDinner) {
		t.Fatalf("unexpected dinner row %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], `"Salary",Salary,Personal,Income,3000,Online,Kasikornbank`) {
		t.Fatalf("unexpected salary row %q", lines[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	s := seededStore(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, s, core.DefaultLabels()); !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatal("nothing should be written")
	}
}

func TestFileNames(t *testing.T) {
	now := time.Date(2024, 7, 9, 23, 0, 0, 0, time.UTC)
	if got := BackupFileName(now); got != "fintrack-backup-2024-07-09.json" {
		t.Fatalf("unexpected backup name %q", got)
	}
	if got := ExportFileName(now); got != "fintrack-export-2024-07-09.csv" {
		t.Fatalf("unexpected export name %q", got)
	}
}
