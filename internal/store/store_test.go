package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

var ctx = context.Background()

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("tx-%d", n)
	}
}

func newTestStore(t *testing.T, backend storage.Backend) *Store {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	return Open(ctx, Options{
		Backend: backend,
		Now:     clock.Now,
		NewID:   sequentialIDs(),
	})
}

func expense(desc string, amount float64, day int) core.Draft {
	return core.Draft{
		Description:   desc,
		Amount:        core.AmountFromFloat(amount),
		Type:          core.Expense,
		Category:      "food",
		Date:          time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
		PaymentMethod: core.Cash,
		Source:        core.Personal,
	}
}

func mustAdd(t *testing.T, s *Store, d core.Draft) core.Transaction {
	t.Helper()
	tx, err := s.AddTransaction(ctx, d)
	if err != nil {
		t.Fatalf("add %q: %v", d.Description, err)
	}
	return tx
}

// flakyBackend wraps Memory and fails every call while down is set.
type flakyBackend struct {
	*storage.Memory
	mu    sync.Mutex
	down  bool
	saves int
}

var errDiskFull = errors.New("quota exceeded")

func (f *flakyBackend) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *flakyBackend) Load(ctx context.Context, key storage.Key) ([]byte, error) {
	f.mu.Lock()
	down := f.down
	f.mu.Unlock()
	if down {
		return nil, errDiskFull
	}
	return f.Memory.Load(ctx, key)
}

func (f *flakyBackend) Save(ctx context.Context, key storage.Key, data []byte) error {
	f.mu.Lock()
	f.saves++
	down := f.down
	f.mu.Unlock()
	if down {
		return errDiskFull
	}
	return f.Memory.Save(ctx, key, data)
}

// unreadableBackend wraps Memory and fails every read of one key.
type unreadableBackend struct {
	*storage.Memory
	key storage.Key
}

func (u *unreadableBackend) Load(ctx context.Context, key storage.Key) ([]byte, error) {
	if key == u.key {
		return nil, errDiskFull
	}
	return u.Memory.Load(ctx, key)
}

type recordingPublisher struct {
	ops []string
}

func (p *recordingPublisher) PublishLedgerChange(_ context.Context, op string, _ []string, _ int64) error {
	p.ops = append(p.ops, op)
	return nil
}

func TestLoadDefaultsOnEmptyBackend(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	snap := s.Snapshot()
	if len(snap.Transactions) != 0 {
		t.Fatalf("expected no transactions, got %d", len(snap.Transactions))
	}
	if len(snap.ExpenseCategories) != len(core.DefaultExpenseCategories()) {
		t.Fatal("expected default expense categories")
	}
	if len(snap.Banks) != len(core.DefaultBanks()) {
		t.Fatal("expected default banks")
	}
	if s.Degraded() {
		t.Fatal("missing keys must not degrade the store")
	}
}

func TestLoadCorruptCollectionFallsBack(t *testing.T) {
	mem := storage.NewMemory()
	_ = mem.Save(ctx, storage.KeyBanks, []byte(`{not json`))
	_ = mem.Save(ctx, storage.KeyIncomeCategories, []byte(`[{"value":"gift","label":"Gift"}]`))
	_ = mem.Save(ctx, storage.KeyTransactions, []byte(`[
		{"id":"old","description":"Legacy","amount":"12.5","type":"expense","category":"food","date":"2023-01-02","paymentMethod":"cash"},
		{"id":"new","description":"Newer","amount":3,"type":"expense","category":"food","date":"2024-01-02T10:00:00Z","paymentMethod":"cash"}
	]`))

	s := newTestStore(t, mem)
	snap := s.Snapshot()

	if len(snap.Banks) != len(core.DefaultBanks()) {
		t.Fatalf("corrupt banks should fall back to defaults, got %v", snap.Banks)
	}
	if len(snap.IncomeCategories) != 1 || snap.IncomeCategories[0].Value != "gift" {
		t.Fatalf("valid collection should load, got %v", snap.IncomeCategories)
	}
	if len(snap.Transactions) != 2 || snap.Transactions[0].ID != "new" {
		t.Fatalf("transactions should load sorted, got %v", snap.Transactions)
	}
	if got := snap.Transactions[1].Amount.StringFixed(2); got != "12.50" {
		t.Fatalf("string amount should decode, got %s", got)
	}
	if snap.Transactions[1].EffectiveSource() != core.Personal {
		t.Fatal("legacy record should count as personal")
	}
}

func TestLoadNormalizesReimbursementFlags(t *testing.T) {
	mem := storage.NewMemory()
	_ = mem.Save(ctx, storage.KeyTransactions, []byte(`[
		{"id":"stray","description":"Stray","amount":5,"type":"expense","category":"food","date":"2024-01-01T10:00:00Z","paymentMethod":"cash","isCleared":true},
		{"id":"pay","description":"Pay","amount":900,"type":"income","category":"salary","date":"2024-02-01T10:00:00Z","paymentMethod":"online","isReimbursable":true,"isCleared":true}
	]`))

	s := newTestStore(t, mem)
	txs := s.Transactions()
	if len(txs) != 2 || txs[0].ID != "pay" {
		t.Fatalf("expected stored records sorted on load, got %v", txs)
	}
	for _, tx := range txs {
		if tx.IsReimbursable || tx.IsCleared || tx.ReimbursementState() != core.NotReimbursable {
			t.Fatalf("%s: expected flags normalized, got %+v", tx.ID, tx)
		}
	}
	if got := core.PendingIDs(txs); len(got) != 0 {
		t.Fatalf("expected nothing pending, got %v", got)
	}
}

func TestAddTransactionPersistsAndSorts(t *testing.T) {
	mem := storage.NewMemory()
	s := newTestStore(t, mem)

	first := mustAdd(t, s, expense("Breakfast", 10, 3))
	second := mustAdd(t, s, expense("Lunch", 20, 3))
	mustAdd(t, s, expense("Earlier", 5, 1))

	txs := s.Transactions()
	if !core.IsOrdered(txs) {
		t.Fatal("transactions must be ordered by date descending")
	}
	// Same calendar day keeps entry order: later entry first.
	if txs[0].ID != second.ID || txs[1].ID != first.ID || txs[2].Description != "Earlier" {
		t.Fatalf("unexpected order: %v", txs)
	}

	raw, err := mem.Load(ctx, storage.KeyTransactions)
	if err != nil {
		t.Fatalf("expected transactions persisted: %v", err)
	}
	var persisted []core.Transaction
	if err := json.Unmarshal(raw, &persisted); err != nil || len(persisted) != 3 {
		t.Fatalf("unexpected persisted data %s: %v", raw, err)
	}
}

func TestAddTransactionValidation(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	rev := s.Revision()

	d := expense("", 10, 1)
	if _, err := s.AddTransaction(ctx, d); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	d = expense("Taxi", 0, 1)
	if _, err := s.AddTransaction(ctx, d); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	d = expense("Taxi", 10, 1)
	d.PaymentMethod = core.Online
	if _, err := s.AddTransaction(ctx, d); !errors.Is(err, core.ErrMissingBank) {
		t.Fatalf("expected ErrMissingBank, got %v", err)
	}
	if len(s.Transactions()) != 0 || s.Revision() != rev {
		t.Fatal("refused creation must not touch the store")
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	tx := mustAdd(t, s, expense("Coffee", 3, 2))

	if !s.DeleteTransaction(ctx, tx.ID) {
		t.Fatal("expected delete to report removal")
	}
	if s.DeleteTransaction(ctx, tx.ID) {
		t.Fatal("deleting a missing id should be a no-op")
	}
	if len(s.Transactions()) != 0 {
		t.Fatal("expected empty store")
	}
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	a := mustAdd(t, s, expense("A", 10, 10))
	mustAdd(t, s, expense("B", 10, 5))

	newDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := s.UpdateTransaction(ctx, a.ID, core.Patch{Date: &newDate})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Date.Hour() != a.Date.Hour() || got.Date.Minute() != a.Date.Minute() || got.Date.Second() != a.Date.Second() {
		t.Fatalf("time of day should be kept: %v -> %v", a.Date, got.Date)
	}
	txs := s.Transactions()
	if !core.IsOrdered(txs) || txs[1].ID != a.ID {
		t.Fatalf("expected re-sort after update, got %v", txs)
	}

	if _, err := s.UpdateTransaction(ctx, "missing", core.Patch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	empty := ""
	if _, err := s.UpdateTransaction(ctx, a.ID, core.Patch{Description: &empty}); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if cur, _ := s.Transaction(a.ID); cur.Description != "A" {
		t.Fatal("failed update must not change the record")
	}
}

func TestUpdateTurnsOffReimbursement(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	d := expense("Hotel", 300, 4)
	d.IsReimbursable = true
	tx := mustAdd(t, s, d)
	if _, err := s.ClearReimbursement(ctx, tx.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}

	off := false
	got, err := s.UpdateTransaction(ctx, tx.ID, core.Patch{IsReimbursable: &off})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.IsCleared || got.ReimbursementState() != core.NotReimbursable {
		t.Fatalf("expected not reimbursable and not cleared, got %+v", got)
	}
}

func TestBulkUpdateSkipsMissing(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	a := mustAdd(t, s, expense("A", 1, 1))
	b := mustAdd(t, s, expense("B", 2, 2))

	cat := "transport"
	updated, err := s.BulkUpdateTransactions(ctx, []string{a.ID, "ghost", b.ID}, core.Patch{Category: &cat})
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("expected 2 updated, got %v", updated)
	}
	for _, tx := range s.Transactions() {
		if tx.Category != "transport" {
			t.Fatalf("expected category change on %s", tx.ID)
		}
	}
	if !core.IsOrdered(s.Transactions()) {
		t.Fatal("expected ordered transactions")
	}

	zero := core.ZeroAmount
	if _, err := s.BulkUpdateTransactions(ctx, []string{a.ID}, core.Patch{Amount: &zero}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if cur, _ := s.Transaction(a.ID); !cur.Amount.Equal(core.AmountFromFloat(1).Decimal) {
		t.Fatal("failed bulk update must not change records")
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustAdd(t, s, expense("Dinner", 30, 2))
	before := s.Categories(core.Expense)

	err := s.DeleteCategory(ctx, core.Expense, "food")
	if !errors.Is(err, ErrCategoryInUse) || !errors.Is(err, ErrReferentialIntegrity) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
	if len(s.Categories(core.Expense)) != len(before) {
		t.Fatal("category list must be unchanged")
	}

	if err := s.DeleteCategory(ctx, core.Expense, "health"); err != nil {
		t.Fatalf("unused category should delete: %v", err)
	}
	if len(s.Categories(core.Expense)) != len(before)-1 {
		t.Fatal("expected one category fewer")
	}
	if err := s.DeleteCategory(ctx, core.Expense, "health"); err != nil {
		t.Fatalf("missing category should be a no-op: %v", err)
	}
}

func TestAddCategoryGeneratesValue(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	c, err := s.AddCategory(ctx, core.Income, "  Side Gig ", "other")
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	if c.Label != "Side Gig" || len(c.Value) < len("side_gig_") || c.Value[:9] != "side_gig_" {
		t.Fatalf("unexpected category %+v", c)
	}
	if label, ok := s.CategoryLabel(core.Income, c.Value); !ok || label != "Side Gig" {
		t.Fatalf("expected label lookup, got %q %v", label, ok)
	}
	if _, err := s.AddCategory(ctx, core.Income, " ", ""); !errors.Is(err, core.ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
}

func TestBanks(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	b, err := s.AddBank(ctx, "Credit Union")
	if err != nil {
		t.Fatalf("add bank: %v", err)
	}
	d := expense("Online order", 40, 3)
	d.PaymentMethod = core.Online
	d.Bank = b.ID
	mustAdd(t, s, d)

	if err := s.DeleteBank(ctx, b.ID); !errors.Is(err, ErrBankInUse) {
		t.Fatalf("expected ErrBankInUse, got %v", err)
	}
	if err := s.DeleteBank(ctx, "scb"); err != nil {
		t.Fatalf("delete unused bank: %v", err)
	}
	if _, ok := s.BankName("scb"); ok {
		t.Fatal("scb should be gone")
	}
}

func TestReplaceKeepsMissingCollections(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustAdd(t, s, expense("Old", 1, 1))
	if _, err := s.AddBank(ctx, "Extra"); err != nil {
		t.Fatal(err)
	}
	banks := s.Banks()
	cats := s.Categories(core.Expense)

	imported := []core.Transaction{
		{ID: "i1", Description: "X", Amount: core.AmountFromFloat(1), Type: core.Expense, Category: "food",
			Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), PaymentMethod: core.Cash},
		{ID: "i2", Description: "Y", Amount: core.AmountFromFloat(2), Type: core.Expense, Category: "food",
			Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), PaymentMethod: core.Cash},
	}
	s.Replace(ctx, Replacement{Transactions: imported})

	txs := s.Transactions()
	if len(txs) != 2 || txs[0].ID != "i2" {
		t.Fatalf("transactions should be fully replaced and sorted, got %v", txs)
	}
	if len(s.Banks()) != len(banks) || len(s.Categories(core.Expense)) != len(cats) {
		t.Fatal("absent collections must be left untouched")
	}

	s.Replace(ctx, Replacement{Transactions: nil, Banks: []core.Bank{}})
	if len(s.Banks()) != 0 || len(s.Transactions()) != 0 {
		t.Fatal("present empty collections replace the current ones")
	}
}

func TestReplaceNormalizesReimbursementFlags(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Replace(ctx, Replacement{Transactions: []core.Transaction{
		{ID: "stray", Description: "Stray", Amount: core.AmountFromFloat(5), Type: core.Expense, Category: "food",
			Date: date, PaymentMethod: core.Cash, IsCleared: true},
		{ID: "pay", Description: "Pay", Amount: core.AmountFromFloat(900), Type: core.Income, Category: "salary",
			Date: date, PaymentMethod: core.Online, IsReimbursable: true, IsCleared: true},
	}})

	for _, tx := range s.Transactions() {
		if tx.IsReimbursable || tx.IsCleared {
			t.Fatalf("%s: expected flags normalized, got %+v", tx.ID, tx)
		}
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustAdd(t, s, expense("Old", 1, 1))
	_ = s.DeleteCategory(ctx, core.Expense, "health")
	s.Reset(ctx)

	snap := s.Snapshot()
	if len(snap.Transactions) != 0 || len(snap.ExpenseCategories) != len(core.DefaultExpenseCategories()) {
		t.Fatalf("expected defaults after reset, got %+v", snap)
	}
}

func TestReloadRoundTrip(t *testing.T) {
	mem := storage.NewMemory()
	s := newTestStore(t, mem)
	mustAdd(t, s, expense("Kept", 12.34, 7))
	_, _ = s.AddCategory(ctx, core.Expense, "Pets", "")

	reloaded := newTestStore(t, mem)
	if len(reloaded.Transactions()) != 1 || reloaded.Transactions()[0].Description != "Kept" {
		t.Fatalf("expected transaction to survive reload, got %v", reloaded.Transactions())
	}
	if len(reloaded.Categories(core.Expense)) != len(s.Categories(core.Expense)) {
		t.Fatal("expected categories to survive reload")
	}
}

func TestStorageFailureDegrades(t *testing.T) {
	backend := &flakyBackend{Memory: storage.NewMemory()}
	s := New(Options{Backend: backend, RetryInterval: time.Hour, NewID: sequentialIDs()})
	s.Load(ctx)

	backend.setDown(true)
	tx, err := s.AddTransaction(ctx, expense("Offline", 9, 2))
	if err != nil {
		t.Fatalf("persistence failure must not surface as an error: %v", err)
	}
	if !s.Degraded() {
		t.Fatal("expected degraded store")
	}
	if !errors.Is(s.LastPersistError(), ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", s.LastPersistError())
	}

	// The breaker is open: further writes are not attempted.
	saves := backend.saves
	mustAdd(t, s, expense("Still offline", 1, 3))
	if backend.saves != saves {
		t.Fatalf("expected no save attempts while open, got %d more", backend.saves-saves)
	}
	if _, ok := s.Transaction(tx.ID); !ok {
		t.Fatal("in-memory state must keep working")
	}
	if len(s.Transactions()) != 2 {
		t.Fatal("expected both transactions in memory")
	}
}

func TestStorageRecovers(t *testing.T) {
	backend := &flakyBackend{Memory: storage.NewMemory()}
	s := New(Options{Backend: backend, RetryInterval: time.Millisecond, NewID: sequentialIDs()})
	s.Load(ctx)

	backend.setDown(true)
	mustAdd(t, s, expense("Queued", 9, 2))
	if !s.Degraded() {
		t.Fatal("expected degraded store")
	}

	backend.setDown(false)
	time.Sleep(5 * time.Millisecond)
	mustAdd(t, s, expense("Back", 1, 3))
	if s.Degraded() {
		t.Fatalf("expected recovery, last error %v", s.LastPersistError())
	}
	raw, err := backend.Memory.Load(ctx, storage.KeyTransactions)
	if err != nil {
		t.Fatalf("expected transactions persisted after recovery: %v", err)
	}
	var persisted []core.Transaction
	if err := json.Unmarshal(raw, &persisted); err != nil || len(persisted) != 2 {
		t.Fatalf("expected both transactions persisted, got %s", raw)
	}
}

func TestUnreadableCollectionNeverOverwritten(t *testing.T) {
	mem := storage.NewMemory()
	seed := newTestStore(t, mem)
	for day := 1; day <= 3; day++ {
		mustAdd(t, seed, expense(fmt.Sprintf("Stored %d", day), 10, day))
	}
	extra, err := seed.AddBank(ctx, "Extra")
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := mem.Load(ctx, storage.KeyTransactions)

	backend := &unreadableBackend{Memory: mem, key: storage.KeyTransactions}
	s := New(Options{Backend: backend, RetryInterval: 10 * time.Millisecond, NewID: sequentialIDs()})
	s.Load(ctx)

	if _, ok := s.BankName(extra.ID); !ok {
		t.Fatal("a failed read must not stop the other collections from loading")
	}
	if len(s.Transactions()) != 0 {
		t.Fatal("expected default transactions for the unreadable collection")
	}
	if !s.Degraded() {
		t.Fatal("expected degraded store")
	}

	time.Sleep(20 * time.Millisecond)
	mustAdd(t, s, expense("Session only", 1, 9))
	if _, err := s.AddBank(ctx, "Later"); err != nil {
		t.Fatal(err)
	}

	got, _ := mem.Load(ctx, storage.KeyTransactions)
	if string(got) != string(stored) {
		t.Fatalf("stored transactions were overwritten:\nwant %s\ngot  %s", stored, got)
	}
	var persisted []core.Transaction
	if err := json.Unmarshal(got, &persisted); err != nil || len(persisted) != 3 {
		t.Fatalf("expected 3 stored transactions, got %s", got)
	}
	rawBanks, _ := mem.Load(ctx, storage.KeyBanks)
	var banks []core.Bank
	if err := json.Unmarshal(rawBanks, &banks); err != nil || len(banks) != len(seed.Banks())+1 {
		t.Fatalf("readable collections should keep persisting, got %s", rawBanks)
	}
	if !s.Degraded() || !errors.Is(s.LastPersistError(), ErrStorageUnavailable) {
		t.Fatalf("store must stay degraded while a collection is unreadable, got %v", s.LastPersistError())
	}
}

func TestLoadWithUnavailableBackend(t *testing.T) {
	backend := &flakyBackend{Memory: storage.NewMemory(), down: true}
	s := New(Options{Backend: backend, RetryInterval: time.Hour})
	got := s.Load(ctx)
	if len(got.Banks) != len(core.DefaultBanks()) {
		t.Fatal("expected defaults when backend is unavailable")
	}
	if !s.Degraded() {
		t.Fatal("expected degraded store")
	}
}

func TestPublisherNotified(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(Options{Backend: storage.NewMemory(), Publisher: pub, NewID: sequentialIDs()})
	s.Load(ctx)

	tx := mustAdd(t, s, expense("Event", 5, 5))
	s.DeleteTransaction(ctx, tx.ID)
	s.DeleteTransaction(ctx, tx.ID)

	if len(pub.ops) != 2 || pub.ops[0] != "create" || pub.ops[1] != "delete" {
		t.Fatalf("unexpected published ops %v", pub.ops)
	}
}
