package storage

import (
	"context"
	"path/filepath"
	"testing"

	"conto/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "conto.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testTx(id, date string, cents int64, desc string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID: id, Date: d, Amount: core.Money{Cents: cents},
		Description: desc, Category: core.DefaultCategory,
	}
}

func TestSQLiteTransactionsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := []core.Transaction{
		testTx("a1", "2024-01-15", -4217, "Groceries"),
		testTx("b2", "2024-01-16", 250000, "Salary"),
	}
	if err := repo.SaveTransactions(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Insertion order survives the round trip.
	if got[0].ID != "a1" || got[1].ID != "b2" {
		t.Fatalf("order = %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Amount.Cents != -4217 || got[0].Date.String() != "2024-01-15" {
		t.Fatalf("first = %+v", got[0])
	}
}

func TestSQLiteSyncStatusLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveTransactions(ctx, []core.Transaction{
		testTx("a1", "2024-01-15", -4217, "Groceries"),
		testTx("b2", "2024-01-16", 250000, "Salary"),
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	if err := repo.MarkSynced(ctx, "a1"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, "b2"); err != nil {
		t.Fatalf("mark sync error: %v", err)
	}

	pending, err = repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending after marks: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending = %d, want 0", len(pending))
	}
}

func TestSQLiteReplacePreservesSyncStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := testTx("a1", "2024-01-15", -4217, "Groceries")
	if err := repo.SaveTransactions(ctx, []core.Transaction{first}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.MarkSynced(ctx, "a1"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	// Re-save with one new transaction appended, as a merge does.
	second := testTx("b2", "2024-01-16", 250000, "Salary")
	if err := repo.SaveTransactions(ctx, []core.Transaction{first, second}); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "b2" {
		t.Fatalf("pending = %+v, want only b2", pending)
	}
}

func TestSQLiteGetTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveTransactions(ctx, []core.Transaction{
		testTx("a1", "2024-01-15", -4217, "Groceries"),
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetTransaction(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Description != "Groceries" {
		t.Fatalf("got = %+v", got)
	}

	missing, err := repo.GetTransaction(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing = %+v, want nil", missing)
	}
}

func TestSQLiteRulesAndUploads(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rules := []core.CategoryRule{
		{Match: "rewe", Category: "Groceries"},
		{Match: "bvg", Category: "Transport"},
	}
	if err := repo.SaveRules(ctx, rules); err != nil {
		t.Fatalf("save rules: %v", err)
	}
	gotRules, err := repo.LoadRules(ctx)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if len(gotRules) != 2 || gotRules[0] != rules[0] || gotRules[1] != rules[1] {
		t.Fatalf("rules = %+v", gotRules)
	}

	meta := core.UploadMeta{
		BatchID:          "batch-1",
		Filename:         "export.csv",
		TransactionCount: 7,
		Timestamp:        "2024-01-15T10:00:00Z",
	}
	if err := repo.SaveUploadMeta(ctx, meta); err != nil {
		t.Fatalf("save upload meta: %v", err)
	}
	got, err := repo.LoadUploadMeta(ctx)
	if err != nil {
		t.Fatalf("load upload meta: %v", err)
	}
	if got == nil || *got != meta {
		t.Fatalf("upload meta = %+v, want %+v", got, meta)
	}
}
