package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finbook/internal/core"
	"finbook/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finbook.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAppendAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx, err := repo.AppendTransaction(ctx, core.TransactionInput{
		Date:        core.NewDate(2025, 2, 10),
		Description: "groceries",
		Category:    "Food",
		Amount:      core.Money{Cents: 4250},
		Type:        core.Expense,
		Recurring:   true,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if tx.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := repo.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "groceries" || got.Amount.Cents != 4250 || !got.Recurring {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Date.String() != "2025-02-10" {
		t.Fatalf("date mismatch: %s", got.Date)
	}

	if _, err := repo.GetTransaction(ctx, tx.ID+100); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFilterByCategoryKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, cat := range []string{"Food", "food", " FOOD ", "rent"} {
		_, err := repo.AppendTransaction(ctx, core.TransactionInput{
			Date:        core.NewDate(2025, 3, 1),
			Description: "x",
			Category:    cat,
			Amount:      core.Money{Cents: 100},
			Type:        core.Expense,
		})
		if err != nil {
			t.Fatalf("append %q: %v", cat, err)
		}
	}

	txs, err := repo.ListTransactions(ctx, ledger.Filter{CategoryKey: "food"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Case and whitespace variants all map to the same key.
	if len(txs) != 3 {
		t.Fatalf("expected 3 food transactions, got %d", len(txs))
	}
}

func TestListInsertionOrderAndDateFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Insert out of date order; listing must stay in insertion order.
	days := []int{20, 5, 12}
	for i, d := range days {
		_, err := repo.AppendTransaction(ctx, core.TransactionInput{
			Date:        core.NewDate(2025, 4, d),
			Description: "tx",
			Category:    "misc",
			Amount:      core.Money{Cents: int64(100 + i)},
			Type:        core.Expense,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.ListTransactions(ctx, ledger.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Date.Day() != 20 || all[1].Date.Day() != 5 {
		t.Fatalf("expected insertion order, got %+v", all)
	}

	ranged, err := repo.ListTransactions(ctx, ledger.Filter{
		From: core.NewDate(2025, 4, 6),
		To:   core.NewDate(2025, 4, 15),
	})
	if err != nil {
		t.Fatalf("list ranged: %v", err)
	}
	if len(ranged) != 1 || ranged[0].Date.Day() != 12 {
		t.Fatalf("date filter: unexpected %+v", ranged)
	}
}

func TestBudgetLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat, _ := core.NormalizeCategory("Food")

	if err := repo.PutBudget(ctx, core.Budget{Category: cat, Limit: core.Money{Cents: 30000}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	found, err := repo.AddSpent(ctx, "food", core.Money{Cents: 1500})
	if err != nil || !found {
		t.Fatalf("add spent: found=%v err=%v", found, err)
	}
	if found, _ := repo.AddSpent(ctx, "absent", core.Money{Cents: 1}); found {
		t.Fatal("absent budget must not report found")
	}

	b, ok, err := repo.GetBudget(ctx, "food")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if b.Spent.Cents != 1500 || b.Limit.Cents != 30000 || b.Category.Display != "Food" {
		t.Fatalf("unexpected budget %+v", b)
	}

	// Overwrite via PutBudget (reconcile path).
	b.Spent = core.Money{Cents: 900}
	if err := repo.PutBudget(ctx, b); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b2, _, _ := repo.GetBudget(ctx, "food")
	if b2.Spent.Cents != 900 {
		t.Fatalf("expected overwritten spent 900, got %d", b2.Spent.Cents)
	}

	if err := repo.DeleteBudget(ctx, "food"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteBudget(ctx, "food"); err != nil {
		t.Fatalf("idempotent delete: %v", err)
	}
	if _, ok, _ := repo.GetBudget(ctx, "food"); ok {
		t.Fatal("budget should be gone")
	}
}
