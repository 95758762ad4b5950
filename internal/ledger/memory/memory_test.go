package memory

import (
	"context"
	"errors"
	"testing"

	"finbook/internal/core"
	"finbook/internal/ledger"
)

func input(day int, desc, cat string, cents int64, typ core.TransactionType) core.TransactionInput {
	return core.TransactionInput{
		Date:        core.NewDate(2025, 1, day),
		Description: desc,
		Category:    cat,
		Amount:      core.Money{Cents: cents},
		Type:        typ,
	}
}

func TestAppendAssignsIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.AppendTransaction(ctx, input(1, "coffee", "food", 300, core.Expense))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := s.AppendTransaction(ctx, input(2, "salary", "work", 500000, core.Income))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("ids must be unique, both %d", first.ID)
	}

	got, err := s.GetTransaction(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "coffee" {
		t.Fatalf("unexpected transaction %+v", got)
	}

	if _, err := s.GetTransaction(ctx, 999); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.AppendTransaction(context.Background(), core.TransactionInput{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	txs, _ := s.ListTransactions(context.Background(), ledger.Filter{})
	if len(txs) != 0 {
		t.Fatalf("nothing should be written, got %d", len(txs))
	}
}

func TestListFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.AppendTransaction(ctx, input(5, "a", "Food", 100, core.Expense))
	s.AppendTransaction(ctx, input(15, "b", "food", 200, core.Expense))
	s.AppendTransaction(ctx, input(25, "c", "rent", 300, core.Expense))

	byCat, err := s.ListTransactions(ctx, ledger.Filter{CategoryKey: "food"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byCat) != 2 {
		t.Fatalf("category filter: expected 2, got %d", len(byCat))
	}

	byDate, err := s.ListTransactions(ctx, ledger.Filter{
		From: core.NewDate(2025, 1, 10),
		To:   core.NewDate(2025, 1, 20),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byDate) != 1 || byDate[0].Description != "b" {
		t.Fatalf("date filter: unexpected result %+v", byDate)
	}
}

func TestBudgetRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	cat, _ := core.NormalizeCategory("Food")

	if err := s.PutBudget(ctx, core.Budget{Category: cat, Limit: core.Money{Cents: 30000}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	found, err := s.AddSpent(ctx, "food", core.Money{Cents: 1200})
	if err != nil || !found {
		t.Fatalf("add spent: found=%v err=%v", found, err)
	}
	if found, _ := s.AddSpent(ctx, "nope", core.Money{Cents: 1}); found {
		t.Fatal("add spent on absent budget must report not found")
	}

	b, ok, err := s.GetBudget(ctx, "food")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if b.Spent.Cents != 1200 {
		t.Fatalf("expected spent 1200, got %d", b.Spent.Cents)
	}

	if err := s.DeleteBudget(ctx, "food"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting again is a no-op.
	if err := s.DeleteBudget(ctx, "food"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	if _, ok, _ := s.GetBudget(ctx, "food"); ok {
		t.Fatal("budget should be gone")
	}
}
