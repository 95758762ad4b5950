package worker

import (
	"context"
	"testing"
	"time"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/ledger/memory"
	"finbook/internal/services"
)

func driftedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	cat, _ := core.NormalizeCategory("food")
	if err := store.PutBudget(ctx, core.Budget{
		Category: cat,
		Limit:    core.Money{Cents: 30000},
		Spent:    core.Money{Cents: 77777}, // stale cache
	}); err != nil {
		t.Fatalf("put budget: %v", err)
	}
	_, err := store.AppendTransaction(ctx, core.TransactionInput{
		Date:        core.NewDate(2025, 1, 1),
		Description: "groceries",
		Category:    "food",
		Amount:      core.Money{Cents: 1200},
		Type:        core.Expense,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return store
}

func TestSweepAllRepairsDrift(t *testing.T) {
	store := driftedStore(t)
	acc := services.NewAccountant(store, nil)
	w := NewReconcileWorker(acc, store, DefaultConfig())

	w.SweepAll(context.Background())

	b, _, _ := store.GetBudget(context.Background(), "food")
	if b.Spent.Cents != 1200 {
		t.Fatalf("expected sweep to repair spent to 1200, got %d", b.Spent.Cents)
	}
}

func TestHandleReconcileMessage(t *testing.T) {
	store := driftedStore(t)
	acc := services.NewAccountant(store, nil)
	w := NewReconcileWorker(acc, store, DefaultConfig())
	ctx := context.Background()

	handler := w.HandleReconcileMessage(ctx)
	if err := handler(amqp.NewReconcileMessage("food", amqp.ReasonSpentUpdateFailed)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	b, _, _ := store.GetBudget(ctx, "food")
	if b.Spent.Cents != 1200 {
		t.Fatalf("expected repaired spent 1200, got %d", b.Spent.Cents)
	}

	// A request for a budget deleted meanwhile is dropped, not requeued.
	if err := handler(amqp.NewReconcileMessage("ghost", amqp.ReasonManual)); err != nil {
		t.Fatalf("absent budget must not error: %v", err)
	}
}

func TestStartStop(t *testing.T) {
	store := memory.New()
	acc := services.NewAccountant(store, nil)
	w := NewReconcileWorker(acc, store, Config{SweepInterval: 10 * time.Millisecond})
	ctx := context.Background()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Fatal("second start must fail")
	}
	if !w.IsRunning() {
		t.Fatal("expected running")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// Stopping again is a no-op.
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
