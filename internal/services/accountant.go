// Package services orchestrates writes across the append-only ledger and
// the cached budget totals.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"finbook/internal/core"
	"finbook/internal/ledger"
)

// BudgetUpdateStatus describes what happened to the budget half of a
// RecordTransaction call.
type BudgetUpdateStatus string

const (
	// BudgetUpdated: the spend delta was applied.
	BudgetUpdated BudgetUpdateStatus = "updated"
	// BudgetSkipped: no budget exists for the category; the transaction
	// is still recorded.
	BudgetSkipped BudgetUpdateStatus = "skipped_no_budget"
	// BudgetPending: the spend update could not be confirmed; the budget
	// needs reconciliation against the ledger.
	BudgetPending BudgetUpdateStatus = "pending_reconcile"
	// BudgetUnchanged: income transactions never touch budgets.
	BudgetUnchanged BudgetUpdateStatus = "not_applicable"
)

// RecordResult is the outcome of RecordTransaction. The transaction is
// always committed when error is nil; Status reports the budget half.
type RecordResult struct {
	Transaction core.Transaction
	Status      BudgetUpdateStatus
}

// ErrBudgetNotFound is returned by Reconcile for a category without a
// budget record.
var ErrBudgetNotFound = errors.New("no budget for category")

// ReconcileNotifier publishes repair requests for budgets left pending
// after a partial write. A nil notifier is tolerated.
type ReconcileNotifier interface {
	PublishReconcileRequest(ctx context.Context, categoryKey, reason string) error
}

// Accountant keeps each budget's cached spent total consistent with the
// ledger. Spend deltas for one category key are serialized through a
// per-key mutex, so concurrent records against the same budget never
// lose an increment, while different categories proceed in parallel.
type Accountant struct {
	store    ledger.Store
	notifier ReconcileNotifier

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	reconciles singleflight.Group
}

func NewAccountant(store ledger.Store, notifier ReconcileNotifier) *Accountant {
	return &Accountant{
		store:    store,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (a *Accountant) lockFor(key string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[key]
	if !ok {
		l = &sync.Mutex{}
		a.locks[key] = l
	}
	return l
}

// RecordTransaction validates and appends the transaction, then applies
// the spend delta to the matching budget when the transaction is an
// expense. The append is authoritative: once it succeeds the call never
// returns an error for the budget half. A missing budget yields
// BudgetSkipped; an unconfirmed spend update yields BudgetPending and a
// reconcile request, never a blind retry (the delta may have landed).
func (a *Accountant) RecordTransaction(ctx context.Context, in core.TransactionInput) (RecordResult, error) {
	if err := in.Validate(); err != nil {
		return RecordResult{}, err
	}
	cat, err := core.NormalizeCategory(in.Category)
	if err != nil {
		return RecordResult{}, err
	}

	tx, err := a.store.AppendTransaction(ctx, in)
	if err != nil {
		return RecordResult{}, fmt.Errorf("append transaction: %w", err)
	}

	if in.Type != core.Expense {
		return RecordResult{Transaction: tx, Status: BudgetUnchanged}, nil
	}

	lock := a.lockFor(cat.Key)
	lock.Lock()
	defer lock.Unlock()

	found, err := a.store.AddSpent(ctx, cat.Key, in.Amount)
	if err != nil {
		slog.WarnContext(ctx, "Spend update unconfirmed, budget left for reconciliation",
			"transaction_id", tx.ID,
			"category_key", cat.Key,
			"error", err)
		a.requestReconcile(ctx, cat.Key, "spent_update_failed")
		return RecordResult{Transaction: tx, Status: BudgetPending}, nil
	}
	if !found {
		slog.DebugContext(ctx, "No budget for category, spend update skipped",
			"transaction_id", tx.ID,
			"category_key", cat.Key)
		return RecordResult{Transaction: tx, Status: BudgetSkipped}, nil
	}

	return RecordResult{Transaction: tx, Status: BudgetUpdated}, nil
}

// CreateBudget creates or replaces the budget for a category, seeding
// the cached spent total from the expense transactions already in the
// ledger.
func (a *Accountant) CreateBudget(ctx context.Context, category string, limit core.Money) (core.Budget, error) {
	cat, err := core.NormalizeCategory(category)
	if err != nil {
		return core.Budget{}, err
	}
	if limit.Cents <= 0 {
		return core.Budget{}, core.ErrInvalidLimit
	}

	lock := a.lockFor(cat.Key)
	lock.Lock()
	defer lock.Unlock()

	spent, err := a.ledgerSpent(ctx, cat.Key)
	if err != nil {
		return core.Budget{}, fmt.Errorf("seed spent from ledger: %w", err)
	}

	b := core.Budget{Category: cat, Limit: limit, Spent: spent}
	if err := a.store.PutBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("put budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"category_key", cat.Key,
		"limit_cents", limit.Cents,
		"seeded_spent_cents", spent.Cents)

	return b, nil
}

// DeleteBudget removes the budget record. Historical transactions are
// untouched and deleting an absent budget is a no-op.
func (a *Accountant) DeleteBudget(ctx context.Context, category string) error {
	cat, err := core.NormalizeCategory(category)
	if err != nil {
		return err
	}
	if err := a.store.DeleteBudget(ctx, cat.Key); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// Reconcile recomputes the spent total from the ledger and overwrites
// the cached value. Safe to call at any time; concurrent calls for the
// same category collapse into one recomputation.
func (a *Accountant) Reconcile(ctx context.Context, category string) (core.Budget, error) {
	cat, err := core.NormalizeCategory(category)
	if err != nil {
		return core.Budget{}, err
	}

	v, err, _ := a.reconciles.Do(cat.Key, func() (any, error) {
		return a.reconcileKey(ctx, cat.Key)
	})
	if err != nil {
		return core.Budget{}, err
	}
	return v.(core.Budget), nil
}

func (a *Accountant) reconcileKey(ctx context.Context, key string) (core.Budget, error) {
	lock := a.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	b, found, err := a.store.GetBudget(ctx, key)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	if !found {
		return core.Budget{}, fmt.Errorf("%w: %s", ErrBudgetNotFound, key)
	}

	sum, err := a.ledgerSpent(ctx, key)
	if err != nil {
		return core.Budget{}, fmt.Errorf("recompute spent: %w", err)
	}

	if sum.Cents != b.Spent.Cents {
		slog.WarnContext(ctx, "Budget drift detected, overwriting cached spent",
			"category_key", key,
			"cached_cents", b.Spent.Cents,
			"ledger_cents", sum.Cents)
		b.Spent = sum
		if err := a.store.PutBudget(ctx, b); err != nil {
			return core.Budget{}, fmt.Errorf("overwrite budget: %w", err)
		}
	}

	return b, nil
}

// ledgerSpent sums expense transactions for the key. The ledger is the
// source of truth; the cached total is only an optimization.
func (a *Accountant) ledgerSpent(ctx context.Context, key string) (core.Money, error) {
	txs, err := a.store.ListTransactions(ctx, ledger.Filter{CategoryKey: key})
	if err != nil {
		return core.Money{}, err
	}
	var sum core.Money
	for _, tx := range txs {
		if tx.Type == core.Expense {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}

func (a *Accountant) requestReconcile(ctx context.Context, key, reason string) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.PublishReconcileRequest(ctx, key, reason); err != nil {
		slog.ErrorContext(ctx, "Failed to publish reconcile request",
			"category_key", key,
			"reason", reason,
			"error", err)
	}
}
