// Package ledger defines the store contracts the accountant and the
// report handlers depend on. Storage engines live behind these ports.
package ledger

import (
	"context"
	"errors"

	"finbook/internal/core"
)

// ErrNotFound is returned for lookups of records that do not exist where
// the caller asked for a specific one.
var ErrNotFound = errors.New("record not found")

// Filter narrows ListTransactions. Zero values mean no constraint.
type Filter struct {
	From        core.Date
	To          core.Date
	CategoryKey string // normalized key, not raw text
}

// Matches reports whether tx passes the filter. Category comparison uses
// the normalized key.
func (f Filter) Matches(tx core.Transaction) bool {
	if !f.From.IsZero() && tx.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To.Time) {
		return false
	}
	if f.CategoryKey != "" {
		cat, err := core.NormalizeCategory(tx.Category)
		if err != nil || cat.Key != f.CategoryKey {
			return false
		}
	}
	return true
}

type (
	// TransactionAppender appends one transaction and assigns its ID.
	TransactionAppender interface {
		AppendTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	}

	// TransactionLister reads the ledger in insertion order.
	TransactionLister interface {
		ListTransactions(ctx context.Context, f Filter) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	}

	// BudgetStore reads and writes budget records keyed by normalized
	// category key.
	BudgetStore interface {
		GetBudget(ctx context.Context, key string) (core.Budget, bool, error)
		PutBudget(ctx context.Context, b core.Budget) error
		// AddSpent applies a spend delta to the budget's cached total.
		// Returns false when no budget exists for the key.
		AddSpent(ctx context.Context, key string, delta core.Money) (bool, error)
		// DeleteBudget removes the budget; deleting an absent key is a no-op.
		DeleteBudget(ctx context.Context, key string) error
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	// Store is the full contract a backend implements.
	Store interface {
		TransactionAppender
		TransactionLister
		BudgetStore
	}
)
