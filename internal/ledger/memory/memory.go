// Package memory provides an in-process ledger.Store used as the default
// backend and by tests.
package memory

import (
	"context"
	"sync"

	"finbook/internal/core"
	"finbook/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	nextID  int64
	txs     []core.Transaction
	budgets map[string]core.Budget
}

func New() *Store {
	return &Store{nextID: 1, budgets: make(map[string]core.Budget)}
}

// AppendTransaction stores the transaction and assigns a monotonic ID.
func (s *Store) AppendTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := core.Transaction{
		ID:          s.nextID,
		Date:        in.Date,
		Description: in.Description,
		Category:    in.Category,
		Amount:      in.Amount,
		Type:        in.Type,
		Recurring:   in.Recurring,
	}
	s.nextID++
	s.txs = append(s.txs, tx)
	return tx, nil
}

// ListTransactions returns matching transactions in insertion order.
func (s *Store) ListTransactions(_ context.Context, f ledger.Filter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, ledger.ErrNotFound
}

func (s *Store) GetBudget(_ context.Context, key string) (core.Budget, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[key]
	return b, ok, nil
}

func (s *Store) PutBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.Category.Key] = b
	return nil
}

func (s *Store) AddSpent(_ context.Context, key string, delta core.Money) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[key]
	if !ok {
		return false, nil
	}
	b.Spent = b.Spent.Add(delta)
	s.budgets[key] = b
	return true, nil
}

func (s *Store) DeleteBudget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.budgets, key)
	return nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, b)
	}
	return out, nil
}
