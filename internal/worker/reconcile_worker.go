// Package worker repairs budget drift in the background: it serves
// reconcile requests queued by the API process and periodically sweeps
// every budget against the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finbook/internal/amqp"
	"finbook/internal/ledger"
	"finbook/internal/services"
)

// Config holds reconcile worker configuration.
type Config struct {
	// SweepInterval is how often every budget is reconciled (default: 5m)
	SweepInterval time.Duration
}

func DefaultConfig() Config {
	return Config{SweepInterval: 5 * time.Minute}
}

// ReconcileWorker drives services.Accountant.Reconcile from queue
// messages and a periodic sweep.
type ReconcileWorker struct {
	accountant *services.Accountant
	budgets    ledger.BudgetStore
	config     Config

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReconcileWorker(accountant *services.Accountant, budgets ledger.BudgetStore, config Config) *ReconcileWorker {
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultConfig().SweepInterval
	}
	return &ReconcileWorker{
		accountant: accountant,
		budgets:    budgets,
		config:     config,
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (w *ReconcileWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("reconcile worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Reconcile worker started",
		"sweep_interval", w.config.SweepInterval)

	return nil
}

// Stop gracefully stops the worker and waits for completion.
func (w *ReconcileWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Reconcile worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Reconcile worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// IsRunning returns whether the worker loop is active.
func (w *ReconcileWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ReconcileWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	// Sweep immediately on startup to heal anything left from a crash.
	w.SweepAll(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SweepAll(ctx)
		}
	}
}

// HandleReconcileMessage serves one queued repair request.
func (w *ReconcileWorker) HandleReconcileMessage(ctx context.Context) func(*amqp.ReconcileMessage) error {
	return func(msg *amqp.ReconcileMessage) error {
		_, err := w.accountant.Reconcile(ctx, msg.CategoryKey)
		if errors.Is(err, services.ErrBudgetNotFound) {
			// Budget deleted since the request was queued; nothing to repair.
			slog.InfoContext(ctx, "Reconcile request for absent budget, dropping",
				"category_key", msg.CategoryKey)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reconcile %s: %w", msg.CategoryKey, err)
		}
		return nil
	}
}

// SweepAll reconciles every budget against the ledger. Failures on one
// budget never stop the sweep.
func (w *ReconcileWorker) SweepAll(ctx context.Context) {
	budgets, err := w.budgets.ListBudgets(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list budgets for sweep", "error", err)
		return
	}

	repaired := 0
	for _, b := range budgets {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		before := b.Spent.Cents
		after, err := w.accountant.Reconcile(ctx, b.Category.Key)
		if err != nil {
			slog.ErrorContext(ctx, "Sweep reconcile failed",
				"category_key", b.Category.Key, "error", err)
			continue
		}
		if after.Spent.Cents != before {
			repaired++
		}
	}

	if repaired > 0 {
		slog.WarnContext(ctx, "Sweep repaired drifted budgets",
			"budgets", len(budgets), "repaired", repaired)
	} else {
		slog.DebugContext(ctx, "Sweep completed, no drift", "budgets", len(budgets))
	}
}
