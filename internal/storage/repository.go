package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finbook/internal/core"
	"finbook/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements ledger.Store on a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendTransaction implements ledger.TransactionAppender.
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	cat, err := core.NormalizeCategory(in.Category)
	if err != nil {
		return core.Transaction{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (tx_date, description, category, category_key, amount_cents, tx_type, recurring)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Date.String(), in.Description, in.Category, cat.Key,
		in.Amount.Cents, string(in.Type), boolToInt(in.Recurring))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction appended",
		"id", id,
		"description", in.Description,
		"amount_cents", in.Amount.Cents,
		"type", string(in.Type),
		"category_key", cat.Key)

	tx := core.Transaction{
		ID:          id,
		Date:        in.Date,
		Description: in.Description,
		Category:    in.Category,
		Amount:      in.Amount,
		Type:        in.Type,
		Recurring:   in.Recurring,
	}
	return tx, nil
}

// ListTransactions implements ledger.TransactionLister. Order is insertion
// order (rowid), not date order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f ledger.Filter) ([]core.Transaction, error) {
	query := `SELECT id, tx_date, description, category, amount_cents, tx_type, recurring
	          FROM transactions WHERE 1=1`
	var args []any
	if !f.From.IsZero() {
		query += " AND tx_date >= ?"
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += " AND tx_date <= ?"
		args = append(args, f.To.String())
	}
	if f.CategoryKey != "" {
		query += " AND category_key = ?"
		args = append(args, f.CategoryKey)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// GetTransaction fetches a single transaction by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, tx_date, description, category, amount_cents, tx_type, recurring
		 FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, key string) (core.Budget, bool, error) {
	var (
		display string
		limit   int64
		spent   int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT category_display, limit_cents, spent_cents FROM budgets WHERE category_key = ?`,
		key).Scan(&display, &limit, &spent)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("get budget: %w", err)
	}
	b := core.Budget{
		Category: core.Category{Key: key, Display: display},
		Limit:    core.Money{Cents: limit},
		Spent:    core.Money{Cents: spent},
	}
	return b, true, nil
}

func (r *SQLiteRepository) PutBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (category_key, category_display, limit_cents, spent_cents, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(category_key) DO UPDATE SET
		   category_display = excluded.category_display,
		   limit_cents = excluded.limit_cents,
		   spent_cents = excluded.spent_cents,
		   updated_at = CURRENT_TIMESTAMP`,
		b.Category.Key, b.Category.Display, b.Limit.Cents, b.Spent.Cents)
	if err != nil {
		return fmt.Errorf("put budget: %w", err)
	}
	return nil
}

// AddSpent applies the delta in a single statement, so concurrent deltas
// against the same row never read-modify-write stale values.
func (r *SQLiteRepository) AddSpent(ctx context.Context, key string, delta core.Money) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET spent_cents = spent_cents + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE category_key = ?`, delta.Cents, key)
	if err != nil {
		// The update may or may not have landed; callers must reconcile
		// against the ledger rather than retry.
		return false, core.Transient("add spent", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.Transient("add spent rows affected", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE category_key = ?`, key); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_key, category_display, limit_cents, spent_cents FROM budgets ORDER BY category_key`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			key     string
			display string
			limit   int64
			spent   int64
		)
		if err := rows.Scan(&key, &display, &limit, &spent); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, core.Budget{
			Category: core.Category{Key: key, Display: display},
			Limit:    core.Money{Cents: limit},
			Spent:    core.Money{Cents: spent},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		dateStr   string
		typeStr   string
		recurring int64
	)
	err := row.Scan(&tx.ID, &dateStr, &tx.Description, &tx.Category, &tx.Amount.Cents, &typeStr, &recurring)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	tx.Date = date
	tx.Type = core.TransactionType(typeStr)
	tx.Recurring = recurring != 0
	return tx, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
