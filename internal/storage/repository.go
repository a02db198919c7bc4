// Package storage persists the ledger in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expenses/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is how timestamps (created_at, updated_at) are stored.
const timeLayout = time.RFC3339

// SQLiteRepository is the single writer for the expense database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at
// dbPath, runs migrations, and enables foreign key enforcement so an
// expense cannot reference an unknown category.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
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

// InsertExpense stores a new expense and returns its assigned id.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (date, category, amount_cents, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Date.String(), e.Category, e.Amount.Cents, e.Description,
		createdAt.Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense id: %w", err)
	}
	return id, nil
}

// SearchExpenses returns expenses matching every set field of the
// filter, newest date first. Same-date rows come back newest insert
// first so the order is deterministic.
func (r *SQLiteRepository) SearchExpenses(ctx context.Context, f core.Filter) ([]core.Expense, error) {
	var (
		conds  []string
		params []any
	)
	if f.StartDate != nil {
		conds = append(conds, "date >= ?")
		params = append(params, f.StartDate.String())
	}
	if f.EndDate != nil {
		conds = append(conds, "date <= ?")
		params = append(params, f.EndDate.String())
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		params = append(params, f.Category)
	}
	if f.MinAmount != nil {
		conds = append(conds, "amount_cents >= ?")
		params = append(params, f.MinAmount.Cents)
	}
	if f.MaxAmount != nil {
		conds = append(conds, "amount_cents <= ?")
		params = append(params, f.MaxAmount.Cents)
	}
	if f.Keyword != "" {
		conds = append(conds, "description LIKE ?")
		params = append(params, "%"+f.Keyword+"%")
	}

	query := `SELECT id, date, category, amount_cents, description, created_at FROM expenses`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("search expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search expenses: %w", err)
	}
	return expenses, nil
}

// SumExpenses totals all expenses with dates inside the inclusive
// [start, end] range. Nil bounds leave that side unconstrained.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, start, end *core.Date) (core.Money, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses`
	conds, params := dateRange(start, end)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var cents int64
	if err := r.db.QueryRowContext(ctx, query, params...).Scan(&cents); err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// CategoryTotals aggregates spend per category inside the inclusive
// [start, end] range, largest first; equal totals order by name so the
// ranking is stable across backends.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, start, end *core.Date) ([]core.CategoryTotal, error) {
	query := `SELECT category, SUM(amount_cents) AS total FROM expenses`
	conds, params := dateRange(start, end)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " GROUP BY category ORDER BY total DESC, category ASC"

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var totals []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	return totals, nil
}

// MonthlyTotals aggregates spend per calendar month over the whole
// ledger, in chronological order.
func (r *SQLiteRepository) MonthlyTotals(ctx context.Context) ([]core.MonthTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', date) AS month, SUM(amount_cents) AS total
		 FROM expenses
		 GROUP BY month
		 ORDER BY month ASC`)
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	var totals []core.MonthTotal
	for rows.Next() {
		var mt core.MonthTotal
		if err := rows.Scan(&mt.Month, &mt.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	return totals, nil
}

// ListCategories returns all category names in alphabetical order.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return names, nil
}

// InsertCategory adds a category. A duplicate name surfaces the
// store's uniqueness violation; there is no in-memory pre-check.
func (r *SQLiteRepository) InsertCategory(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("insert category %q: %w", name, err)
	}
	return nil
}

// UpsertBudget writes the monthly budget singleton (row id 1). The
// single-statement upsert avoids the read-then-write race of doing
// this in two steps.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, amount core.Money) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget (id, monthly_budget_cents, updated_at)
		 VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     monthly_budget_cents = excluded.monthly_budget_cents,
		     updated_at = excluded.updated_at`,
		amount.Cents, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

// GetBudget returns the monthly budget, with ok=false when none has
// ever been set.
func (r *SQLiteRepository) GetBudget(ctx context.Context) (core.Budget, bool, error) {
	var (
		b         core.Budget
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT monthly_budget_cents, updated_at FROM budget WHERE id = 1`).
		Scan(&b.Monthly.Cents, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("get budget: %w", err)
	}
	if t, err := time.Parse(timeLayout, updatedAt); err == nil {
		b.UpdatedAt = t
	} else {
		slog.Warn("Malformed updated_at on stored budget", "updated_at", updatedAt, "error", err)
	}
	return b, true, nil
}

func dateRange(start, end *core.Date) (conds []string, params []any) {
	if start != nil {
		conds = append(conds, "date >= ?")
		params = append(params, start.String())
	}
	if end != nil {
		conds = append(conds, "date <= ?")
		params = append(params, end.String())
	}
	return conds, params
}

func scanExpense(rows *sql.Rows) (core.Expense, error) {
	var (
		e         core.Expense
		date      string
		createdAt string
	)
	if err := rows.Scan(&e.ID, &date, &e.Category, &e.Amount.Cents, &e.Description, &createdAt); err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	e.Date = d
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		e.CreatedAt = t
	} else {
		slog.Warn("Malformed created_at on stored expense", "id", e.ID, "created_at", createdAt, "error", err)
	}
	return e, nil
}
