package storage

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"expenses/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustInsert(t *testing.T, repo *SQLiteRepository, date, category string, cents int64, desc string) int64 {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	id, err := repo.InsertExpense(context.Background(), core.Expense{
		Date:        d,
		Category:    category,
		Amount:      core.Money{Cents: cents},
		Description: desc,
	})
	if err != nil {
		t.Fatalf("insert expense: %v", err)
	}
	return id
}

func TestInsertAndSearchRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := mustInsert(t, repo, "2025-08-10", "Food", 1234, "weekly groceries")

	got, err := repo.SearchExpenses(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(got))
	}
	e := got[0]
	if e.ID != id {
		t.Errorf("id: expected %d, got %d", id, e.ID)
	}
	if e.Date.String() != "2025-08-10" {
		t.Errorf("date: got %s", e.Date)
	}
	if e.Category != "Food" {
		t.Errorf("category: got %s", e.Category)
	}
	if e.Amount.Cents != 1234 {
		t.Errorf("amount: got %d", e.Amount.Cents)
	}
	if e.Description != "weekly groceries" {
		t.Errorf("description: got %q", e.Description)
	}
	if e.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
}

func TestSearchOrdering(t *testing.T) {
	repo := newTestRepo(t)

	mustInsert(t, repo, "2025-08-01", "Food", 100, "first")
	mustInsert(t, repo, "2025-08-15", "Food", 200, "third")
	mustInsert(t, repo, "2025-08-10", "Food", 300, "second")

	got, err := repo.SearchExpenses(context.Background(), core.Filter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var dates []string
	for _, e := range got {
		dates = append(dates, e.Date.String())
	}
	want := []string{"2025-08-15", "2025-08-10", "2025-08-01"}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("expected date order %v, got %v", want, dates)
		}
	}
}

func TestSearchFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustInsert(t, repo, "2025-07-01", "Food", 500, "lunch downtown")
	mustInsert(t, repo, "2025-07-15", "Travel", 10000, "train tickets")
	mustInsert(t, repo, "2025-08-01", "Food", 2500, "dinner out")

	date := func(s string) *core.Date {
		d, err := core.ParseDate(s)
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		return &d
	}
	money := func(c int64) *core.Money { return &core.Money{Cents: c} }

	cases := []struct {
		name   string
		filter core.Filter
		want   int
	}{
		{"no filter", core.Filter{}, 3},
		{"start date", core.Filter{StartDate: date("2025-07-10")}, 2},
		{"end date", core.Filter{EndDate: date("2025-07-31")}, 2},
		{"inclusive bounds", core.Filter{StartDate: date("2025-07-15"), EndDate: date("2025-07-15")}, 1},
		{"category", core.Filter{Category: "Food"}, 2},
		{"unknown category", core.Filter{Category: "Rent"}, 0},
		{"min amount", core.Filter{MinAmount: money(2500)}, 2},
		{"max amount", core.Filter{MaxAmount: money(500)}, 1},
		{"keyword", core.Filter{Keyword: "tickets"}, 1},
		{"conjunctive", core.Filter{Category: "Food", MinAmount: money(1000), Keyword: "dinner"}, 1},
		{"conjunctive no match", core.Filter{Category: "Travel", MaxAmount: money(100)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.SearchExpenses(ctx, tc.filter)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d rows, got %d", tc.want, len(got))
			}
		})
	}
}

func TestInsertExpenseUnknownCategory(t *testing.T) {
	repo := newTestRepo(t)
	d, _ := core.ParseDate("2025-08-10")
	_, err := repo.InsertExpense(context.Background(), core.Expense{
		Date:        d,
		Category:    "NoSuchCategory",
		Amount:      core.Money{Cents: 100},
		Description: "x",
	})
	if err == nil {
		t.Fatal("expected foreign key violation for unknown category")
	}
}

func TestSumExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustInsert(t, repo, "2025-08-01", "Food", 1000, "a")
	mustInsert(t, repo, "2025-08-10", "Food", 2000, "b")
	mustInsert(t, repo, "2025-07-20", "Food", 4000, "c")

	start, _ := core.ParseDate("2025-08-01")
	end, _ := core.ParseDate("2025-08-31")

	got, err := repo.SumExpenses(ctx, &start, &end)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if got.Cents != 3000 {
		t.Errorf("windowed sum: expected 3000, got %d", got.Cents)
	}

	all, err := repo.SumExpenses(ctx, nil, nil)
	if err != nil {
		t.Fatalf("sum all: %v", err)
	}
	if all.Cents != 7000 {
		t.Errorf("unbounded sum: expected 7000, got %d", all.Cents)
	}

	farStart, _ := core.ParseDate("2030-01-01")
	empty, err := repo.SumExpenses(ctx, &farStart, nil)
	if err != nil {
		t.Fatalf("sum empty window: %v", err)
	}
	if empty.Cents != 0 {
		t.Errorf("empty window sum: expected 0, got %d", empty.Cents)
	}
}

func TestCategoryTotals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustInsert(t, repo, "2025-08-01", "Travel", 5000, "a")
	mustInsert(t, repo, "2025-08-02", "Food", 1000, "b")
	mustInsert(t, repo, "2025-08-03", "Food", 1500, "c")
	// Ties with Travel; name breaks the tie.
	mustInsert(t, repo, "2025-08-04", "Rent", 5000, "d")

	totals, err := repo.CategoryTotals(ctx, nil, nil)
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	if len(totals) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(totals))
	}
	if totals[0].Category != "Rent" || totals[1].Category != "Travel" {
		t.Errorf("tie should order by name: got %s, %s", totals[0].Category, totals[1].Category)
	}
	if totals[2].Category != "Food" || totals[2].Total.Cents != 2500 {
		t.Errorf("expected Food=2500 last, got %s=%d", totals[2].Category, totals[2].Total.Cents)
	}

	var sum int64
	for _, ct := range totals {
		sum += ct.Total.Cents
	}
	if sum != 12500 {
		t.Errorf("breakdown should sum to total: got %d", sum)
	}
}

func TestMonthlyTotals(t *testing.T) {
	repo := newTestRepo(t)

	mustInsert(t, repo, "2025-08-05", "Food", 1000, "a")
	mustInsert(t, repo, "2025-06-01", "Food", 3000, "b")
	mustInsert(t, repo, "2025-08-20", "Travel", 500, "c")

	totals, err := repo.MonthlyTotals(context.Background())
	if err != nil {
		t.Fatalf("monthly totals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 months, got %d", len(totals))
	}
	if totals[0].Month != "2025-06" || totals[0].Total.Cents != 3000 {
		t.Errorf("first month: got %s=%d", totals[0].Month, totals[0].Total.Cents)
	}
	if totals[1].Month != "2025-08" || totals[1].Total.Cents != 1500 {
		t.Errorf("second month: got %s=%d", totals[1].Month, totals[1].Total.Cents)
	}
}

func TestCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	names, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != len(core.DefaultCategories) {
		t.Fatalf("expected %d seeded categories, got %d", len(core.DefaultCategories), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("categories not alphabetical: %v", names)
		}
	}

	if err := repo.InsertCategory(ctx, "Books"); err != nil {
		t.Fatalf("insert category: %v", err)
	}
	if err := repo.InsertCategory(ctx, "Books"); err == nil {
		t.Fatal("duplicate category should fail")
	}

	names, err = repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	count := 0
	for _, n := range names {
		if n == "Books" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected Books exactly once, found %d", count)
	}
}

func TestBudgetSingleton(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, ok, err := repo.GetBudget(ctx); err != nil || ok {
		t.Fatalf("expected no budget initially (ok=%v, err=%v)", ok, err)
	}

	if err := repo.UpsertBudget(ctx, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.UpsertBudget(ctx, core.Money{Cents: 75000}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	b, ok, err := repo.GetBudget(ctx)
	if err != nil || !ok {
		t.Fatalf("get budget: ok=%v err=%v", ok, err)
	}
	if b.Monthly.Cents != 75000 {
		t.Errorf("expected latest value 75000, got %d", b.Monthly.Cents)
	}
	if b.UpdatedAt.IsZero() {
		t.Error("updated_at should be set")
	}
}

func TestMalformedTimestampsLoggedNotFatal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	if _, err := repo.db.ExecContext(ctx,
		`INSERT INTO expenses (date, category, amount_cents, description, created_at)
		 VALUES ('2025-08-10', 'Food', 1000, 'corrupted row', 'not-a-timestamp')`); err != nil {
		t.Fatalf("insert raw expense: %v", err)
	}
	if _, err := repo.db.ExecContext(ctx,
		`INSERT INTO budget (id, monthly_budget_cents, updated_at)
		 VALUES (1, 50000, 'garbage')`); err != nil {
		t.Fatalf("insert raw budget: %v", err)
	}

	got, err := repo.SearchExpenses(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || !got[0].CreatedAt.IsZero() {
		t.Fatalf("expected row back with zero created_at, got %+v", got)
	}
	if !strings.Contains(buf.String(), "Malformed created_at") {
		t.Error("malformed created_at should be logged")
	}

	b, ok, err := repo.GetBudget(ctx)
	if err != nil || !ok {
		t.Fatalf("get budget: ok=%v err=%v", ok, err)
	}
	if b.Monthly.Cents != 50000 || !b.UpdatedAt.IsZero() {
		t.Fatalf("expected budget back with zero updated_at, got %+v", b)
	}
	if !strings.Contains(buf.String(), "Malformed updated_at") {
		t.Error("malformed updated_at should be logged")
	}
}
