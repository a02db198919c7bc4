package shell

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/report"
	"expenses/internal/services"
	"expenses/internal/storage"
)

func newTestShell(t *testing.T, input string) (*Shell, *bytes.Buffer, *storage.SQLiteRepository) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := applog.New(applog.Config{
		Component: "test",
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})

	ledger := services.NewLedgerService(repo, nil)
	budget := services.NewBudgetService(repo)
	categories := services.NewCategoryService(repo)
	exporter := report.NewExporter(repo, filepath.Join(t.TempDir(), "reports"), logger)

	var out bytes.Buffer
	sh := New(ledger, budget, categories, exporter, nil, logger, strings.NewReader(input), &out)
	return sh, &out, repo
}

func run(t *testing.T, sh *Shell) {
	t.Helper()
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunExit(t *testing.T) {
	sh, out, _ := newTestShell(t, "7\n")
	run(t, sh)

	got := out.String()
	if !strings.Contains(got, "PERSONAL EXPENSE TRACKER") {
		t.Error("menu header missing")
	}
	if !strings.Contains(got, "Thank you for using Personal Expense Tracker!") {
		t.Error("exit message missing")
	}
}

func TestRunStopsOnEOF(t *testing.T) {
	sh, _, _ := newTestShell(t, "")
	run(t, sh)
}

func TestInvalidMenuChoice(t *testing.T) {
	sh, out, _ := newTestShell(t, "9\n7\n")
	run(t, sh)

	if !strings.Contains(out.String(), "Invalid choice. Please select 1-7.") {
		t.Error("invalid choice message missing")
	}
}

func TestNonNumericMenuChoiceReprompts(t *testing.T) {
	sh, out, _ := newTestShell(t, "abc\n7\n")
	run(t, sh)

	if !strings.Contains(out.String(), "Please enter a valid number.") {
		t.Error("reprompt message missing")
	}
}

func TestAddExpense(t *testing.T) {
	// Action 1, default date, category 2 (Food, alphabetical seed
	// order), amount, description, then exit.
	sh, out, repo := newTestShell(t, "1\n\n2\n12.50\nlunch\n7\n")
	run(t, sh)

	if !strings.Contains(out.String(), "Expense added successfully!") {
		t.Fatalf("success message missing:\n%s", out.String())
	}

	expenses, err := repo.SearchExpenses(context.Background(), core.Filter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expenses))
	}
	e := expenses[0]
	if e.Category != "Food" || e.Amount.Cents != 1250 || e.Description != "lunch" {
		t.Errorf("unexpected expense: %+v", e)
	}
}

func TestAddExpenseRepromptsOnBadAmount(t *testing.T) {
	sh, out, _ := newTestShell(t, "1\n\n2\nabc\n-3\n5\ncoffee\n7\n")
	run(t, sh)

	got := out.String()
	if strings.Count(got, "Please enter a valid positive amount.") != 2 {
		t.Errorf("expected two amount reprompts:\n%s", got)
	}
	if !strings.Contains(got, "Expense added successfully!") {
		t.Error("expense should be recorded after valid retry")
	}
}

func TestAddExpenseWithNewCategory(t *testing.T) {
	// Seven seeded categories, so 8 is "Add new category".
	sh, out, repo := newTestShell(t, "1\n\n8\nGifts\n20\nbirthday\n7\n")
	run(t, sh)

	if !strings.Contains(out.String(), "Category 'Gifts' added successfully!") {
		t.Fatalf("category add message missing:\n%s", out.String())
	}

	names, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	found := false
	for _, n := range names {
		if n == "Gifts" {
			found = true
		}
	}
	if !found {
		t.Errorf("Gifts not persisted: %v", names)
	}
}

func TestBudgetSetAndStatus(t *testing.T) {
	sh, out, _ := newTestShell(t, "4\n1\n500\n4\n2\n7\n")
	run(t, sh)

	got := out.String()
	if !strings.Contains(got, "Monthly budget set to 500.00") {
		t.Error("set confirmation missing")
	}
	if !strings.Contains(got, "Monthly Budget: 500.00") {
		t.Error("budget status missing")
	}
	if !strings.Contains(got, "You are within budget.") {
		t.Error("within-budget message missing")
	}
}

func TestBudgetStatusUnset(t *testing.T) {
	sh, out, _ := newTestShell(t, "4\n2\n7\n")
	run(t, sh)

	if !strings.Contains(out.String(), "No budget set. Please set a monthly budget first.") {
		t.Error("unset budget message missing")
	}
}

func TestBudgetWarningAfterExpense(t *testing.T) {
	// Budget 10.00, then a 9.00 expense today puts the month at 90%.
	sh, out, _ := newTestShell(t, "4\n1\n10\n1\n\n2\n9\ndinner\n7\n")
	run(t, sh)

	if !strings.Contains(out.String(), "Budget warning: you have spent 90.0% of your monthly budget!") {
		t.Errorf("budget warning missing:\n%s", out.String())
	}
}

func TestSummaryEmptyLedger(t *testing.T) {
	sh, out, _ := newTestShell(t, "2\n3\n7\n")
	run(t, sh)

	got := out.String()
	if !strings.Contains(got, "--- Monthly Summary ---") {
		t.Error("summary header missing")
	}
	if !strings.Contains(got, "Total Expenses: 0.00") {
		t.Error("zero total missing")
	}
	if !strings.Contains(got, "No expenses found for this period.") {
		t.Error("empty period message missing")
	}
}

func TestSummaryWithBreakdown(t *testing.T) {
	// Two expenses today, then a monthly summary.
	sh, out, _ := newTestShell(t,
		"1\n\n2\n30\ngroceries\n"+
			"1\n\n6\n10\nbus\n"+
			"2\n3\n7\n")
	run(t, sh)

	got := out.String()
	if !strings.Contains(got, "Total Expenses: 40.00") {
		t.Errorf("total missing:\n%s", got)
	}
	if !strings.Contains(got, "Food: 30.00 (75.0%)") {
		t.Error("Food breakdown missing")
	}
	if !strings.Contains(got, "Travel: 10.00 (25.0%)") {
		t.Error("Travel breakdown missing")
	}
	if !strings.Contains(got, "Highest spending category: Food") {
		t.Error("highest category missing")
	}
}

func TestSearchNoResults(t *testing.T) {
	sh, out, _ := newTestShell(t, "3\n\n\n\n\n\n\n7\n")
	run(t, sh)

	if !strings.Contains(out.String(), "No expenses found matching your criteria.") {
		t.Error("no-results message missing")
	}
}

func TestSearchByKeyword(t *testing.T) {
	sh, out, _ := newTestShell(t,
		"1\n\n2\n12\ngroceries\n"+
			"1\n\n2\n8\ncinema snacks\n"+
			"3\n\n\n\n\n\ncinema\n7\n")
	run(t, sh)

	got := out.String()
	if !strings.Contains(got, "Search Results (1 expenses found)") {
		t.Errorf("expected one result:\n%s", got)
	}
	if !strings.Contains(got, "cinema snacks") {
		t.Error("matching row missing")
	}
	if !strings.Contains(got, "Total Amount: 8.00") {
		t.Error("result total missing")
	}
}

func TestReportsChartWithoutData(t *testing.T) {
	sh, out, _ := newTestShell(t, "5\n3\n7\n")
	run(t, sh)

	if !strings.Contains(out.String(), "No data available for chart generation.") {
		t.Error("no-data message missing")
	}
}

func TestReportsCSV(t *testing.T) {
	sh, out, _ := newTestShell(t, "1\n\n2\n15\nlunch\n5\n1\n7\n")
	run(t, sh)

	if !strings.Contains(out.String(), "CSV report generated: ") {
		t.Errorf("csv path missing:\n%s", out.String())
	}
}

func TestSheetsHiddenWhenUnconfigured(t *testing.T) {
	sh, out, _ := newTestShell(t, "5\n6\n7\n")
	run(t, sh)

	got := out.String()
	if strings.Contains(got, "Push to Google Sheets") {
		t.Error("sheets option should be hidden without a client")
	}
	if !strings.Contains(got, "Invalid selection.") {
		t.Error("choosing the hidden option should be rejected")
	}
}

func TestManageCategoriesList(t *testing.T) {
	sh, out, _ := newTestShell(t, "6\n1\n7\n")
	run(t, sh)

	got := out.String()
	for _, name := range core.DefaultCategories {
		if !strings.Contains(got, name) {
			t.Errorf("seed category %s missing", name)
		}
	}
	if !strings.Contains(got, "Category management completed.") {
		t.Error("completion message missing")
	}
}

func TestManageCategoriesAddDuplicate(t *testing.T) {
	sh, out, _ := newTestShell(t, "6\n8\nFood\n7\n")
	run(t, sh)

	if !strings.Contains(out.String(), "Failed to add category. It might already exist.") {
		t.Error("duplicate category message missing")
	}
}
