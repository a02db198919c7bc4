// Package shell implements the interactive menu over the ledger,
// budget, category, and report services.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/report"
	"expenses/internal/services"
	"expenses/internal/sheets"
)

const divider = "=================================================="

// budgetWarnThreshold is the spend percentage above which recording an
// expense prints a budget warning.
const budgetWarnThreshold = 80.0

// Shell reads menu choices and field values from in, dispatches to the
// services, and prints results to out. It holds no state between
// actions beyond its dependencies.
type Shell struct {
	ledger     *services.LedgerService
	budget     *services.BudgetService
	categories *services.CategoryService
	exporter   *report.Exporter
	sheets     sheets.Exporter // nil when not configured
	logger     *applog.Logger

	in  *bufio.Scanner
	out io.Writer
	now func() time.Time
}

func New(
	ledger *services.LedgerService,
	budget *services.BudgetService,
	categories *services.CategoryService,
	exporter *report.Exporter,
	sheetsExporter sheets.Exporter,
	logger *applog.Logger,
	in io.Reader,
	out io.Writer,
) *Shell {
	return &Shell{
		ledger:     ledger,
		budget:     budget,
		categories: categories,
		exporter:   exporter,
		sheets:     sheetsExporter,
		logger:     logger.WithComponent("shell"),
		in:         bufio.NewScanner(in),
		out:        out,
		now:        time.Now,
	}
}

// Run loops on the main menu until the user exits or input ends.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Welcome to Personal Expense Tracker!")

	for {
		s.printMenu()
		choice, ok := s.promptInt("Enter your choice (1-7): ")
		if !ok {
			return nil
		}
		if quit := s.dispatch(ctx, choice); quit {
			fmt.Fprintln(s.out, "Thank you for using Personal Expense Tracker!")
			return nil
		}
	}
}

// dispatch runs one action. Panics are contained here so a fault in a
// single action never takes the loop down.
func (s *Shell) dispatch(ctx context.Context, choice int) (quit bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Action panicked", "choice", choice, "panic", r)
			fmt.Fprintf(s.out, "An error occurred: %v\n", r)
		}
	}()

	switch choice {
	case 1:
		s.addExpense(ctx)
	case 2:
		s.viewSummary(ctx)
	case 3:
		s.searchExpenses(ctx)
	case 4:
		s.manageBudget(ctx)
	case 5:
		s.generateReports(ctx)
	case 6:
		s.manageCategories(ctx)
	case 7:
		return true
	default:
		fmt.Fprintln(s.out, "Invalid choice. Please select 1-7.")
	}
	return false
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, divider)
	fmt.Fprintln(s.out, "       PERSONAL EXPENSE TRACKER")
	fmt.Fprintln(s.out, divider)
	fmt.Fprintln(s.out, "1. Add Expense")
	fmt.Fprintln(s.out, "2. View Summary")
	fmt.Fprintln(s.out, "3. Search Expenses")
	fmt.Fprintln(s.out, "4. Set/View Budget")
	fmt.Fprintln(s.out, "5. Generate Report")
	fmt.Fprintln(s.out, "6. Manage Categories")
	fmt.Fprintln(s.out, "7. Exit")
	fmt.Fprintln(s.out, divider)
}

func (s *Shell) addExpense(ctx context.Context) {
	fmt.Fprintln(s.out, "\n--- Add New Expense ---")

	today := core.DateOf(s.now())
	date, ok := s.promptDate(fmt.Sprintf("Date (YYYY-MM-DD) [%s]: ", today), &today)
	if !ok {
		return
	}

	category, ok := s.pickCategory(ctx)
	if !ok {
		return
	}

	amount, ok := s.promptAmount("Amount: ")
	if !ok {
		return
	}

	description, ok := s.promptRequired("Description: ")
	if !ok {
		return
	}

	_, err := s.ledger.Record(ctx, core.Expense{
		Date:        date,
		Category:    category,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to record expense", "error", err)
		fmt.Fprintln(s.out, "Failed to add expense.")
		return
	}
	fmt.Fprintln(s.out, "Expense added successfully!")

	status, err := s.budget.Status(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to check budget status", "error", err)
		return
	}
	if status.Budget != nil && status.Percentage > budgetWarnThreshold {
		fmt.Fprintf(s.out, "Budget warning: you have spent %.1f%% of your monthly budget!\n", status.Percentage)
	}
}

func (s *Shell) viewSummary(ctx context.Context) {
	fmt.Fprintln(s.out, "\n--- Expense Summary ---")
	fmt.Fprintln(s.out, "1. Daily Summary")
	fmt.Fprintln(s.out, "2. Weekly Summary")
	fmt.Fprintln(s.out, "3. Monthly Summary")
	fmt.Fprintln(s.out, "4. Yearly Summary")

	choice, ok := s.promptInt("Select summary type: ")
	if !ok {
		return
	}
	periods := map[int]core.Period{1: core.Daily, 2: core.Weekly, 3: core.Monthly, 4: core.Yearly}
	period, found := periods[choice]
	if !found {
		fmt.Fprintln(s.out, "Invalid selection.")
		return
	}

	summary, err := s.ledger.Summarize(ctx, period)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to summarize", "period", period, "error", err)
		fmt.Fprintln(s.out, "Failed to compute summary.")
		return
	}

	fmt.Fprintf(s.out, "\n--- %s Summary ---\n", titleCase(string(period)))
	if summary.Start != nil && summary.End != nil {
		fmt.Fprintf(s.out, "Period: %s to %s\n", summary.Start, summary.End)
	}
	fmt.Fprintf(s.out, "Total Expenses: %s\n", summary.Total)

	if len(summary.ByCategory) == 0 {
		fmt.Fprintln(s.out, "No expenses found for this period.")
		return
	}
	fmt.Fprintln(s.out, "\nCategory Breakdown:")
	for _, ct := range summary.ByCategory {
		pct := 0.0
		if summary.Total.Cents > 0 {
			pct = float64(ct.Total.Cents) / float64(summary.Total.Cents) * 100
		}
		fmt.Fprintf(s.out, "  %s: %s (%.1f%%)\n", ct.Category, ct.Total, pct)
	}
	fmt.Fprintf(s.out, "\nHighest spending category: %s\n", summary.ByCategory[0].Category)
}

func (s *Shell) searchExpenses(ctx context.Context) {
	fmt.Fprintln(s.out, "\n--- Search Expenses ---")
	fmt.Fprintln(s.out, "Leave fields empty to skip that filter:")

	var filter core.Filter
	var ok bool
	if filter.StartDate, ok = s.promptOptionalDate("Start date (YYYY-MM-DD): "); !ok {
		return
	}
	if filter.EndDate, ok = s.promptOptionalDate("End date (YYYY-MM-DD): "); !ok {
		return
	}

	if names, err := s.categories.List(ctx); err == nil && len(names) > 0 {
		fmt.Fprintf(s.out, "Available categories: %s\n", strings.Join(names, ", "))
	}
	if filter.Category, ok = s.promptLine("Category: "); !ok {
		return
	}
	if filter.MinAmount, ok = s.promptOptionalAmount("Minimum amount: "); !ok {
		return
	}
	if filter.MaxAmount, ok = s.promptOptionalAmount("Maximum amount: "); !ok {
		return
	}
	if filter.Keyword, ok = s.promptLine("Keyword in description: "); !ok {
		return
	}

	expenses, err := s.ledger.Search(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Search failed", "error", err)
		fmt.Fprintln(s.out, "Search failed.")
		return
	}
	if len(expenses) == 0 {
		fmt.Fprintln(s.out, "No expenses found matching your criteria.")
		return
	}

	fmt.Fprintf(s.out, "\n--- Search Results (%d expenses found) ---\n", len(expenses))
	var total int64
	for _, e := range expenses {
		fmt.Fprintf(s.out, "ID: %d | Date: %s | Category: %s | Amount: %s | Description: %s\n",
			e.ID, e.Date, e.Category, e.Amount, e.Description)
		total += e.Amount.Cents
	}
	fmt.Fprintf(s.out, "\nTotal Amount: %s\n", core.Money{Cents: total})
}

func (s *Shell) manageBudget(ctx context.Context) {
	fmt.Fprintln(s.out, "\n--- Budget Management ---")
	fmt.Fprintln(s.out, "1. Set Monthly Budget")
	fmt.Fprintln(s.out, "2. View Budget Status")

	choice, ok := s.promptInt("Select option: ")
	if !ok {
		return
	}

	switch choice {
	case 1:
		amount, ok := s.promptAmount("Enter monthly budget amount: ")
		if !ok {
			return
		}
		if err := s.budget.SetMonthly(ctx, amount); err != nil {
			s.logger.ErrorContext(ctx, "Failed to set budget", "error", err)
			fmt.Fprintln(s.out, "Failed to set budget.")
			return
		}
		fmt.Fprintf(s.out, "Monthly budget set to %s\n", amount)
	case 2:
		status, err := s.budget.Status(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to get budget status", "error", err)
			fmt.Fprintln(s.out, "Failed to get budget status.")
			return
		}
		if status.Budget == nil {
			fmt.Fprintln(s.out, "No budget set. Please set a monthly budget first.")
			return
		}
		fmt.Fprintln(s.out, "\n--- Budget Status ---")
		fmt.Fprintf(s.out, "Monthly Budget: %s\n", status.Budget)
		fmt.Fprintf(s.out, "Amount Spent: %s\n", status.Spent)
		fmt.Fprintf(s.out, "Remaining: %s\n", status.Remaining)
		fmt.Fprintf(s.out, "Percentage Used: %.1f%%\n", status.Percentage)
		switch {
		case status.Percentage > 100:
			fmt.Fprintln(s.out, "You have exceeded your budget!")
		case status.Percentage > budgetWarnThreshold:
			fmt.Fprintln(s.out, "Warning: you are approaching your budget limit!")
		default:
			fmt.Fprintln(s.out, "You are within budget.")
		}
	default:
		fmt.Fprintln(s.out, "Invalid selection.")
	}
}

func (s *Shell) generateReports(ctx context.Context) {
	fmt.Fprintln(s.out, "\n--- Generate Reports ---")
	fmt.Fprintln(s.out, "1. Export to CSV")
	fmt.Fprintln(s.out, "2. Export to Excel")
	fmt.Fprintln(s.out, "3. Generate Category Pie Chart")
	fmt.Fprintln(s.out, "4. Generate Monthly Bar Chart")
	fmt.Fprintln(s.out, "5. Generate All Reports")
	if s.sheets != nil {
		fmt.Fprintln(s.out, "6. Push to Google Sheets")
	}

	choice, ok := s.promptInt("Select report type: ")
	if !ok {
		return
	}

	switch choice {
	case 1:
		s.reportFile(ctx, "CSV report", func() (string, error) {
			return s.exporter.ExportCSV(ctx, "")
		})
	case 2:
		s.reportFile(ctx, "Excel report", func() (string, error) {
			return s.exporter.ExportXLSX(ctx, "")
		})
	case 3:
		s.reportFile(ctx, "Pie chart", func() (string, error) {
			return s.exporter.CategoryChart(ctx, "")
		})
	case 4:
		s.reportFile(ctx, "Bar chart", func() (string, error) {
			return s.exporter.MonthlyChart(ctx, "")
		})
	case 5:
		artifacts, err := s.exporter.ExportAll(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to generate reports", "error", err)
			fmt.Fprintln(s.out, "Failed to generate reports.")
			return
		}
		fmt.Fprintln(s.out, "All reports generated:")
		fmt.Fprintf(s.out, "  - CSV: %s\n", artifacts.CSV)
		fmt.Fprintf(s.out, "  - Excel: %s\n", artifacts.XLSX)
		if artifacts.CategoryChart != "" {
			fmt.Fprintf(s.out, "  - Pie Chart: %s\n", artifacts.CategoryChart)
		}
		if artifacts.MonthlyChart != "" {
			fmt.Fprintf(s.out, "  - Bar Chart: %s\n", artifacts.MonthlyChart)
		}
	case 6:
		if s.sheets == nil {
			fmt.Fprintln(s.out, "Invalid selection.")
			return
		}
		s.pushToSheets(ctx)
	default:
		fmt.Fprintln(s.out, "Invalid selection.")
	}
}

func (s *Shell) reportFile(ctx context.Context, label string, generate func() (string, error)) {
	path, err := generate()
	if errors.Is(err, report.ErrNoData) {
		fmt.Fprintln(s.out, "No data available for chart generation.")
		return
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Report generation failed", "report", label, "error", err)
		fmt.Fprintf(s.out, "Failed to generate %s.\n", label)
		return
	}
	fmt.Fprintf(s.out, "%s generated: %s\n", label, path)
}

func (s *Shell) pushToSheets(ctx context.Context) {
	expenses, err := s.ledger.Search(ctx, core.Filter{})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load ledger for sheets push", "error", err)
		fmt.Fprintln(s.out, "Failed to push to Google Sheets.")
		return
	}
	if err := s.sheets.Push(ctx, expenses); err != nil {
		s.logger.ErrorContext(ctx, "Sheets push failed", "error", err)
		fmt.Fprintln(s.out, "Failed to push to Google Sheets.")
		return
	}
	fmt.Fprintf(s.out, "Pushed %d expenses to Google Sheets.\n", len(expenses))
}

func (s *Shell) manageCategories(ctx context.Context) {
	fmt.Fprintln(s.out, "\n--- Manage Categories ---")

	names, err := s.categories.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list categories", "error", err)
		fmt.Fprintln(s.out, "Failed to list categories.")
		return
	}

	fmt.Fprintln(s.out, "Current categories:")
	for i, name := range names {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, name)
	}
	fmt.Fprintf(s.out, "\n%d. Add new category\n", len(names)+1)

	choice, ok := s.promptInt("Select option: ")
	if !ok {
		return
	}
	if choice != len(names)+1 {
		fmt.Fprintln(s.out, "Category management completed.")
		return
	}

	name, ok := s.promptRequired("Enter new category name: ")
	if !ok {
		return
	}
	if err := s.categories.Add(ctx, name); err != nil {
		s.logger.WarnContext(ctx, "Failed to add category", "name", name, "error", err)
		fmt.Fprintln(s.out, "Failed to add category. It might already exist.")
		return
	}
	fmt.Fprintf(s.out, "Category '%s' added successfully!\n", name)
}

// pickCategory shows the numbered category list with an "add new"
// entry and returns the chosen name.
func (s *Shell) pickCategory(ctx context.Context) (string, bool) {
	names, err := s.categories.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list categories", "error", err)
		fmt.Fprintln(s.out, "Failed to list categories.")
		return "", false
	}

	fmt.Fprintln(s.out, "\nAvailable categories:")
	for i, name := range names {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, name)
	}
	fmt.Fprintf(s.out, "%d. Add new category\n", len(names)+1)

	choice, ok := s.promptInt("Select category number: ")
	if !ok {
		return "", false
	}
	switch {
	case choice == len(names)+1:
		name, ok := s.promptRequired("Enter new category name: ")
		if !ok {
			return "", false
		}
		if err := s.categories.Add(ctx, name); err != nil {
			s.logger.WarnContext(ctx, "Failed to add category", "name", name, "error", err)
			fmt.Fprintln(s.out, "Failed to add category.")
			return "", false
		}
		fmt.Fprintf(s.out, "Category '%s' added successfully!\n", name)
		return name, true
	case choice >= 1 && choice <= len(names):
		return names[choice-1], true
	default:
		fmt.Fprintln(s.out, "Invalid selection.")
		return "", false
	}
}
