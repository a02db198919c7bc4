package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expenses/internal/core"
	"expenses/internal/storage"
)

// BudgetService manages the monthly budget singleton and computes
// spend-vs-budget status for the current month.
type BudgetService struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewBudgetService(storage *storage.SQLiteRepository) *BudgetService {
	return &BudgetService{
		storage: storage,
		now:     time.Now,
	}
}

// SetMonthly upserts the budget value. The amount must be positive.
func (s *BudgetService) SetMonthly(ctx context.Context, amount core.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpsertBudget(ctx, amount); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	slog.InfoContext(ctx, "Monthly budget set", "amount_cents", amount.Cents)
	return nil
}

// GetMonthly returns the budget, with ok=false when never set.
func (s *BudgetService) GetMonthly(ctx context.Context) (core.Money, bool, error) {
	b, ok, err := s.storage.GetBudget(ctx)
	if err != nil {
		return core.Money{}, false, err
	}
	return b.Monthly, ok, nil
}

// Status reports current-month spend against the budget. When no
// budget is set every field is zero and spend is not computed, which
// mirrors the long-standing behavior users see; Remaining goes
// negative once the budget is exceeded.
func (s *BudgetService) Status(ctx context.Context) (core.BudgetStatus, error) {
	budget, ok, err := s.GetMonthly(ctx)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	if !ok {
		return core.BudgetStatus{}, nil
	}

	start, end := core.Monthly.Window(core.DateOf(s.now()))
	spent, err := s.storage.SumExpenses(ctx, start, end)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("month spend: %w", err)
	}

	status := core.BudgetStatus{
		Budget:    &budget,
		Spent:     spent,
		Remaining: core.Money{Cents: budget.Cents - spent.Cents},
	}
	if budget.Cents > 0 {
		status.Percentage = float64(spent.Cents) / float64(budget.Cents) * 100
	}
	return status, nil
}
