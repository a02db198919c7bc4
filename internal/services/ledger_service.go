// Package services orchestrates domain operations over the SQLite
// store and the optional event broker.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/core"
	"expenses/internal/storage"
)

// LedgerService records expenses and answers filtered queries and
// period-bounded summaries.
type LedgerService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
	now     func() time.Time
}

func NewLedgerService(storage *storage.SQLiteRepository, events *amqp.Client) *LedgerService {
	return &LedgerService{
		storage: storage,
		events:  events,
		now:     time.Now,
	}
}

// Record validates and stores an expense, then publishes a recorded
// event. Publish failures are logged and never fail the record: the
// ledger write is the source of truth.
func (s *LedgerService) Record(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validate expense: %w", err)
	}

	id, err := s.storage.InsertExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense recorded",
		"id", id,
		"date", e.Date.String(),
		"category", e.Category,
		"amount_cents", e.Amount.Cents)

	if s.events == nil {
		slog.DebugContext(ctx, "Event publishing not configured, skipping")
		return id, nil
	}
	if err := s.events.PublishExpenseRecorded(ctx, amqp.NewExpenseRecordedMessage(id, e)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense recorded event",
			"id", id, "error", err)
	}
	return id, nil
}

// Search returns expenses matching the filter, newest first.
func (s *LedgerService) Search(ctx context.Context, f core.Filter) ([]core.Expense, error) {
	return s.storage.SearchExpenses(ctx, f)
}

// Summarize aggregates expenses over the period's window relative to
// today. The breakdown is ordered by total descending (name ascending
// on ties) and sums to Total; an empty window yields a zero total.
func (s *LedgerService) Summarize(ctx context.Context, p core.Period) (core.Summary, error) {
	start, end := p.Window(core.DateOf(s.now()))

	total, err := s.storage.SumExpenses(ctx, start, end)
	if err != nil {
		return core.Summary{}, fmt.Errorf("sum expenses: %w", err)
	}
	byCategory, err := s.storage.CategoryTotals(ctx, start, end)
	if err != nil {
		return core.Summary{}, fmt.Errorf("category totals: %w", err)
	}

	return core.Summary{
		Period:     p,
		Start:      start,
		End:        end,
		Total:      total,
		ByCategory: byCategory,
	}, nil
}

// Close releases the store handle and the broker connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
