// Package report renders the ledger to files: delimited text,
// spreadsheets, and charts, all under a single reports directory.
package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/storage"
)

// ErrNoData signals that an aggregate report had nothing to aggregate.
// It is an expected condition, distinct from failure: no file is
// produced and the caller reports absence rather than an error.
var ErrNoData = errors.New("no data to report")

// filenameStamp makes default filenames unique to the second.
const filenameStamp = "20060102_150405"

// Exporter writes reports for the whole ledger.
type Exporter struct {
	storage *storage.SQLiteRepository
	dir     string
	logger  *applog.Logger
	now     func() time.Time
}

func NewExporter(storage *storage.SQLiteRepository, dir string, logger *applog.Logger) *Exporter {
	return &Exporter{
		storage: storage,
		dir:     dir,
		logger:  logger.WithComponent("report"),
		now:     time.Now,
	}
}

// Artifacts collects the file paths produced by ExportAll. Chart paths
// are empty when the ledger had no data to chart.
type Artifacts struct {
	CSV           string
	XLSX          string
	CategoryChart string
	MonthlyChart  string
}

// ExportCSV writes every expense, newest date first, to a CSV file
// with a Date,Category,Amount,Description header. An empty ledger
// produces a header-only file.
func (e *Exporter) ExportCSV(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("expense_report_%s.csv", e.now().Format(filenameStamp))
	}
	path, err := e.preparePath(filename)
	if err != nil {
		return "", err
	}

	expenses, err := e.storage.SearchExpenses(ctx, core.Filter{})
	if err != nil {
		return "", fmt.Errorf("load expenses: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date", "Category", "Amount", "Description"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, exp := range expenses {
		row := []string{exp.Date.String(), exp.Category, exp.Amount.String(), exp.Description}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	e.logger.InfoContext(ctx, "CSV report written", "path", path, "rows", len(expenses))
	return path, nil
}

// ExportXLSX writes the same rows as ExportCSV to an Expenses sheet.
func (e *Exporter) ExportXLSX(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("expense_report_%s.xlsx", e.now().Format(filenameStamp))
	}
	path, err := e.preparePath(filename)
	if err != nil {
		return "", err
	}

	expenses, err := e.storage.SearchExpenses(ctx, core.Filter{})
	if err != nil {
		return "", fmt.Errorf("load expenses: %w", err)
	}

	const sheet = "Expenses"
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Date", "Category", "Amount", "Description"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}
	for i, exp := range expenses {
		values := []any{exp.Date.String(), exp.Category, exp.Amount.Float64(), exp.Description}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return "", fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", fmt.Errorf("write cell: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save xlsx: %w", err)
	}

	e.logger.InfoContext(ctx, "XLSX report written", "path", path, "rows", len(expenses))
	return path, nil
}

// ExportAll produces the CSV, XLSX, and both charts concurrently.
// Charts finding no data is reported as absence in Artifacts, not as
// an error.
func (e *Exporter) ExportAll(ctx context.Context) (Artifacts, error) {
	var artifacts Artifacts

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		path, err := e.ExportCSV(ctx, "")
		artifacts.CSV = path
		return err
	})
	g.Go(func() error {
		path, err := e.ExportXLSX(ctx, "")
		artifacts.XLSX = path
		return err
	})
	g.Go(func() error {
		path, err := e.CategoryChart(ctx, "")
		if errors.Is(err, ErrNoData) {
			return nil
		}
		artifacts.CategoryChart = path
		return err
	})
	g.Go(func() error {
		path, err := e.MonthlyChart(ctx, "")
		if errors.Is(err, ErrNoData) {
			return nil
		}
		artifacts.MonthlyChart = path
		return err
	})

	if err := g.Wait(); err != nil {
		return Artifacts{}, err
	}
	return artifacts, nil
}

func (e *Exporter) preparePath(filename string) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}
	return filepath.Join(e.dir, filename), nil
}
