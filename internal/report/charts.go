package report

import (
	"context"
	"fmt"
	"io"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"
)

// CategoryChart renders a pie of all-time spend per category, each
// slice labeled with the category name and its share to one decimal
// place. Returns ErrNoData when the ledger is empty.
func (e *Exporter) CategoryChart(ctx context.Context, filename string) (string, error) {
	totals, err := e.storage.CategoryTotals(ctx, nil, nil)
	if err != nil {
		return "", fmt.Errorf("category totals: %w", err)
	}
	if len(totals) == 0 {
		return "", ErrNoData
	}

	var sum int64
	for _, ct := range totals {
		sum += ct.Total.Cents
	}

	values := make([]chart.Value, 0, len(totals))
	for _, ct := range totals {
		share := float64(ct.Total.Cents) / float64(sum) * 100
		values = append(values, chart.Value{
			Value: ct.Total.Float64(),
			Label: fmt.Sprintf("%s (%.1f%%)", ct.Category, share),
		})
	}

	if filename == "" {
		filename = fmt.Sprintf("category_chart_%s.png", e.now().Format(filenameStamp))
	}
	path, err := e.preparePath(filename)
	if err != nil {
		return "", err
	}

	pie := chart.PieChart{
		Title:  "Expenses by Category",
		Width:  800,
		Height: 800,
		Values: values,
	}
	if err := renderPNG(path, pie.Render); err != nil {
		return "", fmt.Errorf("render category chart: %w", err)
	}

	e.logger.InfoContext(ctx, "Category chart written", "path", path, "categories", len(values))
	return path, nil
}

// MonthlyChart renders a bar chart of spend per calendar month in
// chronological order, bars labeled YYYY-MM. Returns ErrNoData when
// the ledger is empty.
func (e *Exporter) MonthlyChart(ctx context.Context, filename string) (string, error) {
	totals, err := e.storage.MonthlyTotals(ctx)
	if err != nil {
		return "", fmt.Errorf("monthly totals: %w", err)
	}
	if len(totals) == 0 {
		return "", ErrNoData
	}

	bars := make([]chart.Value, 0, len(totals))
	var maxSpend float64
	for _, mt := range totals {
		v := mt.Total.Float64()
		if v > maxSpend {
			maxSpend = v
		}
		bars = append(bars, chart.Value{
			Value: v,
			Label: mt.Month,
		})
	}

	if filename == "" {
		filename = fmt.Sprintf("monthly_chart_%s.png", e.now().Format(filenameStamp))
	}
	path, err := e.preparePath(filename)
	if err != nil {
		return "", err
	}

	bar := chart.BarChart{
		Title:    "Monthly Expenses",
		Width:    200 + 80*len(bars),
		Height:   512,
		BarWidth: 60,
		Bars:     bars,
		// The renderer rejects a zero value spread when left to derive
		// the y-axis range itself, which a single month (or all-equal
		// months) produces.
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxSpend * 1.1},
		},
	}
	if err := renderPNG(path, bar.Render); err != nil {
		return "", fmt.Errorf("render monthly chart: %w", err)
	}

	e.logger.InfoContext(ctx, "Monthly chart written", "path", path, "months", len(bars))
	return path, nil
}

func renderPNG(path string, render func(chart.RendererProvider, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := render(chart.PNG, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
