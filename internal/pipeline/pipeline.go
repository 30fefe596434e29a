package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockBoard/internal/calculator"
	"StockBoard/internal/collector"
	"StockBoard/internal/model"
	"StockBoard/internal/publish"
	"StockBoard/internal/recorder"
	"StockBoard/internal/render"

	"github.com/google/uuid"
)

// moversInReport is how many gainers and losers a run report lists.
const moversInReport = 3

// TickerSource yields the symbols for one run.
type TickerSource interface {
	Enumerate(ctx context.Context) []model.Ticker
}

// Runner executes one enumerate, collect, render and write pass.
type Runner struct {
	Tickers   TickerSource
	Collector *collector.Collector
	Renderer  *render.Renderer
	Recorder  recorder.Recorder

	HTMLPath     string
	HistoryPath  string // optional
	SnapshotPath string // optional
	HistoryRuns  int

	Now func() time.Time
}

// Run produces the quote page. Only a render or write failure of the main page
// is returned as an error; everything after that is logged and skipped.
func (r *Runner) Run(ctx context.Context) (*model.RunRecord, error) {
	summary := model.RunSummary{
		ID:         uuid.NewString(),
		StartedAt:  r.now(),
		Source:     r.Collector.Fetcher.Name(),
		OutputPath: r.HTMLPath,
	}
	log.Printf("[INFO] run %s started", summary.ID)

	tickers := r.Tickers.Enumerate(ctx)
	log.Printf("[INFO] %d tickers to fetch", len(tickers))

	rows := r.Collector.Collect(ctx, tickers)
	calculator.RankMagicFormula(rows)
	calculator.Summarize(&summary, rows)

	generatedAt := r.now()
	page, err := r.Renderer.Render(rows, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	if err := publish.WriteFile(r.HTMLPath, []byte(page)); err != nil {
		return nil, fmt.Errorf("write page: %w", err)
	}
	log.Printf("[INFO] wrote %s (%d rows, %d failed)", r.HTMLPath, summary.Total, summary.Failed)

	if r.SnapshotPath != "" {
		if err := publish.WriteSnapshot(r.SnapshotPath, rows, generatedAt); err != nil {
			log.Printf("[WARN] write snapshot: %v", err)
		}
	}

	summary.FinishedAt = r.now()
	record := &model.RunRecord{Summary: summary}
	record.Gainers, record.Losers = calculator.TopMovers(rows, moversInReport)

	if r.Recorder != nil {
		if err := r.Recorder.RecordRun(&record.Summary, rows); err != nil {
			log.Printf("[WARN] record run: %v", err)
		}
	}
	r.writeHistory(generatedAt)

	log.Printf("[INFO] run %s finished in %v", summary.ID, summary.Duration().Round(time.Millisecond))
	return record, nil
}

func (r *Runner) writeHistory(generatedAt time.Time) {
	if r.HistoryPath == "" || r.Recorder == nil {
		return
	}
	limit := r.HistoryRuns
	if limit <= 0 {
		limit = 30
	}
	runs, err := r.Recorder.RecentRuns(limit)
	if err != nil {
		log.Printf("[WARN] load run history: %v", err)
		return
	}
	page, err := r.Renderer.RenderHistory(runs, generatedAt)
	if err != nil {
		log.Printf("[WARN] render history: %v", err)
		return
	}
	if err := publish.WriteFile(r.HistoryPath, []byte(page)); err != nil {
		log.Printf("[WARN] write history: %v", err)
	}
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
