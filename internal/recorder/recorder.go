package recorder

import "StockBoard/internal/model"

// moversPerRun is how many gainers and losers the history lists per run.
const moversPerRun = 3

// Recorder persists run history for the history page and preview API.
type Recorder interface {
	RecordRun(summary *model.RunSummary, rows []model.QuoteRow) error
	RecentRuns(limit int) ([]model.RunRecord, error)
	RunQuotes(runID string) ([]model.QuoteRow, error)
	Close() error
}
